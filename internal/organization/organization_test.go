package organization

import (
	"context"
	"testing"
)

func TestOrganizationLifecycle(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Name: "  "}); err == nil {
		t.Fatalf("expected error for blank name")
	}

	org, err := svc.Create(ctx, CreateInput{
		Name:          "City Transit Co",
		Address:       "1 Depot Road",
		ContactNumber: "+100000000",
		Email:         "ops@citytransit.example",
	})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}

	got, err := svc.Get(ctx, org.ID)
	if err != nil {
		t.Fatalf("get organization: %v", err)
	}
	if got.Name != "City Transit Co" {
		t.Fatalf("unexpected organization %+v", got)
	}

	updated, err := svc.Update(ctx, org.ID, CreateInput{Address: "2 Depot Road"})
	if err != nil {
		t.Fatalf("update organization: %v", err)
	}
	if updated.Address != "2 Depot Road" || updated.Name != "City Transit Co" {
		t.Fatalf("expected partial update, got %+v", updated)
	}

	orgs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list organizations: %v", err)
	}
	if len(orgs) != 1 {
		t.Fatalf("expected 1 organization, got %d", len(orgs))
	}

	if err := svc.Delete(ctx, org.ID); err != nil {
		t.Fatalf("delete organization: %v", err)
	}
	if _, err := svc.Get(ctx, org.ID); err == nil {
		t.Fatalf("expected not found after delete")
	}
}
