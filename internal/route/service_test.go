package route

import (
	"context"
	"testing"

	"github.com/movesmart/transit/internal/bus"
)

func newTestRoutes(t *testing.T) (*Service, *bus.Service) {
	t.Helper()
	busSvc := bus.NewService(bus.NewMemoryRepository(), nil)
	return NewService(NewMemoryRepository(), busSvc), busSvc
}

func TestCreateRouteValidation(t *testing.T) {
	svc, _ := newTestRoutes(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{StartStation: " ", EndStation: "Airport"}); err == nil {
		t.Fatalf("expected error for blank start station")
	}
	if _, err := svc.Create(ctx, CreateInput{StartStation: "Central", EndStation: ""}); err == nil {
		t.Fatalf("expected error for blank end station")
	}
	if _, err := svc.Create(ctx, CreateInput{StartStation: "Central", EndStation: "Airport", DistanceKM: -2}); err == nil {
		t.Fatalf("expected error for negative distance")
	}

	r, err := svc.Create(ctx, CreateInput{Code: "R1", StartStation: "Central", EndStation: "Airport", DistanceKM: 18})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if r.Description() != "Central to Airport" {
		t.Fatalf("unexpected description %q", r.Description())
	}
}

func TestAttachBusStampsRouteDescription(t *testing.T) {
	svc, busSvc := newTestRoutes(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateInput{Code: "R1", StartStation: "Central", EndStation: "Airport", DistanceKM: 18})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	b, err := busSvc.Create(ctx, bus.CreateInput{PlateNumber: "KA-01", Capacity: 40})
	if err != nil {
		t.Fatalf("create bus: %v", err)
	}

	if _, err := svc.AttachBus(ctx, r.ID, "00000000-0000-0000-0000-000000000000"); err == nil {
		t.Fatalf("expected error attaching unknown bus")
	}

	attached, err := svc.AttachBus(ctx, r.ID, b.ID)
	if err != nil {
		t.Fatalf("attach bus: %v", err)
	}
	if len(attached.BusIDs) != 1 || attached.BusIDs[0] != b.ID {
		t.Fatalf("expected bus listed on route, got %v", attached.BusIDs)
	}

	stamped, err := busSvc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get bus: %v", err)
	}
	if stamped.RouteDesc != "Central to Airport" {
		t.Fatalf("expected route description on bus, got %q", stamped.RouteDesc)
	}

	forBus, err := svc.RoutesForBus(ctx, b.ID)
	if err != nil {
		t.Fatalf("routes for bus: %v", err)
	}
	if len(forBus) != 1 || forBus[0].ID != r.ID {
		t.Fatalf("expected route resolvable by bus, got %v", forBus)
	}
}

func TestDetachBus(t *testing.T) {
	svc, busSvc := newTestRoutes(t)
	ctx := context.Background()

	r, _ := svc.Create(ctx, CreateInput{Code: "R1", StartStation: "Central", EndStation: "Airport", DistanceKM: 18})
	b, _ := busSvc.Create(ctx, bus.CreateInput{PlateNumber: "KA-01", Capacity: 40})
	if _, err := svc.AttachBus(ctx, r.ID, b.ID); err != nil {
		t.Fatalf("attach bus: %v", err)
	}

	detached, err := svc.DetachBus(ctx, r.ID, b.ID)
	if err != nil {
		t.Fatalf("detach bus: %v", err)
	}
	if len(detached.BusIDs) != 0 {
		t.Fatalf("expected no buses after detach, got %v", detached.BusIDs)
	}

	if _, err := svc.DetachBus(ctx, "00000000-0000-0000-0000-000000000000", b.ID); err == nil {
		t.Fatalf("expected error for unknown route")
	}
}

func TestUpdateAndDeleteRoute(t *testing.T) {
	svc, _ := newTestRoutes(t)
	ctx := context.Background()

	r, _ := svc.Create(ctx, CreateInput{Code: "R1", StartStation: "Central", EndStation: "Airport", DistanceKM: 18})

	newEnd := "Harbor"
	updated, err := svc.Update(ctx, r.ID, UpdateInput{EndStation: &newEnd})
	if err != nil {
		t.Fatalf("update route: %v", err)
	}
	if updated.EndStation != "Harbor" || updated.StartStation != "Central" {
		t.Fatalf("unexpected route after update: %+v", updated)
	}

	negative := -1.0
	if _, err := svc.Update(ctx, r.ID, UpdateInput{DistanceKM: &negative}); err == nil {
		t.Fatalf("expected error for negative distance")
	}

	if err := svc.Delete(ctx, r.ID); err != nil {
		t.Fatalf("delete route: %v", err)
	}
	if err := svc.Delete(ctx, r.ID); err == nil {
		t.Fatalf("expected not found on second delete")
	}
}
