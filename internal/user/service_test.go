package user

import (
	"context"
	"strings"
	"testing"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), nil)
}

func createUser(t *testing.T, svc *Service, email, phone string, role identity.Role) User {
	t.Helper()
	u, err := svc.Create(context.Background(), CreateInput{
		Name:     "Test User",
		Email:    email,
		Phone:    phone,
		Password: "secret1",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestCreateDefaultsToUserRole(t *testing.T) {
	svc := newTestService()
	u := createUser(t, svc, "a@example.com", "+100000001", "")
	if u.Role != identity.RoleUser {
		t.Fatalf("expected default role USER, got %s", u.Role)
	}
	if len(u.PasswordHash) == 0 {
		t.Fatalf("expected password hash to be stored")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Email: "a@example.com", Phone: "+1", Password: "secret1"}); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@example.com", Password: "secret1"}); err == nil {
		t.Fatalf("expected error for missing phone")
	}
	_, err := svc.Create(ctx, CreateInput{Name: "A", Phone: "+1", Password: "short"})
	if err == nil {
		t.Fatalf("expected error for short password")
	}
	if !strings.Contains(err.Error(), "at least 6 characters") {
		t.Fatalf("unexpected password error: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "A", Phone: "+1", Password: "secret1", Role: "SUPERADMIN"}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestCreateUniquenessIsIndependent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	createUser(t, svc, "a@example.com", "+100000001", identity.RoleUser)

	_, err := svc.Create(ctx, CreateInput{Name: "B", Email: "a@example.com", Phone: "+100000002", Password: "secret1"})
	if err == nil || !strings.Contains(err.Error(), "Email already registered") {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{Name: "B", Email: "b@example.com", Phone: "+100000001", Password: "secret1"})
	if err == nil || !strings.Contains(err.Error(), "Phone number already registered") {
		t.Fatalf("expected duplicate phone error, got %v", err)
	}

	// Two users without email must not collide on the empty string.
	if _, err := svc.Create(ctx, CreateInput{Name: "C", Phone: "+100000003", Password: "secret1"}); err != nil {
		t.Fatalf("create without email: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "D", Phone: "+100000004", Password: "secret1"}); err != nil {
		t.Fatalf("second create without email: %v", err)
	}
}

func TestFindByIdentifierPrefersEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u := createUser(t, svc, "a@example.com", "+100000001", identity.RoleUser)

	byEmail, err := svc.FindByIdentifier(ctx, "a@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("find by email: %v", err)
	}
	byPhone, err := svc.FindByIdentifier(ctx, "+100000001")
	if err != nil || byPhone.ID != u.ID {
		t.Fatalf("find by phone: %v", err)
	}
	if _, err := svc.FindByIdentifier(ctx, "missing@example.com"); err == nil {
		t.Fatalf("expected not found for unknown identifier")
	}
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	createUser(t, svc, "a@example.com", "+100000001", identity.RoleUser)
	b := createUser(t, svc, "b@example.com", "+100000002", identity.RoleUser)

	taken := "a@example.com"
	if _, err := svc.Update(ctx, b.ID, UpdateInput{Email: &taken}); err == nil {
		t.Fatalf("expected duplicate email error on update")
	}

	// Updating to your own current email is fine.
	own := "b@example.com"
	if _, err := svc.Update(ctx, b.ID, UpdateInput{Email: &own}); err != nil {
		t.Fatalf("update with own email: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u := createUser(t, svc, "a@example.com", "+100000001", identity.RoleUser)

	_, err := svc.ChangePassword(ctx, u.ID, "wrong-password", "newsecret")
	if err == nil {
		t.Fatalf("expected error for wrong current password")
	}
	if appErr, ok := apperr.As(err); !ok || appErr.Status != 401 || appErr.Message != "Invalid credentials" {
		t.Fatalf("expected invalid credentials for wrong current password, got %v", err)
	}

	if _, err := svc.ChangePassword(ctx, u.ID, "secret1", "tiny"); err == nil {
		t.Fatalf("expected error for short new password")
	}

	updated, err := svc.ChangePassword(ctx, u.ID, "secret1", "newsecret")
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if !svc.VerifyPassword(updated, "newsecret") {
		t.Fatalf("new password does not verify")
	}
	if svc.VerifyPassword(updated, "secret1") {
		t.Fatalf("old password still verifies")
	}
}

type recordingAssignments struct {
	unassigned []string
}

func (r *recordingAssignments) UnassignDriver(_ context.Context, driverID string) (int64, error) {
	r.unassigned = append(r.unassigned, driverID)
	return 1, nil
}

func TestDeleteDriverClearsAssignments(t *testing.T) {
	assignments := &recordingAssignments{}
	svc := NewService(NewMemoryRepository(), assignments)
	ctx := context.Background()

	driver := createUser(t, svc, "d@example.com", "+100000001", identity.RoleDriver)
	passenger := createUser(t, svc, "p@example.com", "+100000002", identity.RolePassenger)

	if err := svc.Delete(ctx, driver.ID); err != nil {
		t.Fatalf("delete driver: %v", err)
	}
	if len(assignments.unassigned) != 1 || assignments.unassigned[0] != driver.ID {
		t.Fatalf("expected driver %s to be unassigned, got %v", driver.ID, assignments.unassigned)
	}

	if err := svc.Delete(ctx, passenger.ID); err != nil {
		t.Fatalf("delete passenger: %v", err)
	}
	if len(assignments.unassigned) != 1 {
		t.Fatalf("passenger delete must not touch assignments")
	}

	if err := svc.Delete(ctx, driver.ID); err == nil {
		t.Fatalf("expected not found for second delete")
	}
}
