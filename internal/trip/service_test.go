package trip

import (
	"context"
	"strings"
	"testing"

	"github.com/movesmart/transit/internal/bus"
	"github.com/movesmart/transit/internal/identity"
	"github.com/movesmart/transit/internal/notification"
	"github.com/movesmart/transit/internal/route"
	"github.com/movesmart/transit/internal/user"
)

type fixture struct {
	trips         *Service
	users         *user.Service
	notifications *notification.Service

	passenger user.User
	route     route.Route
	bus       bus.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	userRepo := user.NewMemoryRepository()
	busRepo := bus.NewMemoryRepository()
	userSvc := user.NewService(userRepo, busRepo)
	busSvc := bus.NewService(busRepo, userRepo)
	routeSvc := route.NewService(route.NewMemoryRepository(), busSvc)
	notificationSvc := notification.NewService(notification.NewMemoryRepository(), nil)
	tripSvc := NewService(NewMemoryRepository(), userSvc, routeSvc, busSvc, notificationSvc)

	passenger, err := userSvc.Create(ctx, user.CreateInput{
		Name: "Pat", Email: "pat@example.com", Phone: "+1", Password: "secret1", Role: identity.RolePassenger,
	})
	if err != nil {
		t.Fatalf("create passenger: %v", err)
	}
	r, err := routeSvc.Create(ctx, route.CreateInput{Code: "R1", StartStation: "Central", EndStation: "Airport", DistanceKM: 18})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	b, err := busSvc.Create(ctx, bus.CreateInput{PlateNumber: "KA-01", Capacity: 40})
	if err != nil {
		t.Fatalf("create bus: %v", err)
	}

	return &fixture{
		trips: tripSvc, users: userSvc, notifications: notificationSvc,
		passenger: passenger, route: r, bus: b,
	}
}

func (f *fixture) book(t *testing.T) Trip {
	t.Helper()
	trip, err := f.trips.Create(context.Background(), CreateInput{
		PassengerID:  f.passenger.ID,
		RouteID:      f.route.ID,
		BusID:        f.bus.ID,
		StartStation: "Central",
		EndStation:   "Airport",
	})
	if err != nil {
		t.Fatalf("book trip: %v", err)
	}
	return trip
}

func TestBookTrip(t *testing.T) {
	f := newFixture(t)
	trip := f.book(t)

	if trip.Status != StatusBooked {
		t.Fatalf("expected BOOKED, got %s", trip.Status)
	}

	// Booking notifies the passenger.
	notifications, err := f.notifications.ListForUser(context.Background(), f.passenger.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 booking notification, got %d", len(notifications))
	}
	if !strings.Contains(notifications[0].Message, "R1") {
		t.Fatalf("expected route code in notification, got %q", notifications[0].Message)
	}
}

func TestBookTripChecksReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := CreateInput{
		PassengerID:  f.passenger.ID,
		RouteID:      f.route.ID,
		BusID:        f.bus.ID,
		StartStation: "Central",
		EndStation:   "Airport",
	}

	missing := base
	missing.PassengerID = "00000000-0000-0000-0000-000000000000"
	if _, err := f.trips.Create(ctx, missing); err == nil || !strings.Contains(err.Error(), "Passenger not found") {
		t.Fatalf("expected passenger not found, got %v", err)
	}

	missing = base
	missing.RouteID = "00000000-0000-0000-0000-000000000000"
	if _, err := f.trips.Create(ctx, missing); err == nil || !strings.Contains(err.Error(), "Route not found") {
		t.Fatalf("expected route not found, got %v", err)
	}

	missing = base
	missing.BusID = "00000000-0000-0000-0000-000000000000"
	if _, err := f.trips.Create(ctx, missing); err == nil || !strings.Contains(err.Error(), "Bus not found") {
		t.Fatalf("expected bus not found, got %v", err)
	}

	missing = base
	missing.StartStation = "  "
	if _, err := f.trips.Create(ctx, missing); err == nil {
		t.Fatalf("expected error for blank start station")
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := f.book(t)

	if _, err := f.trips.UpdateStatus(ctx, trip.ID, "COMPLETED"); err == nil {
		t.Fatalf("BOOKED cannot jump straight to COMPLETED")
	}
	if _, err := f.trips.UpdateStatus(ctx, trip.ID, "RUNNING"); err == nil {
		t.Fatalf("expected error for unknown status")
	}

	ongoing, err := f.trips.UpdateStatus(ctx, trip.ID, "ongoing")
	if err != nil {
		t.Fatalf("to ONGOING: %v", err)
	}
	if ongoing.Status != StatusOngoing {
		t.Fatalf("expected ONGOING, got %s", ongoing.Status)
	}

	completed, err := f.trips.UpdateStatus(ctx, trip.ID, "COMPLETED")
	if err != nil {
		t.Fatalf("to COMPLETED: %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}

	// Terminal states stay put.
	if _, err := f.trips.UpdateStatus(ctx, trip.ID, "CANCELLED"); err == nil {
		t.Fatalf("COMPLETED is terminal")
	}
}

func TestCancelOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := f.book(t)

	other, err := f.users.Create(ctx, user.CreateInput{
		Name: "Other", Email: "other@example.com", Phone: "+2", Password: "secret1", Role: identity.RolePassenger,
	})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}

	if _, err := f.trips.Cancel(ctx, trip.ID, other.ID); err == nil {
		t.Fatalf("expected forbidden for foreign passenger")
	}

	cancelled, err := f.trips.Cancel(ctx, trip.ID, f.passenger.ID)
	if err != nil {
		t.Fatalf("cancel own trip: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	// Admin path: empty owner cancels any trip.
	second := f.book(t)
	if _, err := f.trips.Cancel(ctx, second.ID, ""); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestListForPassengerAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t)
	f.book(t)

	mine, err := f.trips.ListForPassenger(ctx, f.passenger.ID)
	if err != nil {
		t.Fatalf("list for passenger: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(mine))
	}

	counts, err := f.trips.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if counts[StatusBooked] != 2 {
		t.Fatalf("expected 2 BOOKED, got %d", counts[StatusBooked])
	}
}
