package location

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/movesmart/transit/internal/bus"
)

func newTestLocations(t *testing.T, cache *Cache) (*Service, bus.Bus) {
	t.Helper()
	busSvc := bus.NewService(bus.NewMemoryRepository(), nil)
	b, err := busSvc.Create(context.Background(), bus.CreateInput{PlateNumber: "KA-01", Capacity: 40})
	if err != nil {
		t.Fatalf("create bus: %v", err)
	}
	return NewService(NewMemoryRepository(), busSvc, cache, nil), b
}

func TestReportBusAndLatest(t *testing.T) {
	svc, b := newTestLocations(t, nil)
	ctx := context.Background()

	if _, err := svc.ReportBus(ctx, b.ID, 91, 0); err == nil {
		t.Fatalf("expected error for latitude out of range")
	}
	if _, err := svc.ReportBus(ctx, b.ID, 0, -181); err == nil {
		t.Fatalf("expected error for longitude out of range")
	}
	if _, err := svc.ReportBus(ctx, "00000000-0000-0000-0000-000000000000", 1, 2); err == nil {
		t.Fatalf("expected error for unknown bus")
	}

	if _, err := svc.LatestBus(ctx, b.ID); err == nil {
		t.Fatalf("expected not found before any report")
	}

	if _, err := svc.ReportBus(ctx, b.ID, 4.05, 9.7); err != nil {
		t.Fatalf("report bus: %v", err)
	}
	second, err := svc.ReportBus(ctx, b.ID, 4.06, 9.71)
	if err != nil {
		t.Fatalf("report bus: %v", err)
	}

	latest, err := svc.LatestBus(ctx, b.ID)
	if err != nil {
		t.Fatalf("latest bus: %v", err)
	}
	if latest.ID != second.ID {
		t.Fatalf("expected most recent fix, got %+v", latest)
	}

	history, err := svc.BusHistory(ctx, b.ID, 0)
	if err != nil {
		t.Fatalf("bus history: %v", err)
	}
	if len(history) != 2 || history[0].ID != second.ID {
		t.Fatalf("expected newest-first history of 2, got %v", history)
	}
	if limited, _ := svc.BusHistory(ctx, b.ID, 1); len(limited) != 1 {
		t.Fatalf("expected history limit respected, got %d", len(limited))
	}
}

func TestLatestBusPrefersCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc, b := newTestLocations(t, NewCache(client))
	ctx := context.Background()

	reported, err := svc.ReportBus(ctx, b.ID, 4.05, 9.7)
	if err != nil {
		t.Fatalf("report bus: %v", err)
	}

	cached, ok := NewCache(client).LatestBus(ctx, b.ID)
	if !ok {
		t.Fatalf("expected cache populated by report")
	}
	if cached.ID != reported.ID {
		t.Fatalf("expected cached fix to match report, got %+v", cached)
	}

	latest, err := svc.LatestBus(ctx, b.ID)
	if err != nil {
		t.Fatalf("latest bus: %v", err)
	}
	if latest.ID != reported.ID {
		t.Fatalf("unexpected latest fix %+v", latest)
	}

	// Cache entries expire so a silent bus does not look live forever.
	mr.FastForward(cacheTTL + time.Second)
	if _, ok := NewCache(client).LatestBus(ctx, b.ID); ok {
		t.Fatalf("expected cache entry to expire")
	}
	// The repository still has the fix.
	if _, err := svc.LatestBus(ctx, b.ID); err != nil {
		t.Fatalf("latest bus after cache expiry: %v", err)
	}
}

func TestReportPassenger(t *testing.T) {
	svc, _ := newTestLocations(t, nil)
	ctx := context.Background()

	if _, err := svc.ReportPassenger(ctx, "p1", -95, 0); err == nil {
		t.Fatalf("expected error for latitude out of range")
	}

	if _, err := svc.ReportPassenger(ctx, "p1", 4.05, 9.7); err != nil {
		t.Fatalf("report passenger: %v", err)
	}
	second, err := svc.ReportPassenger(ctx, "p1", 4.06, 9.71)
	if err != nil {
		t.Fatalf("report passenger: %v", err)
	}

	latest, err := svc.LatestPassenger(ctx, "p1")
	if err != nil {
		t.Fatalf("latest passenger: %v", err)
	}
	if latest.ID != second.ID {
		t.Fatalf("expected most recent fix, got %+v", latest)
	}
	if _, err := svc.LatestPassenger(ctx, "p2"); err == nil {
		t.Fatalf("expected not found for unknown passenger")
	}

	history, err := svc.PassengerHistory(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("passenger history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(history))
	}
}
