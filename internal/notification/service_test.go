package notification

import (
	"context"
	"testing"
)

func newTestNotifications(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryRepository(), nil)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestNotifications(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Title: " ", Message: "hello"}); err == nil {
		t.Fatalf("expected error for blank title")
	}
	if _, err := svc.Create(ctx, CreateInput{Title: "hello", Message: ""}); err == nil {
		t.Fatalf("expected error for blank message")
	}

	n, err := svc.Create(ctx, CreateInput{UserID: "u1", Title: "Trip booked", Message: "ok", Type: "success"})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if n.Type != TypeSuccess {
		t.Fatalf("expected SUCCESS type, got %s", n.Type)
	}
	if n.Read {
		t.Fatalf("new notifications start unread")
	}

	// Unknown types fall back to INFO.
	n, err = svc.Create(ctx, CreateInput{UserID: "u1", Title: "t", Message: "m", Type: "whatever"})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if n.Type != TypeInfo {
		t.Fatalf("expected INFO fallback, got %s", n.Type)
	}
}

func TestSystemWideVisibility(t *testing.T) {
	svc := newTestNotifications(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Title: "Maintenance", Message: "Service paused tonight"}); err != nil {
		t.Fatalf("create broadcast: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{UserID: "alice", Title: "Hi", Message: "personal"}); err != nil {
		t.Fatalf("create personal: %v", err)
	}

	forAlice, err := svc.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list for alice: %v", err)
	}
	if len(forAlice) != 2 {
		t.Fatalf("alice sees her own plus broadcasts, got %d", len(forAlice))
	}

	forBob, err := svc.ListForUser(ctx, "bob")
	if err != nil {
		t.Fatalf("list for bob: %v", err)
	}
	if len(forBob) != 1 || forBob[0].Title != "Maintenance" {
		t.Fatalf("bob sees only broadcasts, got %v", forBob)
	}
}

func TestMarkReadOwnership(t *testing.T) {
	svc := newTestNotifications(t)
	ctx := context.Background()

	personal, _ := svc.Create(ctx, CreateInput{UserID: "alice", Title: "Hi", Message: "personal"})
	broadcast, _ := svc.Create(ctx, CreateInput{Title: "Maintenance", Message: "tonight"})

	if _, err := svc.MarkRead(ctx, personal.ID, "bob"); err == nil {
		t.Fatalf("expected forbidden for foreign notification")
	}

	marked, err := svc.MarkRead(ctx, personal.ID, "alice")
	if err != nil {
		t.Fatalf("mark own read: %v", err)
	}
	if !marked.Read {
		t.Fatalf("expected read flag set")
	}

	// Anyone can mark a broadcast read.
	if _, err := svc.MarkRead(ctx, broadcast.ID, "bob"); err != nil {
		t.Fatalf("mark broadcast read: %v", err)
	}

	if _, err := svc.MarkRead(ctx, "00000000-0000-0000-0000-000000000000", "alice"); err == nil {
		t.Fatalf("expected not found for unknown notification")
	}
}

func TestUnreadCountingAndMarkAll(t *testing.T) {
	svc := newTestNotifications(t)
	ctx := context.Background()

	first, _ := svc.Create(ctx, CreateInput{UserID: "alice", Title: "One", Message: "m"})
	svc.Create(ctx, CreateInput{UserID: "alice", Title: "Two", Message: "m"})
	svc.Create(ctx, CreateInput{Title: "Broadcast", Message: "m"})

	count, err := svc.CountUnread(ctx, "alice")
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}

	if _, err := svc.MarkRead(ctx, first.ID, "alice"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, err := svc.ListUnread(ctx, "alice")
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 2 {
		t.Fatalf("expected 2 unread after one read, got %d", len(unread))
	}

	marked, err := svc.MarkAllRead(ctx, "alice")
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked)
	}
	if count, _ := svc.CountUnread(ctx, "alice"); count != 0 {
		t.Fatalf("expected 0 unread after mark all, got %d", count)
	}
}
