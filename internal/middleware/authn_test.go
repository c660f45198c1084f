package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/auth"
	"github.com/movesmart/transit/internal/identity"
	"github.com/movesmart/transit/internal/user"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperr.As(err); ok {
		return c.Status(appErr.Status).JSON(fiber.Map{"error": appErr.Category(), "message": appErr.Message})
	}
	return fiber.DefaultErrorHandler(c, err)
}

func setupAuthApp(t *testing.T) (*fiber.App, *auth.Codec, *user.Service) {
	t.Helper()
	codec, err := auth.NewCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	users := user.NewService(user.NewMemoryRepository(), nil)

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Use(Authenticate(codec, users, []string{"/public"}))
	app.Use(Authorize(NewPolicy(
		Rule{Path: "/public/*", Public: true},
		Rule{Path: "/admin/*", Roles: []identity.Role{identity.RoleAdmin}},
		Rule{Method: fiber.MethodGet, Path: "/driver-or-admin", Roles: []identity.Role{identity.RoleDriver, identity.RoleAdmin}},
	)))

	whoami := func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return apperr.Unauthorized("Authentication required")
		}
		return c.JSON(fiber.Map{"userId": p.UserID, "role": string(p.Role)})
	}
	app.Get("/public/ping", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/me", whoami)
	app.Get("/admin/panel", whoami)
	app.Get("/driver-or-admin", whoami)

	return app, codec, users
}

func register(t *testing.T, users *user.Service, email string, role identity.Role) user.User {
	t.Helper()
	u, err := users.Create(context.Background(), user.CreateInput{
		Name: "Test", Email: email, Phone: "+" + email, Password: "secret1", Role: role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func issueToken(t *testing.T, codec *auth.Codec, u user.User) string {
	t.Helper()
	token, _, err := codec.Issue(u.Identifier(), map[string]string{"role": string(u.Role)})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doGet(t *testing.T, app *fiber.App, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

func TestPublicPathSkipsAuthentication(t *testing.T) {
	app, _, _ := setupAuthApp(t)
	status, _ := doGet(t, app, "/public/ping", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on public path, got %d", status)
	}
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	app, _, _ := setupAuthApp(t)
	status, body := doGet(t, app, "/me", "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	if body["message"] != "Authentication required" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestInvalidTokenIsRejectedUniformly(t *testing.T) {
	app, codec, users := setupAuthApp(t)
	u := register(t, users, "a@example.com", identity.RoleUser)
	token := issueToken(t, codec, u)

	for _, bad := range []string{"garbage", token + "x", token[:len(token)-2]} {
		status, body := doGet(t, app, "/me", bad)
		if status != fiber.StatusUnauthorized {
			t.Fatalf("expected 401 for invalid token, got %d", status)
		}
		if body["message"] != "Invalid or expired token. Please login again." {
			t.Fatalf("unexpected message %v", body["message"])
		}
	}
}

func TestPrincipalBoundFromValidToken(t *testing.T) {
	app, codec, users := setupAuthApp(t)
	u := register(t, users, "a@example.com", identity.RolePassenger)
	status, body := doGet(t, app, "/me", issueToken(t, codec, u))
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["userId"] != u.ID || body["role"] != "PASSENGER" {
		t.Fatalf("unexpected principal %v", body)
	}
}

func TestRoleEnforcement(t *testing.T) {
	app, codec, users := setupAuthApp(t)
	passenger := register(t, users, "p@example.com", identity.RolePassenger)
	admin := register(t, users, "a@example.com", identity.RoleAdmin)
	driver := register(t, users, "d@example.com", identity.RoleDriver)

	// Authenticated but lacking the role: 403, not 401.
	status, body := doGet(t, app, "/admin/panel", issueToken(t, codec, passenger))
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for passenger on admin path, got %d", status)
	}
	if body["message"] != "Access denied: insufficient permissions" {
		t.Fatalf("unexpected message %v", body["message"])
	}

	if status, _ := doGet(t, app, "/admin/panel", issueToken(t, codec, admin)); status != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", status)
	}
	if status, _ := doGet(t, app, "/driver-or-admin", issueToken(t, codec, driver)); status != fiber.StatusOK {
		t.Fatalf("expected 200 for driver, got %d", status)
	}
	if status, _ := doGet(t, app, "/driver-or-admin", issueToken(t, codec, passenger)); status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for passenger, got %d", status)
	}
}

func TestTrailingSlashDoesNotBypassExactRules(t *testing.T) {
	codec, err := auth.NewCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	users := user.NewService(user.NewMemoryRepository(), nil)

	// Mirrors the production layering: an exact admin rule shadowed by a
	// role-less wildcard, plus an exact admin rule with no wildcard at all.
	// Fiber dispatches "/trips/" to the "/trips" handler, so the policy must
	// treat both forms identically.
	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Use(Authenticate(codec, users, nil))
	app.Use(Authorize(NewPolicy(
		Rule{Method: fiber.MethodGet, Path: "/trips", Roles: []identity.Role{identity.RoleAdmin}},
		Rule{Method: fiber.MethodGet, Path: "/trips/*"},
		Rule{Method: fiber.MethodPost, Path: "/broadcast", Roles: []identity.Role{identity.RoleAdmin}},
	)))
	ok := func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) }
	app.Get("/trips", ok)
	app.Get("/trips/:id", ok)
	app.Post("/broadcast", ok)

	passenger := register(t, users, "p@example.com", identity.RolePassenger)
	admin := register(t, users, "a@example.com", identity.RoleAdmin)

	for _, path := range []string{"/trips", "/trips/"} {
		if status, _ := doGet(t, app, path, issueToken(t, codec, passenger)); status != fiber.StatusForbidden {
			t.Fatalf("GET %s: expected 403 for passenger, got %d", path, status)
		}
		if status, _ := doGet(t, app, path, issueToken(t, codec, admin)); status != fiber.StatusOK {
			t.Fatalf("GET %s: expected 200 for admin, got %d", path, status)
		}
	}
	if status, _ := doGet(t, app, "/trips/abc", issueToken(t, codec, passenger)); status != fiber.StatusOK {
		t.Fatalf("expected wildcard rule to still admit passengers, got %d", status)
	}

	for _, path := range []string{"/broadcast", "/broadcast/"} {
		req := httptest.NewRequest(fiber.MethodPost, path, nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+issueToken(t, codec, passenger))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusForbidden {
			t.Fatalf("POST %s: expected 403 for passenger, got %d", path, resp.StatusCode)
		}
	}
}

func TestTokenForDeletedUserDoesNotAuthenticate(t *testing.T) {
	app, codec, users := setupAuthApp(t)
	u := register(t, users, "gone@example.com", identity.RoleUser)
	token := issueToken(t, codec, u)

	if err := users.Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	status, _ := doGet(t, app, "/me", token)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted subject, got %d", status)
	}
}
