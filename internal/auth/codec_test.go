package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()
	codec, err := NewCodec(testSecret, ttl)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestNewCodecRejectsShortKey(t *testing.T) {
	if _, err := NewCodec("too-short", time.Hour); err == nil {
		t.Fatalf("expected error for short signing key")
	}
}

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	token, exp, err := codec.Issue("alice@example.com", map[string]string{"role": "ADMIN"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", exp)
	}

	verified, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Subject != "alice@example.com" {
		t.Fatalf("expected subject alice@example.com, got %s", verified.Subject)
	}
	if verified.Claims["role"] != "ADMIN" {
		t.Fatalf("expected role claim ADMIN, got %s", verified.Claims["role"])
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	issued := time.Now()
	codec.now = func() time.Time { return issued }
	token, exp, err := codec.Issue("alice@example.com", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// One second before expiry the token is still valid.
	codec.now = func() time.Time { return exp.Add(-time.Second) }
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("expected valid token just before expiry: %v", err)
	}

	// At the exact expiry instant the token is already invalid.
	codec.now = func() time.Time { return exp }
	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken at expiry instant, got %v", err)
	}

	codec.now = func() time.Time { return exp.Add(time.Second) }
	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestVerifyUniformFailure(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	token, _, err := codec.Issue("alice@example.com", map[string]string{"role": "USER"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + b64.EncodeToString([]byte(`{"sub":"mallory","exp":9999999999}`)) + "." + parts[2]

	other, err := NewCodec(strings.Repeat("x", 32), time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	foreign, _, err := other.Issue("alice@example.com", nil)
	if err != nil {
		t.Fatalf("issue foreign: %v", err)
	}

	cases := map[string]string{
		"garbage":          "not-a-token",
		"two segments":     parts[0] + "." + parts[1],
		"tampered payload": tampered,
		"wrong key":        foreign,
		"empty":            "",
	}
	for name, bad := range cases {
		if _, err := codec.Verify(bad); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
