package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/movesmart/transit/internal/apperr"
)

func newTestClient(t *testing.T, upstream http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	client := NewClient("test-api-key", 100, nil, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	return client, srv
}

func TestGeocodeForwardsQueryAndKey(t *testing.T) {
	var gotQuery map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"address": r.URL.Query().Get("address"),
			"key":     r.URL.Query().Get("key"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","results":[]}`))
	})

	body, err := client.Geocode(context.Background(), Query{Address: "1 Main St"})
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if gotQuery["address"] != "1 Main St" {
		t.Fatalf("expected address forwarded, got %q", gotQuery["address"])
	}
	if gotQuery["key"] != "test-api-key" {
		t.Fatalf("expected api key forwarded, got %q", gotQuery["key"])
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if doc["status"] != "OK" {
		t.Fatalf("expected upstream document relayed, got %v", doc)
	}
}

func TestGeocodeParameterValidation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	_, err := client.Geocode(ctx, Query{})
	if appErr, ok := apperr.As(err); !ok || appErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty query, got %v", err)
	}

	_, err = client.Geocode(ctx, Query{Address: "x", LatLng: "1,2"})
	if appErr, ok := apperr.As(err); !ok || appErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for conflicting parameters, got %v", err)
	}
}

func TestGeocodeMissingAPIKey(t *testing.T) {
	client := NewClient("", 100, nil)
	_, err := client.Geocode(context.Background(), Query{Address: "x"})
	if appErr, ok := apperr.As(err); !ok || appErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 without api key, got %v", err)
	}
}

func TestGeocodeUpstreamErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := client.Geocode(context.Background(), Query{Address: "x"})
	if appErr, ok := apperr.As(err); !ok || appErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 for upstream 5xx, got %v", err)
	}

	rejecting, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err = rejecting.Geocode(context.Background(), Query{Address: "x"})
	if appErr, ok := apperr.As(err); !ok || appErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for upstream 4xx, got %v", err)
	}
}

func TestGeocodeHonorsContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Geocode(ctx, Query{Address: "x"}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
