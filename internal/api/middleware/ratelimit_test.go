package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/achrafidrissi/urc/internal/models"
)

func TestPrincipalKeyPrefersResolvedPrincipal(t *testing.T) {
	r := httptest.NewRequest("POST", "/message", nil)
	r.RemoteAddr = "10.0.0.1:4567"

	// Without a principal in context the key falls back to the IP.
	if got := principalKey(r); got != "10.0.0.1" {
		t.Fatalf("expected ip fallback, got %q", got)
	}

	ctx := context.WithValue(r.Context(), PrincipalContextKey, &models.Principal{ID: "u1", Username: "alice"})
	if got := principalKey(r.WithContext(ctx)); got != "u1" {
		t.Fatalf("expected principal id, got %q", got)
	}
}

func TestPrincipalLimiterMatchesAuthenticatedEndpoints(t *testing.T) {
	limiter := NewPrincipalRateLimiter(nil, zerolog.Nop())

	paths := []struct {
		method, path string
	}{
		{"POST", "/message"},
		{"GET", "/messages"},
		{"GET", "/users"},
		{"POST", "/rooms"},
		{"POST", "/rooms/01ROOM/messages"},
		{"GET", "/rooms/01ROOM/messages"},
	}
	for _, p := range paths {
		r := httptest.NewRequest(p.method, p.path, nil)
		limit, _, ok := limiter.match(r)
		if !ok {
			t.Errorf("%s %s: expected a limit", p.method, p.path)
			continue
		}
		ctx := context.WithValue(r.Context(), PrincipalContextKey, &models.Principal{ID: "u1"})
		if got := limit.KeyFunc(r.WithContext(ctx)); got != "u1" {
			t.Errorf("%s %s: expected principal-keyed limit, got key %q", p.method, p.path, got)
		}
	}
}

func TestPublicLimiterOnlyCoversPublicEndpoints(t *testing.T) {
	limiter := NewPublicRateLimiter(nil, zerolog.Nop())

	for _, path := range []string{"/register", "/login"} {
		r := httptest.NewRequest("POST", path, nil)
		if _, _, ok := limiter.match(r); !ok {
			t.Errorf("POST %s: expected a limit", path)
		}
	}

	// Authenticated endpoints are not this limiter's concern; a match here
	// would count them before the principal exists.
	r := httptest.NewRequest("POST", "/message", nil)
	if _, _, ok := limiter.match(r); ok {
		t.Fatal("public limiter must not match authenticated endpoints")
	}
}

func TestLimiterWithoutRedisPassesThrough(t *testing.T) {
	limiter := NewPublicRateLimiter(nil, zerolog.Nop())

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	limiter.Middleware(next).ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through without redis, called=%v status=%d", called, rec.Code)
	}
}
