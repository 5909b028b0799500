package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fixedStore struct {
	allow bool
	err   error
	ids   []string
}

func (s *fixedStore) Allow(identifier string) (bool, error) {
	s.ids = append(s.ids, identifier)
	return s.allow, s.err
}

func serve(e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newLimitedEcho(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw)
	return e
}

func TestRateLimit_MemoryFallback(t *testing.T) {
	e := newLimitedEcho(RateLimit(nil, 3))

	for i := 0; i < 3; i++ {
		if rec := serve(e, "10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if rec := serve(e, "10.0.0.1:1234"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the burst, got %d", rec.Code)
	}

	// Another client has its own bucket.
	if rec := serve(e, "10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a different client, got %d", rec.Code)
	}
}

func TestRateLimit_StoreDecides(t *testing.T) {
	store := &fixedStore{allow: false}
	e := newLimitedEcho(RateLimit(store, 30))

	rec := serve(e, "192.0.2.5:4000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if len(store.ids) != 1 || store.ids[0] != "192.0.2.5" {
		t.Fatalf("expected the client IP as identifier, got %v", store.ids)
	}
}

func TestRateLimit_StoreErrorFailsOpen(t *testing.T) {
	store := &fixedStore{allow: true, err: errors.New("redis down")}
	e := newLimitedEcho(RateLimit(store, 30))

	if rec := serve(e, "192.0.2.5:4000"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when the store errors but allows, got %d", rec.Code)
	}
}
