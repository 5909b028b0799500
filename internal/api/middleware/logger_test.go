package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/comp0022/film-analytics-api/pkg/logger"
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("invalid log line %q: %v", sc.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	e.Use(echomiddleware.RequestID())
	e.Use(RequestLogger(log))
	e.GET("/ping", func(c echo.Context) error {
		l := logger.FromContext(c.Request().Context())
		l.Info().Msg("inside handler")
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	e.ServeHTTP(httptest.NewRecorder(), req)

	events := decodeEvents(t, &buf)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0]["message"] != "inside handler" || events[0]["request_id"] != "req-1" || events[0]["path"] != "/ping" {
		t.Errorf("scoped logger missing request fields: %v", events[0])
	}
	access := events[1]
	if access["message"] != "request" || access["level"] != "info" {
		t.Errorf("unexpected access event: %v", access)
	}
	if access["status"] != float64(http.StatusNoContent) || access["request_id"] != "req-1" {
		t.Errorf("unexpected access fields: %v", access)
	}

	buf.Reset()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	events = decodeEvents(t, &buf)
	if len(events) != 1 || events[0]["level"] != "warn" || events[0]["status"] != float64(http.StatusNotFound) {
		t.Errorf("expected one warn event with status 404, got %v", events)
	}
}
