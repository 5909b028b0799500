package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/comp0022/film-analytics-api/internal/core/domain"
	"github.com/comp0022/film-analytics-api/internal/core/service"
)

// memUserRepo is an in-memory ports.UserRepository.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byName: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; ok {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := *u
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	r.byName[u.Username] = &stored
	out := stored
	out.PasswordHash = ""
	return &out, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byName {
		if u.ID == id {
			out := *u
			out.PasswordHash = ""
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type fixedHealth bool

func (f fixedHealth) Healthy(context.Context) bool { return bool(f) }

type testServer struct {
	e    *echo.Echo
	repo *memUserRepo
}

func newTestServer(t *testing.T, dbHealthy bool, rateLimit int) *testServer {
	t.Helper()
	return newTestServerWith(t, func(d *Deps) {
		d.DB = fixedHealth(dbHealthy)
		d.AuthRateLimit = rateLimit
	})
}

// newTestServerWith builds a healthy server with a generous rate limit and
// lets the caller adjust the dependencies before the router is built.
func newTestServerWith(t *testing.T, configure func(*Deps)) *testServer {
	t.Helper()

	tokens, err := service.NewJWTManager(service.TokenConfig{Secret: "test-secret", Algorithm: "HS256"})
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	repo := newMemUserRepo()
	auth := service.NewAuthService(repo, service.NewBcryptHasher(4), tokens, zerolog.Nop())

	deps := Deps{
		Log:           zerolog.Nop(),
		AuthService:   auth,
		DB:            fixedHealth(true),
		AuthRateLimit: 100,
		CORSOrigins:   []string{"http://localhost:5173"},
		Registry:      prometheus.NewRegistry(),
	}
	if configure != nil {
		configure(&deps)
	}
	return &testServer{e: NewRouter(deps), repo: repo}
}

func (s *testServer) do(method, target, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{echo.HeaderAuthorization: []string{"Bearer " + token}}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectDetail(t *testing.T, rec *httptest.ResponseRecorder, code int, detail string) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
	body := decode[map[string]string](t, rec)
	if body["detail"] != detail {
		t.Fatalf("expected detail %q, got %q", detail, body["detail"])
	}
}

func TestRouter_AuthFlow(t *testing.T) {
	s := newTestServer(t, true, 100)

	rec := s.do(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1","email":"alice@example.com"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	user := decode[map[string]any](t, rec)
	if user["user_id"] != float64(1) || user["username"] != "alice" || user["email"] != "alice@example.com" || user["created_at"] == nil {
		t.Fatalf("unexpected user record: %v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash leaked in response")
	}

	rec = s.do(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"other12","email":"a2@example.com"}`, nil)
	expectDetail(t, rec, http.StatusConflict, "Username already exists")

	rec = s.do(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	pair := decode[map[string]string](t, rec)
	if pair["token_type"] != "bearer" || pair["access_token"] == "" || pair["refresh_token"] == "" {
		t.Fatalf("unexpected token pair: %v", pair)
	}

	rec = s.do(http.MethodGet, "/api/auth/me", "", bearer(pair["access_token"]))
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if me := decode[map[string]any](t, rec); me["username"] != "alice" || me["user_id"] != float64(1) {
		t.Fatalf("unexpected me payload: %v", me)
	}

	// A refresh token is not an access token, and vice versa.
	rec = s.do(http.MethodGet, "/api/auth/me", "", bearer(pair["refresh_token"]))
	expectDetail(t, rec, http.StatusUnauthorized, "Invalid or expired token")
	if rec.Header().Get(echo.HeaderWWWAuthenticate) != "Bearer" {
		t.Fatalf("expected WWW-Authenticate: Bearer, got %q", rec.Header().Get(echo.HeaderWWWAuthenticate))
	}

	rec = s.do(http.MethodPost, "/api/auth/refresh", `{"refresh_token":"`+pair["access_token"]+`"}`, nil)
	expectDetail(t, rec, http.StatusUnauthorized, "Invalid or expired token")

	rec = s.do(http.MethodPost, "/api/auth/refresh", `{"refresh_token":"`+pair["refresh_token"]+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	refreshed := decode[map[string]string](t, rec)
	if refreshed["access_token"] == "" || refreshed["refresh_token"] == "" || refreshed["token_type"] != "bearer" {
		t.Fatalf("unexpected refreshed pair: %v", refreshed)
	}

	rec = s.do(http.MethodGet, "/api/auth/me", "", bearer(refreshed["access_token"]))
	if rec.Code != http.StatusOK {
		t.Fatalf("me with refreshed token: expected 200, got %d", rec.Code)
	}
}

func TestRouter_LoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t, true, 100)
	s.do(http.MethodPost, "/api/auth/register", `{"username":"bob","password":"secret1","email":"bob@example.com"}`, nil)

	wrongPassword := s.do(http.MethodPost, "/api/auth/login", `{"username":"bob","password":"nope"}`, nil)
	unknownUser := s.do(http.MethodPost, "/api/auth/login", `{"username":"ghost","password":"nope"}`, nil)

	expectDetail(t, wrongPassword, http.StatusUnauthorized, "Invalid username or password")
	expectDetail(t, unknownUser, http.StatusUnauthorized, "Invalid username or password")
	if wrongPassword.Body.String() != unknownUser.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", wrongPassword.Body.String(), unknownUser.Body.String())
	}
}

func TestRouter_TokenForDeletedUser(t *testing.T) {
	s := newTestServer(t, true, 100)
	s.do(http.MethodPost, "/api/auth/register", `{"username":"dave","password":"secret1","email":"d@example.com"}`, nil)
	pair := decode[map[string]string](t, s.do(http.MethodPost, "/api/auth/login", `{"username":"dave","password":"secret1"}`, nil))

	s.repo.mu.Lock()
	delete(s.repo.byName, "dave")
	s.repo.mu.Unlock()

	expectDetail(t, s.do(http.MethodGet, "/api/auth/me", "", bearer(pair["access_token"])), http.StatusUnauthorized, "Invalid or expired token")
	expectDetail(t, s.do(http.MethodPost, "/api/auth/refresh", `{"refresh_token":"`+pair["refresh_token"]+`"}`, nil), http.StatusUnauthorized, "Invalid or expired token")
}

func TestRouter_InvalidInput(t *testing.T) {
	s := newTestServer(t, true, 100)

	rec := s.do(http.MethodPost, "/api/auth/register", `{"username":`, nil)
	expectDetail(t, rec, http.StatusBadRequest, "invalid payload")

	rec = s.do(http.MethodPost, "/api/auth/register", `{"username":"al","password":"secret1","email":"a@example.com"}`, nil)
	expectDetail(t, rec, http.StatusUnprocessableEntity, "username must be at least 3 characters")

	rec = s.do(http.MethodGet, "/api/auth/me", "", http.Header{echo.HeaderAuthorization: []string{"Basic dXNlcjpwYXNz"}})
	expectDetail(t, rec, http.StatusUnauthorized, "Invalid or expired token")

	rec = s.do(http.MethodGet, "/api/auth/me", "", bearer("not.a.jwt"))
	expectDetail(t, rec, http.StatusUnauthorized, "Invalid or expired token")

	rec = s.do(http.MethodGet, "/no/such/route", "", nil)
	expectDetail(t, rec, http.StatusNotFound, "Not Found")
}

func TestRouter_Health(t *testing.T) {
	healthy := newTestServer(t, true, 100)
	rec := healthy.do(http.MethodGet, "/health", "", nil)
	if body := decode[map[string]string](t, rec); rec.Code != http.StatusOK || body["status"] != "healthy" || body["database"] != "connected" {
		t.Fatalf("unexpected healthy response %d %v", rec.Code, body)
	}

	degraded := newTestServer(t, false, 100)
	rec = degraded.do(http.MethodGet, "/health", "", nil)
	if body := decode[map[string]string](t, rec); rec.Code != http.StatusOK || body["status"] != "degraded" || body["database"] != "unavailable" {
		t.Fatalf("unexpected degraded response %d %v", rec.Code, body)
	}
	if rec := degraded.do(http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness: expected 503, got %d", rec.Code)
	}

	rec = healthy.do(http.MethodGet, "/", "", nil)
	if body := decode[map[string]string](t, rec); body["name"] != "COMP0022 Film Analytics API" || body["docs"] != "/docs" {
		t.Fatalf("unexpected root document %v", body)
	}
}

func TestRouter_PlaceholderRoutes(t *testing.T) {
	s := newTestServer(t, true, 100)

	for _, target := range []string{"/api/movies", "/api/genres", "/api/ratings/consistency", "/api/personality/traits"} {
		expectDetail(t, s.do(http.MethodGet, target, "", nil), http.StatusNotImplemented, "Not implemented")
	}
	expectDetail(t, s.do(http.MethodGet, "/api/movies?page_size=500", "", nil), http.StatusUnprocessableEntity, "page_size must be at most 100")

	expectDetail(t, s.do(http.MethodGet, "/api/collections", "", nil), http.StatusUnauthorized, "Invalid or expired token")

	s.do(http.MethodPost, "/api/auth/register", `{"username":"erin","password":"secret1","email":"e@example.com"}`, nil)
	pair := decode[map[string]string](t, s.do(http.MethodPost, "/api/auth/login", `{"username":"erin","password":"secret1"}`, nil))

	expectDetail(t, s.do(http.MethodGet, "/api/collections", "", bearer(pair["access_token"])), http.StatusNotImplemented, "Not implemented")
	expectDetail(t, s.do(http.MethodGet, "/api/collections", "", bearer(pair["refresh_token"])), http.StatusUnauthorized, "Invalid or expired token")
}

func TestRouter_AuthRateLimit(t *testing.T) {
	s := newTestServer(t, true, 2)

	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"ghost","password":"nope"}`, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}
	expectDetail(t, s.do(http.MethodPost, "/api/auth/login", `{"username":"ghost","password":"nope"}`, nil), http.StatusTooManyRequests, "rate limit exceeded")

	// Non-auth routes are not limited.
	if rec := s.do(http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
}

func forwardedFor(ip string) http.Header {
	return http.Header{echo.HeaderXForwardedFor: []string{ip}}
}

func TestRouter_AuthRateLimitIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t, true, 2)

	// Without trusted proxies every request comes from the same peer, whatever
	// X-Forwarded-For claims.
	for i := 1; i <= 2; i++ {
		rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"ghost","password":"nope"}`, forwardedFor(fmt.Sprintf("10.0.0.%d", i)))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, rec.Code)
		}
	}
	rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"ghost","password":"nope"}`, forwardedFor("10.0.0.3"))
	expectDetail(t, rec, http.StatusTooManyRequests, "rate limit exceeded")
}

func TestRouter_AuthRateLimitBehindTrustedProxy(t *testing.T) {
	_, proxies, err := net.ParseCIDR("192.0.2.0/24")
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServerWith(t, func(d *Deps) {
		d.AuthRateLimit = 2
		d.TrustedProxies = []*net.IPNet{proxies}
	})

	login := func(client string) int {
		return s.do(http.MethodPost, "/api/auth/login", `{"username":"ghost","password":"nope"}`, forwardedFor(client)).Code
	}

	if code := login("203.0.113.10"); code != http.StatusUnauthorized {
		t.Fatalf("first client: expected 401, got %d", code)
	}
	if code := login("203.0.113.10"); code != http.StatusUnauthorized {
		t.Fatalf("first client again: expected 401, got %d", code)
	}
	if code := login("203.0.113.10"); code != http.StatusTooManyRequests {
		t.Fatalf("first client over limit: expected 429, got %d", code)
	}

	// A different client behind the same proxy has its own budget.
	if code := login("203.0.113.20"); code != http.StatusUnauthorized {
		t.Fatalf("second client: expected 401, got %d", code)
	}

	// Spoofed hops left of the real client do not change the key.
	if code := login("198.51.100.1, 203.0.113.10"); code != http.StatusTooManyRequests {
		t.Fatalf("spoofed chain: expected 429, got %d", code)
	}
}

func TestRouter_LoginEmptyCredentials(t *testing.T) {
	s := newTestServer(t, true, 100)
	s.do(http.MethodPost, "/api/auth/register", `{"username":"fay","password":"secret1","email":"f@example.com"}`, nil)

	expectDetail(t, s.do(http.MethodPost, "/api/auth/login", `{"username":"fay","password":""}`, nil), http.StatusUnauthorized, "Invalid username or password")
	expectDetail(t, s.do(http.MethodPost, "/api/auth/login", `{"username":"","password":""}`, nil), http.StatusUnauthorized, "Invalid username or password")
	expectDetail(t, s.do(http.MethodPost, "/api/auth/login", `{"username":"fay"}`, nil), http.StatusUnprocessableEntity, "password is required")
}

func TestRouter_ServiceLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServerWith(t, func(d *Deps) {
		d.Log = zerolog.New(&buf)
	})

	rec := s.do(http.MethodPost, "/api/auth/register", `{"username":"gus","password":"secret1","email":"g@example.com"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	requestID := rec.Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		t.Fatal("missing X-Request-Id header")
	}

	var found bool
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var event map[string]any
		if err := json.Unmarshal(sc.Bytes(), &event); err != nil {
			t.Fatalf("log line is not JSON: %q", sc.Text())
		}
		if event["message"] != "user registered" {
			continue
		}
		found = true
		if event["request_id"] != requestID {
			t.Fatalf("request_id = %v, want %q", event["request_id"], requestID)
		}
		if event["path"] != "/api/auth/register" {
			t.Fatalf("path = %v", event["path"])
		}
	}
	if !found {
		t.Fatalf("no service event in log output:\n%s", buf.String())
	}
}

func TestRouter_MetricsAndCORS(t *testing.T) {
	s := newTestServer(t, true, 100)
	s.do(http.MethodGet, "/health", "", nil)

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "film_analytics_requests_total") {
		t.Fatalf("metrics: unexpected response %d", rec.Code)
	}

	rec = s.do(http.MethodOptions, "/api/auth/login", "", http.Header{
		echo.HeaderOrigin:                     []string{"http://localhost:5173"},
		echo.HeaderAccessControlRequestMethod: []string{http.MethodPost},
	})
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "http://localhost:5173" {
		t.Fatalf("CORS preflight: allow-origin = %q", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowCredentials) != "true" {
		t.Fatal("CORS preflight: credentials not allowed")
	}
}

func TestRouter_SwaggerDocument(t *testing.T) {
	s := newTestServer(t, true, 100)

	rec := s.do(http.MethodGet, "/docs/doc.json", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json: expected 200, got %d", rec.Code)
	}
	doc := decode[struct {
		Paths       map[string]map[string]any `json:"paths"`
		Definitions map[string]struct {
			Required []string `json:"required"`
		} `json:"definitions"`
	}](t, rec)

	for _, path := range []string{"/api/auth/login", "/api/auth/register", "/api/movies", "/api/collections/{collection_id}"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("path %s missing from document", path)
		}
	}
	login, ok := doc.Definitions["handler.loginRequest"]
	if !ok || strings.Join(login.Required, ",") != "password,username" {
		t.Errorf("unexpected loginRequest definition: %+v", login)
	}
}
