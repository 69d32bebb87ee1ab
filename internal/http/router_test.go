package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/config"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/http/handlers"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	idents map[string]user.Identity
}

func (s *stubVerifier) Verify(raw string) (user.Identity, error) {
	ident, ok := s.idents[raw]

	if !ok {
		return user.Identity{}, errors.New("unknown token")
	}

	return ident, nil
}

func testRouter() *gin.Engine {
	sess := session.NewAccessor(&stubVerifier{idents: map[string]user.Identity{
		"admin-token":  {ID: "a1", Name: "Admin", Role: user.RoleAdmin},
		"client-token": {ID: "c1", Name: "Client", Role: user.RoleClient},
	}}, "")

	return NewRouter(RouterDeps{
		Cfg: config.Config{
			Env: "test",
			Routes: config.Routes{
				LoginPath:    "/login",
				AdminPrefix:  "/dashboard",
				ClientPrefix: "/client",
			},
		},
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Session: sess,
		Pages:   handlers.NewPagesHandler(sess),
		Health:  handlers.NewHealthHandler(nil),

		// API handlers are exercised in their own package; the routes
		// here only need to exist.
		Auth:       &handlers.AuthHandler{},
		Projects:   &handlers.ProjectsHandler{},
		Milestones: &handlers.MilestonesHandler{},
		Defects:    &handlers.DefectsHandler{},
		Deliveries: &handlers.DeliveriesHandler{},
		Visits:     &handlers.VisitsHandler{},
		Reports:    &handlers.ReportsHandler{},
	})
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)

	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r := testRouter()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		if w := get(r, path, ""); w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
}

func TestPageGateWiring(t *testing.T) {
	r := testRouter()

	tests := []struct {
		path         string
		token        string
		wantStatus   int
		wantLocation string
	}{
		{"/login", "", http.StatusOK, ""},
		{"/login", "admin-token", http.StatusFound, "/dashboard"},
		{"/dashboard", "", http.StatusFound, "/login"},
		{"/dashboard/projects", "client-token", http.StatusFound, "/client"},
		{"/dashboard", "admin-token", http.StatusOK, ""},
		{"/client", "client-token", http.StatusOK, ""},
		{"/client", "admin-token", http.StatusFound, "/dashboard"},
	}

	for _, tc := range tests {
		w := get(r, tc.path, tc.token)

		if w.Code != tc.wantStatus {
			t.Errorf("GET %s (token %q) = %d, want %d", tc.path, tc.token, w.Code, tc.wantStatus)
			continue
		}

		if tc.wantLocation != "" && w.Header().Get("Location") != tc.wantLocation {
			t.Errorf("GET %s redirected to %q, want %q", tc.path, w.Header().Get("Location"), tc.wantLocation)
		}
	}
}

func TestAPIRejectsNonJSONWrites(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Content-Type", "text/plain")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", w.Code)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	r := testRouter()

	w := get(r, "/healthz", "")

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}

	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}
