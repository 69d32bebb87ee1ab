package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/config"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSession struct {
	ident user.Identity
	ok    bool
}

func (f *fakeSession) CurrentUser(_ *gin.Context) (user.Identity, bool) {
	return f.ident, f.ok
}

func defaultRoutes() config.Routes {
	return config.Routes{
		LoginPath:    "/login",
		AdminPrefix:  "/dashboard",
		ClientPrefix: "/client",
	}
}

func TestCategorize(t *testing.T) {
	g := NewGate(&fakeSession{}, defaultRoutes())

	tests := []struct {
		path string
		want PathCategory
	}{
		{"/", CategoryPublic},
		{"/healthz", CategoryPublic},
		{"/api/projects", CategoryPublic},
		{"/login", CategoryLogin},
		{"/login/", CategoryPublic}, // exact match only
		{"/dashboard", CategoryAdminArea},
		{"/dashboard/projects", CategoryAdminArea},
		{"/dashboards", CategoryPublic}, // segment boundary, not string prefix
		{"/client", CategoryClientArea},
		{"/client/defects", CategoryClientArea},
		{"/clients", CategoryPublic},
	}

	for _, tc := range tests {
		if got := g.Categorize(tc.path); got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestCategorizeNestedPrefixes(t *testing.T) {
	// When one area is nested under the other, the longest prefix wins.
	g := NewGate(&fakeSession{}, config.Routes{
		LoginPath:    "/login",
		AdminPrefix:  "/portal",
		ClientPrefix: "/portal/client",
	})

	if got := g.Categorize("/portal/client/reports"); got != CategoryClientArea {
		t.Fatalf("nested path categorized as %q, want %q", got, CategoryClientArea)
	}

	if got := g.Categorize("/portal/settings"); got != CategoryAdminArea {
		t.Fatalf("outer path categorized as %q, want %q", got, CategoryAdminArea)
	}
}

// One row per (category, session state); the table is total.
func TestDecide(t *testing.T) {
	g := NewGate(&fakeSession{}, defaultRoutes())

	admin := user.Identity{ID: "a", Role: user.RoleAdmin}
	client := user.Identity{ID: "c", Role: user.RoleClient}
	anon := user.Identity{}

	tests := []struct {
		name     string
		category PathCategory
		ident    user.Identity
		authed   bool
		want     Decision
	}{
		{"public anon", CategoryPublic, anon, false, Decision{Allow: true}},
		{"public admin", CategoryPublic, admin, true, Decision{Allow: true}},
		{"public client", CategoryPublic, client, true, Decision{Allow: true}},

		{"login anon", CategoryLogin, anon, false, Decision{Allow: true}},
		{"login admin", CategoryLogin, admin, true, Decision{RedirectTo: "/dashboard"}},
		{"login client", CategoryLogin, client, true, Decision{RedirectTo: "/client"}},

		{"admin area anon", CategoryAdminArea, anon, false, Decision{RedirectTo: "/login"}},
		{"admin area admin", CategoryAdminArea, admin, true, Decision{Allow: true}},
		{"admin area client", CategoryAdminArea, client, true, Decision{RedirectTo: "/client"}},

		{"client area anon", CategoryClientArea, anon, false, Decision{RedirectTo: "/login"}},
		{"client area client", CategoryClientArea, client, true, Decision{Allow: true}},
		{"client area admin", CategoryClientArea, admin, true, Decision{RedirectTo: "/dashboard"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Decide(tc.category, tc.ident, tc.authed)

			if got != tc.want {
				t.Fatalf("Decide(%q) = %+v, want %+v", tc.category, got, tc.want)
			}
		})
	}
}

func gateRouter(sess SessionReader) *gin.Engine {
	r := gin.New()

	r.Use(NewGate(sess, defaultRoutes()).Middleware())

	handler := func(c *gin.Context) { c.String(http.StatusOK, "page") }

	r.GET("/login", handler)
	r.GET("/dashboard", handler)
	r.GET("/dashboard/projects", handler)
	r.GET("/client", handler)
	r.GET("/healthz", handler)

	return r
}

func TestMiddlewareRedirects(t *testing.T) {
	admin := &fakeSession{ident: user.Identity{ID: "a", Role: user.RoleAdmin}, ok: true}
	client := &fakeSession{ident: user.Identity{ID: "c", Role: user.RoleClient}, ok: true}
	anon := &fakeSession{}

	tests := []struct {
		name         string
		sess         SessionReader
		path         string
		wantStatus   int
		wantLocation string
	}{
		{"anon dashboard bounces to login", anon, "/dashboard", http.StatusFound, "/login"},
		{"anon nested dashboard bounces to login", anon, "/dashboard/projects", http.StatusFound, "/login"},
		{"client on dashboard bounces home", client, "/dashboard/projects", http.StatusFound, "/client"},
		{"admin on client area bounces home", admin, "/client", http.StatusFound, "/dashboard"},
		{"signed-in admin leaves login", admin, "/login", http.StatusFound, "/dashboard"},
		{"anon login passes", anon, "/login", http.StatusOK, ""},
		{"admin dashboard passes", admin, "/dashboard", http.StatusOK, ""},
		{"client home passes", client, "/client", http.StatusOK, ""},
		{"public path ignores session", anon, "/healthz", http.StatusOK, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gateRouter(tc.sess)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}

			if tc.wantLocation != "" && w.Header().Get("Location") != tc.wantLocation {
				t.Fatalf("location = %q, want %q", w.Header().Get("Location"), tc.wantLocation)
			}
		})
	}
}
