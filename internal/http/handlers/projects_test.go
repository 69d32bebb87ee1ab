package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/cache"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/project"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
)

type fakeProjects struct {
	byID map[string]project.Project

	countCalls int
}

func (f *fakeProjects) Create(_ context.Context, req project.CreateProjectRequest) (project.Project, error) {
	p := project.NewFromCreateRequest(req)
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (project.Project, error) {
	p, ok := f.byID[id]

	if !ok {
		return project.Project{}, postgres.ErrProjectNotFound
	}

	return p, nil
}

func (f *fakeProjects) List(_ context.Context) ([]project.Project, error) {
	out := []project.Project{}
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjects) ListByClient(_ context.Context, clientID string) ([]project.Project, error) {
	out := []project.Project{}
	for _, p := range f.byID {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) Update(_ context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
	p, ok := f.byID[id]

	if !ok {
		return project.Project{}, postgres.ErrProjectNotFound
	}

	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Name != nil {
		p.Name = *req.Name
	}

	f.byID[id] = p
	return p, nil
}

func (f *fakeProjects) CountByStatus(_ context.Context) (map[project.Status]int, error) {
	f.countCalls++

	counts := map[project.Status]int{}
	for _, p := range f.byID {
		counts[p.Status]++
	}
	return counts, nil
}

func seededProjects() *fakeProjects {
	return &fakeProjects{byID: map[string]project.Project{
		projAID: {ID: projAID, Name: "Loft conversion", Status: project.StatusInProgress, ClientID: clientAIdent().ID},
		projBID: {ID: projBID, Name: "Kitchen refit", Status: project.StatusPlanning, ClientID: clientBIdent().ID},
	}}
}

func projectsRouter(store *fakeProjects) *gin.Engine {
	h := NewProjectsHandler(store, testSession(), cache.New(time.Minute), discardLogger())

	r := gin.New()
	r.GET("/api/projects", h.List)
	r.POST("/api/projects", h.Create)
	r.GET("/api/projects/stats", h.Stats)
	r.GET("/api/projects/:id", h.Get)
	r.PATCH("/api/projects/:id", h.Update)

	return r
}

func TestProjectsListScoping(t *testing.T) {
	r := projectsRouter(seededProjects())

	w := doJSON(t, r, http.MethodGet, "/api/projects", "admin", "")

	if w.Code != http.StatusOK {
		t.Fatalf("admin list: %d", w.Code)
	}

	body := w.Body.String()

	if !strings.Contains(body, projAID) || !strings.Contains(body, projBID) {
		t.Fatalf("admin should see every project: %s", body)
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects", "client-a", "")
	body = w.Body.String()

	if !strings.Contains(body, projAID) || strings.Contains(body, projBID) {
		t.Fatalf("client must only see owned projects: %s", body)
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects", "", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: %d, want 401", w.Code)
	}
}

// A client probing someone else's project id must get a response
// identical to a genuinely missing project.
func TestProjectGetOwnershipLooksLikeNotFound(t *testing.T) {
	r := projectsRouter(seededProjects())

	foreign := doJSON(t, r, http.MethodGet, "/api/projects/"+projBID, "client-a", "")
	missing := doJSON(t, r, http.MethodGet, "/api/projects/does-not-exist", "client-a", "")

	if foreign.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("statuses = %d / %d, want both 404", foreign.Code, missing.Code)
	}

	if foreign.Body.String() != missing.Body.String() {
		t.Fatalf("bodies differ:\n%s\n%s", foreign.Body.String(), missing.Body.String())
	}

	// the owner still sees it
	own := doJSON(t, r, http.MethodGet, "/api/projects/"+projAID, "client-a", "")

	if own.Code != http.StatusOK {
		t.Fatalf("owner get: %d", own.Code)
	}
}

func TestProjectCreateIsAdminOnly(t *testing.T) {
	store := seededProjects()
	r := projectsRouter(store)

	body := `{"name":"Bathroom","address":"1 Main St","package":"standard","startDate":"2026-09-01T00:00:00Z","endDate":"2026-12-01T00:00:00Z","clientId":"` + clientAIdent().ID + `"}`

	w := doJSON(t, r, http.MethodPost, "/api/projects", "client-a", body)

	if w.Code != http.StatusForbidden {
		t.Fatalf("client create: %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/projects", "admin", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("admin create: %d, body %s", w.Code, w.Body.String())
	}

	if len(store.byID) != 3 {
		t.Fatalf("project not stored, have %d", len(store.byID))
	}
}

func TestProjectUpdate(t *testing.T) {
	store := seededProjects()
	r := projectsRouter(store)

	w := doJSON(t, r, http.MethodPatch, "/api/projects/"+projAID, "admin", `{"status":"completed"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("update: %d, body %s", w.Code, w.Body.String())
	}

	if store.byID[projAID].Status != project.StatusCompleted {
		t.Fatalf("status not applied: %q", store.byID[projAID].Status)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/projects/missing", "admin", `{"status":"completed"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("missing update: %d, want 404", w.Code)
	}
}

func TestProjectStatsCachedAndAdminOnly(t *testing.T) {
	store := seededProjects()
	r := projectsRouter(store)

	if w := doJSON(t, r, http.MethodGet, "/api/projects/stats", "client-a", ""); w.Code != http.StatusForbidden {
		t.Fatalf("client stats: %d, want 403", w.Code)
	}

	for i := 0; i < 3; i++ {
		if w := doJSON(t, r, http.MethodGet, "/api/projects/stats", "admin", ""); w.Code != http.StatusOK {
			t.Fatalf("stats: %d", w.Code)
		}
	}

	if store.countCalls != 1 {
		t.Fatalf("counts query should be cached, ran %d times", store.countCalls)
	}
}
