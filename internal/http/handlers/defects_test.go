package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/defect"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/jobs"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
)

type fakeDefects struct {
	byID map[string]defect.Defect
}

func (f *fakeDefects) Create(_ context.Context, req defect.CreateDefectRequest) (defect.Defect, error) {
	d := defect.NewFromCreateRequest(req)
	f.byID[d.ID] = d
	return d, nil
}

func (f *fakeDefects) GetByID(_ context.Context, id string) (defect.Defect, error) {
	d, ok := f.byID[id]

	if !ok {
		return defect.Defect{}, postgres.ErrDefectNotFound
	}

	return d, nil
}

func (f *fakeDefects) List(_ context.Context, projectID *string) ([]defect.Defect, error) {
	out := []defect.Defect{}
	for _, d := range f.byID {
		if projectID == nil || d.ProjectID == *projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDefects) Update(_ context.Context, id string, req defect.UpdateDefectRequest, fixedAt, approvedAt *time.Time) (defect.Defect, error) {
	d, ok := f.byID[id]

	if !ok {
		return defect.Defect{}, postgres.ErrDefectNotFound
	}

	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Status != nil {
		d.Status = *req.Status
	}
	if fixedAt != nil {
		d.FixedAt = fixedAt
	}
	if approvedAt != nil {
		d.ApprovedAt = approvedAt
	}

	f.byID[id] = d
	return d, nil
}

type fakeDirectory struct{}

func (fakeDirectory) GetByID(_ context.Context, id string) (user.User, error) {
	switch id {
	case clientAIdent().ID:
		return user.User{ID: id, Email: "a@example.com", Name: "Client A", Role: user.RoleClient}, nil
	case clientBIdent().ID:
		return user.User{ID: id, Email: "b@example.com", Name: "Client B", Role: user.RoleClient}, nil
	}
	return user.User{}, postgres.ErrUserNotFound
}

type fakeQueue struct {
	enqueued []jobs.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, j jobs.Job) error {
	f.enqueued = append(f.enqueued, j)
	return nil
}

func seededDefects() *fakeDefects {
	now := time.Now().UTC()

	return &fakeDefects{byID: map[string]defect.Defect{
		"d-open": {
			ID: "d-open", Title: "Cracked tile", Severity: defect.SeverityLow,
			Status: defect.StatusOpen, ProjectID: projAID, ReportedAt: now,
		},
		"d-fixed": {
			ID: "d-fixed", Title: "Leaky pipe", Severity: defect.SeverityHigh,
			Status: defect.StatusFixed, ProjectID: projAID, ReportedAt: now,
		},
		"d-other": {
			ID: "d-other", Title: "Scratched floor", Severity: defect.SeverityMedium,
			Status: defect.StatusFixed, ProjectID: projBID, ReportedAt: now,
		},
	}}
}

func defectsRouter(store *fakeDefects, q *fakeQueue) *gin.Engine {
	h := NewDefectsHandler(store, seededProjects(), fakeDirectory{}, testSession(), q, discardLogger())

	r := gin.New()
	r.GET("/api/defects", h.List)
	r.POST("/api/defects", h.Create)
	r.GET("/api/defects/:id", h.Get)
	r.PATCH("/api/defects/:id", h.Update)

	return r
}

func TestDefectListRequiresProjectForClients(t *testing.T) {
	r := defectsRouter(seededDefects(), &fakeQueue{})

	if w := doJSON(t, r, http.MethodGet, "/api/defects", "client-a", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("client list without projectId: %d, want 400", w.Code)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/defects?projectId="+projBID, "client-a", ""); w.Code != http.StatusNotFound {
		t.Fatalf("client list on foreign project: %d, want 404", w.Code)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/defects?projectId="+projAID, "client-a", ""); w.Code != http.StatusOK {
		t.Fatalf("client list on own project: %d", w.Code)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/defects", "admin", ""); w.Code != http.StatusOK {
		t.Fatalf("admin list: %d", w.Code)
	}
}

func TestDefectCreateOwnership(t *testing.T) {
	store := seededDefects()
	r := defectsRouter(store, &fakeQueue{})

	body := `{"title":"Peeling paint","description":"hall wall","location":"hallway","severity":"low","projectId":"` + projBID + `"}`

	// the project belongs to client B; client A filing against it sees a missing project
	if w := doJSON(t, r, http.MethodPost, "/api/defects", "client-a", body); w.Code != http.StatusNotFound {
		t.Fatalf("foreign project create: %d, want 404", w.Code)
	}

	if w := doJSON(t, r, http.MethodPost, "/api/defects", "client-b", body); w.Code != http.StatusCreated {
		t.Fatalf("own project create: %d, body %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodPost, "/api/defects", "admin", body); w.Code != http.StatusCreated {
		t.Fatalf("admin create: %d", w.Code)
	}
}

func TestDefectGetOwnershipLooksLikeNotFound(t *testing.T) {
	r := defectsRouter(seededDefects(), &fakeQueue{})

	foreign := doJSON(t, r, http.MethodGet, "/api/defects/d-other", "client-a", "")
	missing := doJSON(t, r, http.MethodGet, "/api/defects/nope", "client-a", "")

	if foreign.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("statuses = %d / %d, want both 404", foreign.Code, missing.Code)
	}

	if foreign.Body.String() != missing.Body.String() {
		t.Fatalf("bodies differ:\n%s\n%s", foreign.Body.String(), missing.Body.String())
	}
}

func TestClientMayOnlyApproveFixedDefects(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"approve fixed", "d-fixed", `{"status":"approved"}`, http.StatusOK},
		{"approve open", "d-open", `{"status":"approved"}`, http.StatusForbidden},
		{"reopen fixed", "d-fixed", `{"status":"open"}`, http.StatusForbidden},
		{"edit title", "d-fixed", `{"title":"new title"}`, http.StatusForbidden},
		{"approve plus edit", "d-fixed", `{"status":"approved","severity":"low"}`, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := seededDefects()
			r := defectsRouter(store, &fakeQueue{})

			w := doJSON(t, r, http.MethodPatch, "/api/defects/"+tc.id, "client-a", tc.body)

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.status, w.Body.String())
			}
		})
	}
}

func TestDefectStatusTransitionStampsAndNotifies(t *testing.T) {
	store := seededDefects()
	q := &fakeQueue{}
	r := defectsRouter(store, q)

	w := doJSON(t, r, http.MethodPatch, "/api/defects/d-open", "admin", `{"status":"fixed"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if store.byID["d-open"].FixedAt == nil {
		t.Fatal("fixedAt not stamped on transition to fixed")
	}

	if len(q.enqueued) != 1 {
		t.Fatalf("expected one notification job, got %d", len(q.enqueued))
	}

	job := q.enqueued[0]

	if job.Type != jobs.JobNotifyDefectStatus {
		t.Fatalf("job type = %q", job.Type)
	}

	payload, err := jobs.DecodePayload(job)

	if err != nil {
		t.Fatalf("payload decode: %v", err)
	}

	p, ok := payload.(jobs.NotifyDefectStatusPayload)

	if !ok {
		t.Fatalf("payload type %T", payload)
	}

	if p.ClientEmail != "a@example.com" || p.Status != defect.StatusFixed {
		t.Fatalf("payload mismatch: %+v", p)
	}
}

func TestDefectUpdateWithoutStatusChangeDoesNotNotify(t *testing.T) {
	store := seededDefects()
	q := &fakeQueue{}
	r := defectsRouter(store, q)

	w := doJSON(t, r, http.MethodPatch, "/api/defects/d-open", "admin", `{"title":"Cracked tiles"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if len(q.enqueued) != 0 {
		t.Fatalf("no notification expected, got %d", len(q.enqueued))
	}
}

func TestClientApproveStampsApprovedAt(t *testing.T) {
	store := seededDefects()
	q := &fakeQueue{}
	r := defectsRouter(store, q)

	w := doJSON(t, r, http.MethodPatch, "/api/defects/d-fixed", "client-a", `{"status":"approved"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if store.byID["d-fixed"].ApprovedAt == nil {
		t.Fatal("approvedAt not stamped")
	}

	if len(q.enqueued) != 1 {
		t.Fatalf("approval should notify, got %d jobs", len(q.enqueued))
	}
}
