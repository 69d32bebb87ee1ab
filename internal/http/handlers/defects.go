package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/defect"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/project"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/jobs"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

type DefectsStore interface {
	Create(ctx context.Context, req defect.CreateDefectRequest) (defect.Defect, error)
	GetByID(ctx context.Context, id string) (defect.Defect, error)
	List(ctx context.Context, projectID *string) ([]defect.Defect, error)
	Update(ctx context.Context, id string, req defect.UpdateDefectRequest, fixedAt, approvedAt *time.Time) (defect.Defect, error)
}

// ClientDirectory resolves a project's owner so notification jobs can
// carry the recipient along.
type ClientDirectory interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// Enqueuer pushes notification jobs onto the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, j jobs.Job) error
}

type DefectsHandler struct {
	defects  DefectsStore
	projects ProjectReader
	users    ClientDirectory
	session  *session.Accessor
	queue    Enqueuer
	log      *slog.Logger
}

func NewDefectsHandler(defects DefectsStore, projects ProjectReader, users ClientDirectory, sess *session.Accessor, queue Enqueuer, log *slog.Logger) *DefectsHandler {
	return &DefectsHandler{
		defects:  defects,
		projects: projects,
		users:    users,
		session:  sess,
		queue:    queue,
		log:      log,
	}
}

func (h *DefectsHandler) List(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	projectID := ctx.Query("projectId")

	var filter *string

	if ident.Role == user.RoleAdmin {
		if projectID != "" {
			filter = &projectID
		}
	} else {
		if projectID == "" {
			RespondBadRequest(ctx, "projectId is required", nil)
			return
		}

		if _, ok := resolveProject(ctx, h.projects, ident, projectID); !ok {
			return
		}

		filter = &projectID
	}

	list, err := h.defects.List(ctx.Request.Context(), filter)

	if err != nil {
		h.log.Error("defects list failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"defects": list})
}

// Create files a defect. Admins may file against any project; clients
// only against their own (anything else looks like a missing project).
func (h *DefectsHandler) Create(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req defect.CreateDefectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if _, ok := resolveProject(ctx, h.projects, ident, req.ProjectID); !ok {
		return
	}

	d, err := h.defects.Create(ctx.Request.Context(), req)

	if err != nil {
		h.log.Error("defect create failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"defect": d})
}

func (h *DefectsHandler) Get(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	d, _, ok := h.loadVisible(ctx, ident, ctx.Param("id"))

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"defect": d})
}

// Update applies a patch with role-dependent rules: admins may change
// anything, clients may only approve a defect that is currently fixed on
// a project they own. Status transitions stamp fixedAt/approvedAt once
// and fan out a notification job.
func (h *DefectsHandler) Update(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	existing, p, ok := h.loadVisible(ctx, ident, ctx.Param("id"))

	if !ok {
		return
	}

	var req defect.UpdateDefectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if ident.Role == user.RoleClient && !clientMayApprove(existing, req) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	var fixedAt, approvedAt *time.Time

	if req.Status != nil {
		now := time.Now().UTC()

		switch *req.Status {
		case defect.StatusFixed:
			if existing.FixedAt == nil {
				fixedAt = &now
			}
		case defect.StatusApproved:
			if existing.ApprovedAt == nil {
				approvedAt = &now
			}
		}
	}

	updated, err := h.defects.Update(ctx.Request.Context(), existing.ID, req, fixedAt, approvedAt)

	if err != nil {
		if errors.Is(err, postgres.ErrDefectNotFound) {
			RespondNotFound(ctx, "Defect not found")
			return
		}

		h.log.Error("defect update failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	if req.Status != nil && *req.Status != existing.Status {
		h.notifyStatus(ctx, updated, p)
	}

	ctx.JSON(http.StatusOK, gin.H{"defect": updated})
}

// loadVisible fetches a defect and its project and applies the ownership
// rule. An unowned defect is reported as missing, never as forbidden.
func (h *DefectsHandler) loadVisible(ctx *gin.Context, ident user.Identity, id string) (defect.Defect, project.Project, bool) {
	d, err := h.defects.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, postgres.ErrDefectNotFound) {
			RespondNotFound(ctx, "Defect not found")
			return defect.Defect{}, project.Project{}, false
		}

		h.log.Error("defect get failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return defect.Defect{}, project.Project{}, false
	}

	p, err := h.projects.GetByID(ctx.Request.Context(), d.ProjectID)

	if err != nil {
		h.log.Error("defect project lookup failed", "defect_id", d.ID, "err", err)
		RespondInternal(ctx, "Something went wrong")
		return defect.Defect{}, project.Project{}, false
	}

	if ident.Role != user.RoleAdmin && p.ClientID != ident.ID {
		RespondNotFound(ctx, "Defect not found")
		return defect.Defect{}, project.Project{}, false
	}

	return d, p, true
}

// clientMayApprove is the whole client write surface on defects: flip a
// fixed defect to approved, nothing else.
func clientMayApprove(existing defect.Defect, req defect.UpdateDefectRequest) bool {
	if req.Title != nil || req.Description != nil || req.Location != nil || req.Severity != nil {
		return false
	}

	if req.Status == nil || *req.Status != defect.StatusApproved {
		return false
	}

	return existing.Status == defect.StatusFixed
}

// notifyStatus enqueues a defect-status notification. Failures are
// logged and swallowed: the status change itself already committed.
func (h *DefectsHandler) notifyStatus(ctx *gin.Context, d defect.Defect, p project.Project) {
	client, err := h.users.GetByID(ctx.Request.Context(), p.ClientID)

	if err != nil {
		h.log.Error("notify skipped, client lookup failed", "project_id", p.ID, "err", err)
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobNotifyDefectStatus, jobs.NotifyDefectStatusPayload{
		DefectID:    d.ID,
		ProjectID:   p.ID,
		Title:       d.Title,
		Status:      d.Status,
		ClientEmail: client.Email,
		ClientName:  client.Name,
		RequestID:   requestIDFrom(ctx),
	})

	if err != nil {
		h.log.Error("notify payload encode failed", "defect_id", d.ID, "err", err)
		return
	}

	job, err := jobs.NewJob(jobs.JobNotifyDefectStatus, payload)

	if err != nil {
		h.log.Error("notify job build failed", "defect_id", d.ID, "err", err)
		return
	}

	if err := h.queue.Enqueue(context.WithoutCancel(ctx.Request.Context()), job); err != nil {
		h.log.Error("notify enqueue failed", "defect_id", d.ID, "job_id", job.ID, "err", err)
	}
}
