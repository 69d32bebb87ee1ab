package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/milestone"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

type MilestonesStore interface {
	Create(ctx context.Context, req milestone.CreateMilestoneRequest) (milestone.Milestone, error)
	ListByProject(ctx context.Context, projectID string) ([]milestone.Milestone, error)
	Update(ctx context.Context, id string, req milestone.UpdateMilestoneRequest) (milestone.Milestone, error)
}

type MilestonesHandler struct {
	milestones MilestonesStore
	projects   ProjectReader
	session    *session.Accessor
	log        *slog.Logger
}

func NewMilestonesHandler(milestones MilestonesStore, projects ProjectReader, sess *session.Accessor, log *slog.Logger) *MilestonesHandler {
	return &MilestonesHandler{
		milestones: milestones,
		projects:   projects,
		session:    sess,
		log:        log,
	}
}

// List returns a project's milestones in timeline order. Both roles may
// read; clients only for their own projects.
func (h *MilestonesHandler) List(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	projectID := ctx.Query("projectId")

	if projectID == "" {
		RespondBadRequest(ctx, "projectId is required", nil)
		return
	}

	if _, ok := resolveProject(ctx, h.projects, ident, projectID); !ok {
		return
	}

	list, err := h.milestones.ListByProject(ctx.Request.Context(), projectID)

	if err != nil {
		h.log.Error("milestones list failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"milestones": list})
}

func (h *MilestonesHandler) Create(ctx *gin.Context) {
	ident, err := h.session.RequireAdmin(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req milestone.CreateMilestoneRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if _, ok := resolveProject(ctx, h.projects, ident, req.ProjectID); !ok {
		return
	}

	m, err := h.milestones.Create(ctx.Request.Context(), req)

	if err != nil {
		h.log.Error("milestone create failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"milestone": m})
}

func (h *MilestonesHandler) Update(ctx *gin.Context) {
	if _, err := h.session.RequireAdmin(ctx); err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req milestone.UpdateMilestoneRequest

	if !BindJSON(ctx, &req) {
		return
	}

	m, err := h.milestones.Update(ctx.Request.Context(), ctx.Param("id"), req)

	if err != nil {
		if errors.Is(err, postgres.ErrMilestoneNotFound) {
			RespondNotFound(ctx, "Milestone not found")
			return
		}

		h.log.Error("milestone update failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"milestone": m})
}
