package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/visit"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

type VisitsStore interface {
	Create(ctx context.Context, req visit.CreateSiteVisitRequest, inspectorID string) (visit.SiteVisit, error)
	List(ctx context.Context, projectID *string) ([]visit.SiteVisit, error)
}

type VisitsHandler struct {
	visits   VisitsStore
	projects ProjectReader
	session  *session.Accessor
	log      *slog.Logger
}

func NewVisitsHandler(visits VisitsStore, projects ProjectReader, sess *session.Accessor, log *slog.Logger) *VisitsHandler {
	return &VisitsHandler{
		visits:   visits,
		projects: projects,
		session:  sess,
		log:      log,
	}
}

func (h *VisitsHandler) List(ctx *gin.Context) {
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

	list, err := h.visits.List(ctx.Request.Context(), filter)

	if err != nil {
		h.log.Error("visits list failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"visits": list})
}

// Create logs a site visit. The inspector is always the admin making the
// call; there is no way to file a visit as someone else.
func (h *VisitsHandler) Create(ctx *gin.Context) {
	ident, err := h.session.RequireAdmin(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req visit.CreateSiteVisitRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if _, ok := resolveProject(ctx, h.projects, ident, req.ProjectID); !ok {
		return
	}

	v, err := h.visits.Create(ctx.Request.Context(), req, ident.ID)

	if err != nil {
		h.log.Error("visit create failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"visit": v})
}
