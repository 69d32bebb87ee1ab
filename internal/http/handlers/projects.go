package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/cache"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/project"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

type ProjectsStore interface {
	Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error)
	GetByID(ctx context.Context, id string) (project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
	ListByClient(ctx context.Context, clientID string) ([]project.Project, error)
	Update(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error)
	CountByStatus(ctx context.Context) (map[project.Status]int, error)
}

type ProjectsHandler struct {
	projects ProjectsStore
	session  *session.Accessor
	stats    *cache.Cache
	log      *slog.Logger
}

func NewProjectsHandler(projects ProjectsStore, sess *session.Accessor, stats *cache.Cache, log *slog.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projects: projects,
		session:  sess,
		stats:    stats,
		log:      log,
	}
}

// List returns every project for admins and only owned projects for
// clients. There is no query knob to widen a client's view.
func (h *ProjectsHandler) List(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var list []project.Project

	if ident.Role == user.RoleAdmin {
		list, err = h.projects.List(ctx.Request.Context())
	} else {
		list, err = h.projects.ListByClient(ctx.Request.Context(), ident.ID)
	}

	if err != nil {
		h.log.Error("projects list failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *ProjectsHandler) Create(ctx *gin.Context) {
	if _, err := h.session.RequireAdmin(ctx); err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.projects.Create(ctx.Request.Context(), req)

	if err != nil {
		h.log.Error("project create failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	h.stats.Delete(statsCacheKey)

	ctx.JSON(http.StatusCreated, gin.H{"project": p})
}

// Get fetches one project. A client asking for someone else's project
// gets the same 404 as a project that does not exist; ownership is not
// probeable.
func (h *ProjectsHandler) Get(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	p, err := h.projects.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		if errors.Is(err, postgres.ErrProjectNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		h.log.Error("project get failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	if ident.Role != user.RoleAdmin && p.ClientID != ident.ID {
		RespondNotFound(ctx, "Project not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectsHandler) Update(ctx *gin.Context) {
	if _, err := h.session.RequireAdmin(ctx); err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req project.UpdateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.projects.Update(ctx.Request.Context(), ctx.Param("id"), req)

	if err != nil {
		if errors.Is(err, postgres.ErrProjectNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		h.log.Error("project update failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	h.stats.Delete(statsCacheKey)

	ctx.JSON(http.StatusOK, gin.H{"project": p})
}

const statsCacheKey = "projects.stats"

// Stats powers the admin dashboard tiles. The counts query is cached for
// a few seconds; invalidated on every project write.
func (h *ProjectsHandler) Stats(ctx *gin.Context) {
	if _, err := h.session.RequireAdmin(ctx); err != nil {
		RespondGuardError(ctx, err)
		return
	}

	if cached, ok := h.stats.Get(statsCacheKey); ok {
		ctx.JSON(http.StatusOK, gin.H{"stats": cached})
		return
	}

	counts, err := h.projects.CountByStatus(ctx.Request.Context())

	if err != nil {
		h.log.Error("project stats failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	h.stats.Set(statsCacheKey, counts)

	ctx.JSON(http.StatusOK, gin.H{"stats": counts})
}
