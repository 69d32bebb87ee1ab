package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/project"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
)

type ProjectReader interface {
	GetByID(ctx context.Context, id string) (project.Project, error)
}

// resolveProject loads a project and enforces visibility for the caller.
// A client asking about a project they do not own gets the same
// not-found response as a project that does not exist, so the error
// cannot be used to probe for valid ids. On failure the response has
// already been written and the second return is false.
func resolveProject(ctx *gin.Context, projects ProjectReader, ident user.Identity, projectID string) (project.Project, bool) {
	p, err := projects.GetByID(ctx.Request.Context(), projectID)

	if err != nil {
		if errors.Is(err, postgres.ErrProjectNotFound) {
			RespondNotFound(ctx, "Project not found")
			return project.Project{}, false
		}

		RespondInternal(ctx, "Something went wrong")
		return project.Project{}, false
	}

	if ident.Role != user.RoleAdmin && p.ClientID != ident.ID {
		RespondNotFound(ctx, "Project not found")
		return project.Project{}, false
	}

	return p, true
}
