package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/delivery"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

type DeliveriesStore interface {
	Create(ctx context.Context, req delivery.CreateDeliveryRequest) (delivery.Delivery, error)
	List(ctx context.Context, projectID *string) ([]delivery.Delivery, error)
	Update(ctx context.Context, id string, req delivery.UpdateDeliveryRequest) (delivery.Delivery, error)
}

type DeliveriesHandler struct {
	deliveries DeliveriesStore
	projects   ProjectReader
	session    *session.Accessor
	log        *slog.Logger
}

func NewDeliveriesHandler(deliveries DeliveriesStore, projects ProjectReader, sess *session.Accessor, log *slog.Logger) *DeliveriesHandler {
	return &DeliveriesHandler{
		deliveries: deliveries,
		projects:   projects,
		session:    sess,
		log:        log,
	}
}

// List returns material deliveries. Admins see everything (optionally
// filtered by projectId); clients must name one of their own projects.
func (h *DeliveriesHandler) List(ctx *gin.Context) {
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

	list, err := h.deliveries.List(ctx.Request.Context(), filter)

	if err != nil {
		h.log.Error("deliveries list failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deliveries": list})
}

func (h *DeliveriesHandler) Create(ctx *gin.Context) {
	ident, err := h.session.RequireAdmin(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req delivery.CreateDeliveryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if _, ok := resolveProject(ctx, h.projects, ident, req.ProjectID); !ok {
		return
	}

	d, err := h.deliveries.Create(ctx.Request.Context(), req)

	if err != nil {
		h.log.Error("delivery create failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"delivery": d})
}

func (h *DeliveriesHandler) Update(ctx *gin.Context) {
	if _, err := h.session.RequireAdmin(ctx); err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req delivery.UpdateDeliveryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// stamping the delivered date falls out of the status transition
	// unless the caller supplied an explicit one
	if req.Status != nil && *req.Status == delivery.StatusDelivered && req.DeliveredDate == nil {
		now := time.Now().UTC()
		req.DeliveredDate = &now
	}

	d, err := h.deliveries.Update(ctx.Request.Context(), ctx.Param("id"), req)

	if err != nil {
		if errors.Is(err, postgres.ErrDeliveryNotFound) {
			RespondNotFound(ctx, "Delivery not found")
			return
		}

		h.log.Error("delivery update failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"delivery": d})
}
