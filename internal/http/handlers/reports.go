package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/project"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/report"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/jobs"
	"github.com/mk-ui-dev/renovation-concierge/internal/repo/postgres"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

type ReportsStore interface {
	Create(ctx context.Context, req report.CreateReportRequest) (report.Report, error)
	GetByID(ctx context.Context, id string) (report.Report, error)
	ListByProject(ctx context.Context, projectID string) ([]report.Report, error)
}

type ReportsHandler struct {
	reports  ReportsStore
	projects ProjectReader
	users    ClientDirectory
	session  *session.Accessor
	queue    Enqueuer
	log      *slog.Logger
}

func NewReportsHandler(reports ReportsStore, projects ProjectReader, users ClientDirectory, sess *session.Accessor, queue Enqueuer, log *slog.Logger) *ReportsHandler {
	return &ReportsHandler{
		reports:  reports,
		projects: projects,
		users:    users,
		session:  sess,
		queue:    queue,
		log:      log,
	}
}

func (h *ReportsHandler) List(ctx *gin.Context) {
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

	list, err := h.reports.ListByProject(ctx.Request.Context(), projectID)

	if err != nil {
		h.log.Error("reports list failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"reports": list})
}

func (h *ReportsHandler) Get(ctx *gin.Context) {
	ident, err := h.session.RequireAuth(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	r, err := h.reports.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		if errors.Is(err, postgres.ErrReportNotFound) {
			RespondNotFound(ctx, "Report not found")
			return
		}

		h.log.Error("report get failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	p, err := h.projects.GetByID(ctx.Request.Context(), r.ProjectID)

	if err != nil {
		h.log.Error("report project lookup failed", "report_id", r.ID, "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	if ident.Role != user.RoleAdmin && p.ClientID != ident.ID {
		RespondNotFound(ctx, "Report not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"report": r})
}

// Create publishes a report and tells the project's client about it via
// the notification queue.
func (h *ReportsHandler) Create(ctx *gin.Context) {
	ident, err := h.session.RequireAdmin(ctx)

	if err != nil {
		RespondGuardError(ctx, err)
		return
	}

	var req report.CreateReportRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, ok := resolveProject(ctx, h.projects, ident, req.ProjectID)

	if !ok {
		return
	}

	r, err := h.reports.Create(ctx.Request.Context(), req)

	if err != nil {
		h.log.Error("report create failed", "err", err)
		RespondInternal(ctx, "Something went wrong")
		return
	}

	h.notifyReady(ctx, r, p)

	ctx.JSON(http.StatusCreated, gin.H{"report": r})
}

func (h *ReportsHandler) notifyReady(ctx *gin.Context, r report.Report, p project.Project) {
	client, err := h.users.GetByID(ctx.Request.Context(), p.ClientID)

	if err != nil {
		h.log.Error("notify skipped, client lookup failed", "project_id", p.ID, "err", err)
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobNotifyReportReady, jobs.NotifyReportReadyPayload{
		ReportID:    r.ID,
		ProjectID:   p.ID,
		Title:       r.Title,
		ClientEmail: client.Email,
		ClientName:  client.Name,
		RequestID:   requestIDFrom(ctx),
	})

	if err != nil {
		h.log.Error("notify payload encode failed", "report_id", r.ID, "err", err)
		return
	}

	job, err := jobs.NewJob(jobs.JobNotifyReportReady, payload)

	if err != nil {
		h.log.Error("notify job build failed", "report_id", r.ID, "err", err)
		return
	}

	if err := h.queue.Enqueue(context.WithoutCancel(ctx.Request.Context()), job); err != nil {
		h.log.Error("notify enqueue failed", "report_id", r.ID, "job_id", job.ID, "err", err)
	}
}
