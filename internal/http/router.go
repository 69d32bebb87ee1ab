package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mk-ui-dev/renovation-concierge/internal/config"
	"github.com/mk-ui-dev/renovation-concierge/internal/http/handlers"
	"github.com/mk-ui-dev/renovation-concierge/internal/http/middlewares"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
	"github.com/mk-ui-dev/renovation-concierge/internal/session"
)

// request bodies are small JSON documents; a megabyte is already generous
const maxBodyBytes = 1 << 20

type RouterDeps struct {
	Cfg     config.Config
	Log     *slog.Logger
	Prom    *observability.Prom
	Session *session.Accessor

	Auth       *handlers.AuthHandler
	Pages      *handlers.PagesHandler
	Projects   *handlers.ProjectsHandler
	Milestones *handlers.MilestonesHandler
	Defects    *handlers.DefectsHandler
	Deliveries *handlers.DeliveriesHandler
	Visits     *handlers.VisitsHandler
	Reports    *handlers.ReportsHandler
	Health     *handlers.HealthHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(otelgin.Middleware("renovation-concierge"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	r.SetHTMLTemplate(handlers.PageTemplates())

	r.GET("/healthz", d.Health.Healthz)
	r.GET("/readyz", d.Health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Page routes sit behind the gate; it owns every redirect between
	// login and the two portal areas.
	gate := middlewares.NewGate(d.Session, d.Cfg.Routes)

	pages := r.Group("")
	pages.Use(gate.Middleware())
	{
		pages.GET("/login", d.Pages.Login)

		pages.GET("/dashboard", d.Pages.AdminShell)
		pages.GET("/dashboard/projects", d.Pages.AdminShell)
		pages.GET("/dashboard/defects", d.Pages.AdminShell)
		pages.GET("/dashboard/deliveries", d.Pages.AdminShell)
		pages.GET("/dashboard/visits", d.Pages.AdminShell)

		pages.GET("/client", d.Pages.ClientShell)
		pages.GET("/client/timeline", d.Pages.ClientShell)
		pages.GET("/client/defects", d.Pages.ClientShell)
		pages.GET("/client/reports", d.Pages.ClientShell)
	}

	// API routes guard themselves with JSON errors instead of redirects.
	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())
	api.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	{
		loginLimiter := middlewares.NewRateLimiter(d.Cfg.LoginRateLimit, d.Cfg.LoginRateWindow)

		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), d.Auth.Login)
			auth.POST("/logout", d.Auth.Logout)
			auth.GET("/me", d.Auth.Me)
		}

		api.GET("/projects", d.Projects.List)
		api.POST("/projects", d.Projects.Create)
		api.GET("/projects/stats", d.Projects.Stats)
		api.GET("/projects/:id", d.Projects.Get)
		api.PATCH("/projects/:id", d.Projects.Update)

		api.GET("/milestones", d.Milestones.List)
		api.POST("/milestones", d.Milestones.Create)
		api.PATCH("/milestones/:id", d.Milestones.Update)

		api.GET("/defects", d.Defects.List)
		api.POST("/defects", d.Defects.Create)
		api.GET("/defects/:id", d.Defects.Get)
		api.PATCH("/defects/:id", d.Defects.Update)

		api.GET("/deliveries", d.Deliveries.List)
		api.POST("/deliveries", d.Deliveries.Create)
		api.PATCH("/deliveries/:id", d.Deliveries.Update)

		api.GET("/visits", d.Visits.List)
		api.POST("/visits", d.Visits.Create)

		api.GET("/reports", d.Reports.List)
		api.POST("/reports", d.Reports.Create)
		api.GET("/reports/:id", d.Reports.Get)
	}

	return r
}
