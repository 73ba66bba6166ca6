// Package router assembles the portal's gin engine.
package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-portal/internal/handler"
	"github.com/noah-isme/grading-portal/internal/middleware"
	"github.com/noah-isme/grading-portal/internal/models"
	"github.com/noah-isme/grading-portal/internal/service"
	"github.com/noah-isme/grading-portal/internal/session"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
	"github.com/noah-isme/grading-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/grading-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/grading-portal/pkg/middleware/requestid"
)

type identityResolver interface {
	Me(ctx context.Context, creds backend.Credentials) (*models.User, error)
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Submission  *handler.SubmissionHandler
	Leaderboard *handler.LeaderboardHandler
	Admin       *handler.AdminHandler
	Assignment  *handler.AssignmentHandler
	Metrics     *handler.MetricsHandler
	Proxy       *handler.ProxyHandler
}

// Options configures the engine.
type Options struct {
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Renderer       *view.Renderer
	Resolver       identityResolver
	Guard          *session.Guard
	ResolveTimeout time.Duration
	AllowedOrigins []string
	CSRFHeader     string
	EnableDocs     bool
}

// New wires middleware and routes. Page routes resolve the session and pass the guard;
// proxied and operational routes do neither.
func New(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log, "/health", "/ready", "/metrics"))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(corsmiddleware.New(opts.AllowedOrigins, opts.CSRFHeader))
	r.SetHTMLTemplate(opts.Renderer.Template())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/status", h.Metrics.Status)

	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if h.Proxy != nil {
		r.Any("/api/*path", h.Proxy.Forward)
		r.Any("/oauth2/*path", h.Proxy.Forward)
		r.Any("/login/oauth2/*path", h.Proxy.Forward)
	}

	sessionMW := middleware.Session(opts.Resolver, opts.ResolveTimeout, log)
	r.GET("/session", sessionMW, h.Auth.Session)

	pages := r.Group("/", sessionMW, middleware.Guard(opts.Guard))
	{
		pages.GET("/login", h.Auth.Login)
		pages.GET("/logout", h.Auth.Logout)

		pages.GET("/", h.Submission.SubmitPage)
		pages.POST("/", h.Submission.Submit)
		pages.GET("/submissions", h.Submission.Status)
		pages.GET("/submissions/stream", h.Submission.Stream)

		pages.GET("/leaderboard/:assignmentId", h.Leaderboard.Page)
		pages.GET("/leaderboard/:assignmentId/export", h.Leaderboard.Export)

		pages.GET("/admin", h.Admin.Submissions)
		pages.GET("/admin/submissions/export", h.Admin.ExportSubmissions)

		pages.GET("/admin/assignments", h.Assignment.Page)
		pages.POST("/admin/assignments", h.Assignment.Create)
		pages.POST("/admin/assignments/:id/delete", h.Assignment.Delete)
		pages.DELETE("/admin/assignments/:id", h.Assignment.Delete)
		pages.POST("/admin/assignments/:id/leaderboard", h.Assignment.ToggleLeaderboard)
		pages.POST("/admin/assignments/:id/submissions", h.Assignment.ToggleSubmissions)
		pages.POST("/admin/grading-script", h.Assignment.GradingScript)
	}

	return r
}
