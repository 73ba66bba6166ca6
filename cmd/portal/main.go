package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/grading-portal/api/swagger"
	"github.com/noah-isme/grading-portal/internal/handler"
	"github.com/noah-isme/grading-portal/internal/repository"
	"github.com/noah-isme/grading-portal/internal/router"
	"github.com/noah-isme/grading-portal/internal/service"
	"github.com/noah-isme/grading-portal/internal/session"
	"github.com/noah-isme/grading-portal/internal/view"
	"github.com/noah-isme/grading-portal/pkg/backend"
	"github.com/noah-isme/grading-portal/pkg/cache"
	"github.com/noah-isme/grading-portal/pkg/config"
	"github.com/noah-isme/grading-portal/pkg/logger"
)

// @title Grading Portal
// @version 1.0.0
// @description Server-rendered portal for the model grading backend
// @BasePath /
// @schemes http

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()

	client, err := backend.New(backend.Config{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout,
		CSRFCookie: cfg.Backend.CSRFCookie,
		CSRFHeader: cfg.Backend.CSRFHeader,

		MaxResponseBytes: cfg.Backend.MaxResponseBytes,
	}, backend.WithLogger(logr), backend.WithObserver(metrics))
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}

	redisClient, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, leaderboard cache disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()

	userRepo := repository.NewUserRepository(client)
	submissionRepo := repository.NewSubmissionRepository(client)
	assignmentRepo := repository.NewAssignmentRepository(client)
	leaderboardRepo := repository.NewLeaderboardRepository(client)
	scriptRepo := repository.NewGradingScriptRepository(client)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Leaderboard.CacheTTL, logr, redisClient != nil)
	submissionSvc := service.NewSubmissionService(submissionRepo, cfg.Uploads, cfg.Poller.Interval, metrics, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, scriptRepo, cacheSvc, validate, logr)
	leaderboardSvc := service.NewLeaderboardService(leaderboardRepo, cacheSvc, logr)
	adminSvc := service.NewAdminService(submissionRepo)

	var healthSvc *service.HealthService
	if redisClient != nil {
		healthSvc = service.NewHealthService(client, cfg.Backend.HealthPath, cacheRepo, 0)
	} else {
		healthSvc = service.NewHealthService(client, cfg.Backend.HealthPath, nil, 0)
	}

	renderer, err := view.New()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	target, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("parse backend url: %w", err)
	}

	layout := handler.Layout{LoginURL: cfg.Session.LoginURL, LogoutURL: cfg.Session.LogoutURL}
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(layout),
		Submission:  handler.NewSubmissionHandler(submissionSvc, assignmentSvc, renderer, metrics, layout, logr),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardSvc, layout),
		Admin:       handler.NewAdminHandler(adminSvc, layout),
		Assignment:  handler.NewAssignmentHandler(assignmentSvc, layout, logr),
		Metrics:     handler.NewMetricsHandler(metrics, healthSvc),
		Proxy:       handler.NewProxyHandler(target, logr),
	}

	engine := router.New(router.Options{
		Logger:         logr,
		Metrics:        metrics,
		Renderer:       renderer,
		Resolver:       userRepo,
		Guard:          session.NewGuard("/login", cfg.Session.PublicPaths...),
		ResolveTimeout: cfg.Session.ResolveTimeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CSRFHeader:     cfg.Backend.CSRFHeader,
		EnableDocs:     cfg.Docs.Enabled && cfg.Env != config.EnvProduction,
	}, handlers)
	engine.MaxMultipartMemory = 32 << 20

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case sig := <-shutdown:
		logr.Sugar().Infow("shutdown started", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logr.Sugar().Infow("shutdown complete")
	}
	return nil
}
