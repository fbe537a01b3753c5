package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shb-modernhill/confirmation-form-api/internal/handler"
	"github.com/shb-modernhill/confirmation-form-api/internal/mailer"
	"github.com/shb-modernhill/confirmation-form-api/internal/middleware"
	"github.com/shb-modernhill/confirmation-form-api/internal/render"
	"github.com/shb-modernhill/confirmation-form-api/internal/repository"
	"github.com/shb-modernhill/confirmation-form-api/internal/service"
	"github.com/shb-modernhill/confirmation-form-api/pkg/config"
	"github.com/shb-modernhill/confirmation-form-api/pkg/database"
	"github.com/shb-modernhill/confirmation-form-api/pkg/logger"
	corsmiddleware "github.com/shb-modernhill/confirmation-form-api/pkg/middleware/cors"
	reqidmiddleware "github.com/shb-modernhill/confirmation-form-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	repo := repository.NewSubmissionRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.EnsureSchema(ctx); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}
	cancel()

	loc, err := time.LoadLocation(cfg.PDF.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("failed to load timezone", "zone", cfg.PDF.Timezone, "error", err)
	}

	if cfg.SMTP.From == "" || cfg.SMTP.Password == "" {
		logr.Sugar().Warnw("smtp sender credentials unset, confirmation emails will fail")
	}
	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		logr.Sugar().Warnw("admin credentials unset, console login is disabled")
	}

	metrics := service.NewMetricsService()
	renderer := render.NewRenderer(loc)
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	}, logr)

	submissionSvc := service.NewSubmissionService(repo, renderer, mail, nil, metrics, logr, cfg.PDF.TemplatePath)
	adminSvc := service.NewAdminService(repo, service.AdminConfig{
		Username:    cfg.Admin.Username,
		Password:    cfg.Admin.Password,
		TokenSecret: cfg.Admin.TokenSecret,
		TokenExpiry: cfg.Admin.TokenExpiry,
	}, loc, logr, nil, nil)

	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/submissions", submissionHandler.Submit)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)

	protected := admin.Group("")
	protected.Use(middleware.AdminAuth(adminSvc))
	protected.POST("/logout", adminHandler.Logout)
	protected.GET("/submissions", adminHandler.List)
	protected.GET("/submissions/export", adminHandler.Export)
	protected.PUT("/submissions/:id", adminHandler.Update)
	protected.DELETE("/submissions/:id", adminHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
