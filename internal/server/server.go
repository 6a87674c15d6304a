package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kettlegourmet/hrm/internal/audit"
	"github.com/kettlegourmet/hrm/internal/config"
	"github.com/kettlegourmet/hrm/internal/handler"
	"github.com/kettlegourmet/hrm/internal/healthcheck"
	"github.com/kettlegourmet/hrm/internal/middleware"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/ratelimit"
	"github.com/kettlegourmet/hrm/internal/repository"
	"github.com/kettlegourmet/hrm/internal/service"
	"github.com/kettlegourmet/hrm/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     *zap.Logger
	redis      *storage.RedisClient
	postgres   *storage.Postgres
	recorder   *audit.Recorder
	health     *healthcheck.Checker
	registry   *prometheus.Registry
	httpServer *http.Server

	authService  *service.AuthService
	authHandler  *handler.AuthHandler
	leaveHandler *handler.LeaveHandler
	userHandler  *handler.UserHandler
	auditHandler *handler.AuditHandler
	system       *handler.SystemHandler
}

func New(cfg *config.Config, logger *zap.Logger, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Repositories
	userRepo := repository.NewUserRepository(postgres)
	tierRepo := repository.NewLeaveQuotaRepository(postgres)
	quotaRepo := repository.NewEmployeeLeaveQuotaRepository(postgres)
	auditRepo := repository.NewAuditRepository(postgres)

	recorder := audit.NewRecorder(auditRepo, logger, audit.Config{
		BufferSize:    cfg.Audit.BufferSize,
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: time.Duration(cfg.Audit.FlushIntervalSeconds) * time.Second,
	})

	loginLimiter := ratelimit.NewLimiter(redis, cfg.Login.Algorithm, "login", cfg.Login.MaxAttempts,
		time.Duration(cfg.Login.WindowMinutes)*time.Minute)

	health := healthcheck.NewChecker(map[string]healthcheck.Probe{
		"database": postgres,
		"redis":    redis,
	}, healthcheck.Config{}, logger, registry)
	health.Start()

	// Services
	authService := service.NewAuthService(userRepo, loginLimiter, logger, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiryHours)
	leaveService := service.NewLeaveService(tierRepo, quotaRepo, redis, recorder, logger,
		time.Duration(cfg.Cache.TierTTLSeconds)*time.Second)
	userService := service.NewUserService(userRepo, tierRepo, recorder, logger)
	auditService := service.NewAuditService(auditRepo)

	s := &Server{
		router:       router,
		config:       cfg,
		logger:       logger,
		redis:        redis,
		postgres:     postgres,
		recorder:     recorder,
		health:       health,
		registry:     registry,
		authService:  authService,
		authHandler:  handler.NewAuthHandler(authService),
		leaveHandler: handler.NewLeaveHandler(leaveService),
		userHandler:  handler.NewUserHandler(userService),
		auditHandler: handler.NewAuditHandler(auditService),
		system:       handler.NewSystemHandler(health),
	}

	// Setup middleware
	s.setupMiddleware()

	// Setup routes
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.NewMetrics(s.registry).Handler())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.system.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	api.POST("/user/auth", s.authHandler.Login)

	authed := api.Group("", middleware.RequireAuth(s.authService))
	authed.GET("/user", s.authHandler.Me)

	admin := authed.Group("", middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", s.userHandler.List)
		admin.POST("/users", s.userHandler.Create)
		admin.PUT("/users/:id/status", s.userHandler.SetStatus)

		admin.GET("/leave/quota", s.leaveHandler.ListTiers)
		admin.POST("/leave/quota", s.leaveHandler.CreateTier)
		admin.PUT("/leave/quota", s.leaveHandler.EditTier)
		admin.DELETE("/leave/quota/:id", s.leaveHandler.DeleteTier)
		admin.GET("/leave/quota/size/:tier", s.leaveHandler.TierSize)
		admin.POST("/leave/quota/replace", s.leaveHandler.ReplaceTier)

		admin.GET("/leave/employee-quota", s.leaveHandler.ListEmployeeQuotas)
		admin.PUT("/leave/employee-quota", s.leaveHandler.EditEmployeeQuota)

		admin.GET("/leave/audit", s.auditHandler.List)
	}
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	s.logger.Info("Starting HRM server",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment),
	)

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, then flushes pending audit entries
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	s.health.Stop()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	if closeErr := s.recorder.Close(ctx); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
