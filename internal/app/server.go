// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"companyos_backend/internal/auth"
	"companyos_backend/internal/common"
	"companyos_backend/internal/config"
	"companyos_backend/internal/jobs"
	"companyos_backend/internal/middleware"
	"companyos_backend/internal/notification"
	"companyos_backend/internal/platform/database"
	"companyos_backend/internal/shared"
	"companyos_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	userHandler         *user.Handler
	authHandler         *auth.Handler
	notificationHandler *notification.Handler

	// Jobs and background infrastructure
	retentionJob *jobs.NotificationRetentionJob
	feed         *notification.Feed

	// Middleware instances
	authMW      gin.HandlerFunc
	adminRoleMW gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	userHandler *user.Handler,
	authHandler *auth.Handler,
	notificationHandler *notification.Handler,
	retentionJob *jobs.NotificationRetentionJob,
	feed *notification.Feed,
	db *gorm.DB,
	tokenVerifier shared.TokenVerifier,
	userService shared.Service,
) (*Server, error) {
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(tokenVerifier, userService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Company OS notification API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	authRouterGroup := v1.Group("/auth", authMW)
	authHandler.RegisterRoutes(authRouterGroup)

	userHandler.RegisterRoutes(v1, authMW)

	notificationGroup := v1.Group("", authMW)
	notificationHandler.RegisterRoutes(notificationGroup, adminRoleMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// Long-lived SSE connections; the write deadline would cut streams off.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:          httpServer,
		router:              router,
		cfg:                 cfg,
		logger:              logger,
		userHandler:         userHandler,
		authHandler:         authHandler,
		notificationHandler: notificationHandler,
		retentionJob:        retentionJob,
		feed:                feed,
		authMW:              authMW,
		adminRoleMW:         adminRoleMW,
	}, nil
}

func (s *Server) Start() error {
	if s.retentionJob != nil {
		if err := s.retentionJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start notification retention job", zap.Error(err))
		}
	} else {
		s.logger.Info("Notification retention job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.retentionJob != nil {
		s.retentionJob.Stop()
	}
	if s.feed != nil {
		s.feed.Close()
	}
	return s.httpServer.Shutdown(ctx)
}
