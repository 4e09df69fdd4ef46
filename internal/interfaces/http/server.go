// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gooddrive/autoparts-backend/internal/config"
	"github.com/gooddrive/autoparts-backend/internal/domain/catalog"
	"github.com/gooddrive/autoparts-backend/internal/domain/crm"
	"github.com/gooddrive/autoparts-backend/internal/domain/finance"
	"github.com/gooddrive/autoparts-backend/internal/domain/notification"
	"github.com/gooddrive/autoparts-backend/internal/domain/order"
	"github.com/gooddrive/autoparts-backend/internal/domain/seo"
	"github.com/gooddrive/autoparts-backend/internal/domain/user"
	redisdb "github.com/gooddrive/autoparts-backend/internal/infrastructure/database/redis"
	"github.com/gooddrive/autoparts-backend/internal/interfaces/http/handlers"
	"github.com/gooddrive/autoparts-backend/internal/interfaces/http/middleware"
	"github.com/gooddrive/autoparts-backend/internal/interfaces/http/routes"
	"github.com/gooddrive/autoparts-backend/internal/pkg/email"
)

// Server wraps the HTTP server with its dependencies
type Server struct {
	config     *config.Config
	log        *logrus.Logger
	db         *gorm.DB
	cache      *redisdb.Client
	httpServer *http.Server
}

// NewServer builds the gin engine, wires every domain service and handler,
// and returns a ready-to-start server
func NewServer(cfg *config.Config, db *gorm.DB, cache *redisdb.Client, log *logrus.Logger) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Domain services
	var mailer email.Sender
	if cfg.Notification.EmailEnabled {
		mailer = email.NewSMTPSender(cfg)
	}

	catalogService := catalog.NewService(db, cfg, log)
	orderService := order.NewService(db, cfg, log)
	crmService := crm.NewService(db, cfg, log)
	financeService := finance.NewService(db, cfg, log)
	notificationService := notification.NewService(db, cfg, log, mailer)
	userService := user.NewService(db, cfg, log)
	seoService := seo.NewService(db, cache, cfg, log)

	// Order side effects: CRM sync, new-order alerts, daily profit refresh
	orderService.AttachHooks(crmService, notificationService, financeService)

	if _, err := seoService.LoadSettings(); err != nil {
		return nil, fmt.Errorf("failed to load seo settings: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimit(cfg, cache))
	router.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	server := &Server{
		config: cfg,
		log:    log,
		db:     db,
		cache:  cache,
	}
	router.GET("/health", server.healthCheck)

	h := &routes.Handlers{
		Catalog:      handlers.NewCatalogHandler(catalogService, notificationService, log),
		Order:        handlers.NewOrderHandler(orderService, log),
		Customer:     handlers.NewCustomerHandler(crmService, log),
		Finance:      handlers.NewFinanceHandler(financeService, log),
		Notification: handlers.NewNotificationHandler(notificationService, log),
		Seo:          handlers.NewSeoHandler(seoService, log),
		Auth:         handlers.NewAuthHandler(userService, log),
	}
	routes.Setup(router, h, userService.JWTManager())

	server.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	s.log.WithFields(logrus.Fields{
		"port":        s.config.Server.Port,
		"environment": s.config.App.Environment,
	}).Info("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// healthCheck reports the service and its dependencies
func (s *Server) healthCheck(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{
		"database": "ok",
		"redis":    "ok",
	}

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		checks["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.cache.Health(ctx); err != nil {
		checks["redis"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":  http.StatusText(status),
		"version": s.config.App.Version,
		"checks":  checks,
	})
}
