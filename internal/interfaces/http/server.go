// Package http provides the HTTP adapter over the workflow engine. It is a
// thin layer: authentication gates, request decoding, and response shaping.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/application/service"
	"github.com/expensehub/expense-workflow/internal/auth"
	"github.com/expensehub/expense-workflow/internal/domain/entity"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	gate       *auth.Gate
	expenses   service.ExpenseService
	metrics    *Metrics
	registry   *prometheus.Registry
	logger     *zap.Logger
}

// NewServer creates a new HTTP server wired to the workflow engine
func NewServer(
	config ServerConfig,
	gate *auth.Gate,
	expenses service.ExpenseService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	registry := prometheus.NewRegistry()

	server := &Server{
		config:   config,
		router:   gin.New(),
		gate:     gate,
		expenses: expenses,
		metrics:  NewMetrics(registry),
		registry: registry,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.metrics.middleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.expenses, s.metrics, s.logger)

	s.router.GET("/health", handlers.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// Creation requires any valid token; the role gate applies to manager
	// views only.
	s.router.POST("/expenses", auth.Middleware(s.gate, "", s.logger), handlers.CreateExpense)

	manager := s.router.Group("/manager")
	manager.Use(auth.Middleware(s.gate, entity.RoleManager, s.logger))
	{
		manager.GET("/", handlers.EmployeesWithExpenses)
		manager.GET("/requests/users", handlers.ListPendingIndividual)
		manager.GET("/requests/group", handlers.ListPendingGroup)
		manager.GET("/requests/recent", handlers.ListDecided)
		manager.PUT("/requests/:id/status", handlers.UpdateStatus)
	}

	// Export link carries the credential as a path segment because download
	// consumers cannot set headers. Same verification, same role gate.
	s.router.GET("/manager/requests/recentCsv/:token",
		auth.TokenParamMiddleware(s.gate, entity.RoleManager, s.logger),
		handlers.ExportDecidedCSV)
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
