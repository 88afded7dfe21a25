package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"superPayroll/internal/storage"
)

// Config holds the HTTP server settings.
type Config struct {
	Debug        bool
	Listen       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server serves the read-only payroll query API.
type Server struct {
	config     Config
	reader     storage.Reader
	logger     *zap.Logger
	httpServer *http.Server
}

func New(cfg Config, reader storage.Reader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	s := &Server{config: cfg, reader: reader, logger: logger}
	s.httpServer = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(recovery(s.logger))
	router.Use(requestLogger(s.logger))

	SetupRoutes(router, NewHandler(s.reader, s.logger))
	return router
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("api server start", zap.String("listen", s.config.Listen))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("api server shutdown")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// SetupRoutes registers the API routes on router.
func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/healthz", h.Health)

	router.GET("/employees", h.ListEmployees)
	router.GET("/employees/:id", h.GetEmployee)

	router.GET("/streams", h.ListStreams)
	router.GET("/streams/:id", h.GetStream)
}
