package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"iris-api/internal/config"
	"iris-api/internal/infrastructure/http/handlers"
	"iris-api/internal/infrastructure/logger"
	"iris-api/internal/infrastructure/metrics"
)

type Server struct {
	cfg            *config.Config
	router         *chi.Mux
	server         *http.Server
	predictHandler *handlers.PredictHandler
	systemHandler  *handlers.SystemHandler
	metricsHandler http.Handler
	metrics        metrics.Metrics
	logger         logger.Logger
}

func NewServer(
	cfg *config.Config,
	predictHandler *handlers.PredictHandler,
	systemHandler *handlers.SystemHandler,
	metricsHandler http.Handler,
	metrics metrics.Metrics,
	logger logger.Logger,
) *Server {
	s := &Server{
		cfg:            cfg,
		predictHandler: predictHandler,
		systemHandler:  systemHandler,
		metricsHandler: metricsHandler,
		metrics:        metrics,
		logger:         logger,
	}

	s.setupRouter()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(MetricsMiddleware(s.metrics))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", s.systemHandler.Info)
	r.Get("/health", s.systemHandler.Health)
	r.Get("/metrics", s.metricsHandler.ServeHTTP)

	r.Post("/predict", s.predictHandler.Predict)

	s.router = r
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "port", s.cfg.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
