package api

import (
	"context"
	"net/http"
	"time"

	"gopulse/app"
	"gopulse/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// Server is the JSON API over the analysis service
type Server struct {
	router  *chi.Mux
	service *app.AnalysisService
	logger  *internal.Logger
	config  Config
}

// Config holds API server configuration
type Config struct {
	Port        string
	ReadTimeout time.Duration
}

// NewServer creates the API router and registers every route
func NewServer(service *app.AnalysisService, logger *internal.Logger, config Config) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  logger,
		config:  config,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/stats", s.handleStats)
		r.Post("/fit", s.handleFit)
		r.Post("/predict", s.handlePredict)
		r.Post("/compare", s.handleCompare)

		r.Get("/examples", s.handleListExamples)
		r.Get("/examples/{name}", s.handleExample)

		r.Get("/lessons", s.handleListLessons)
		r.Get("/lessons/{slug}", s.handleLesson)
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:        ":" + s.config.Port,
		Handler:     s.router,
		ReadTimeout: s.config.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting gopulse API server on :%s", s.config.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
