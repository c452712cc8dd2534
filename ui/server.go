package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"gopulse/app"
	"gopulse/internal"
	"gopulse/ports"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static/css/*.css
var embeddedFiles embed.FS

// Server represents the web server for the lesson dashboards
type Server struct {
	router    *gin.Engine
	service   *app.AnalysisService
	templates *template.Template
	logger    *internal.Logger
	config    Config
}

// Config holds dashboard settings
type Config struct {
	Port           string
	GinMode        string
	ReadTimeout    time.Duration
	MaxUploadBytes int64

	// ExampleTable, when set, is what the playground shows before any upload
	ExampleTable ports.TableSource
	ExampleName  string
}

// NewServer creates a new web server instance
func NewServer(service *app.AnalysisService, logger *internal.Logger, config Config) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 5 << 20
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		templates: templates,
		logger:    logger,
		config:    config,
	}
	s.router.MaxMultipartMemory = config.MaxUploadBytes

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	lessons := s.router.Group("/lessons")
	lessons.GET("/distortion", s.handleDistortion)
	lessons.GET("/torque", s.handleTorque)
	lessons.GET("/sensor", s.handleSensor)

	s.router.GET("/playground", s.handlePlayground)
	s.router.POST("/playground/upload", s.handlePlaygroundUpload)

	charts := s.router.Group("/charts")
	charts.GET("/distortion.png", s.handleDistortionChart)
	charts.GET("/torque.png", s.handleTorqueChart)

	s.router.NoRoute(s.handleNotFound)
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
		s.logger.Info("Starting gopulse dashboard on http://localhost:%s", s.config.Port)
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

func parseTemplates() (*template.Template, error) {
	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	t, err := template.New("").Funcs(funcMap()).ParseFS(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}
