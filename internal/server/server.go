// Package server provides the HTTP server and routing of the decision engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/config"
	"github.com/avelin/comite/internal/database"
	"github.com/avelin/comite/internal/events"
	"github.com/avelin/comite/internal/modules/report"
	reporthandlers "github.com/avelin/comite/internal/modules/report/handlers"
	"github.com/avelin/comite/internal/scheduler"
	"github.com/avelin/comite/pkg/logger"
)

// Config holds server configuration.
type Config struct {
	Log           zerolog.Logger
	Config        *config.Config
	DossierDB     *database.DB
	CacheDB       *database.DB
	ReportService *report.Service
	Bus           *events.Bus
	Port          int
	DevMode       bool
}

// Server is the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	dossierDB      *database.DB
	cacheDB        *database.DB
	reportService  *report.Service
	bus            *events.Bus
	systemHandlers *SystemHandlers
}

// New creates the HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		log:           logger.ForComponent(cfg.Log, "server"),
		cfg:           cfg.Config,
		dossierDB:     cfg.DossierDB,
		cacheDB:       cfg.CacheDB,
		reportService: cfg.ReportService,
		bus:           cfg.Bus,
	}

	s.systemHandlers = NewSystemHandlers(
		cfg.Log,
		cfg.Config.DataDir,
		[]*database.DB{cfg.DossierDB, cfg.CacheDB},
	)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// SetJobs registers job instances for manual triggering via the API.
func (s *Server) SetJobs(reevaluation, backup, maintenance scheduler.Job) {
	s.systemHandlers.SetJobs(reevaluation, backup, maintenance)
}

// setupMiddleware configures middleware.
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Evaluation and dossier API.
	reportHandler := reporthandlers.NewHandler(s.reportService, s.log)
	reportHandler.RegisterRoutes(s.router)

	s.router.Route("/api/events", func(r chi.Router) {
		// Streaming endpoints bypass the global timeout.
		streamHandler := NewEventsStreamHandler(s.bus, s.log)
		r.Get("/stream", streamHandler.ServeHTTP)

		wsHandler := NewEventsWebsocketHandler(s.bus, s.log)
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	s.router.Route("/api/system", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/status", s.systemHandlers.HandleSystemStatus)
		r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		r.Get("/disk", s.systemHandlers.HandleDiskUsage)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/reevaluation", s.systemHandlers.HandleTriggerReevaluation)
			r.Post("/backup", s.systemHandlers.HandleTriggerBackup)
			r.Post("/maintenance", s.systemHandlers.HandleTriggerMaintenance)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
