package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/multiplica-sam/sam/internal/logger"
	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/config"
	"github.com/multiplica-sam/sam/internal/ui/handlers"
	"github.com/multiplica-sam/sam/internal/ui/middleware"
	"github.com/multiplica-sam/sam/internal/ui/report"
	"github.com/multiplica-sam/sam/internal/ui/store"
	"github.com/multiplica-sam/sam/internal/ui/templates"
)

// janitorInterval is how often the in-memory store drops expired pages and reports
const janitorInterval = time.Minute

type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  store.Store
}

// NewServer builds the sam-ui router. The store is owned by the caller.
func NewServer(cfg *config.Config, logger *slog.Logger, st store.Store) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  st,
	}

	s.setupMiddleware()
	if err := s.RegisterRoutes(s.router); err != nil {
		return nil, err
	}
	return s, nil
}

// Router returns the http handler serving the ui
func (s *Server) Router() http.Handler {
	return s.router
}

// NewStore returns the redis store when SAM_REDIS_ADDR is set, the memory store otherwise
func NewStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.RedisAddr == "" {
		return store.NewMemory(cfg.SessionTTL, cfg.ReportTTL), nil
	}
	return store.NewRedis(ctx, cfg.SessionTTL, cfg.ReportTTL,
		store.WithAddress(cfg.RedisAddr),
		store.WithPassword(cfg.RedisPassword),
		store.WithDB(cfg.RedisDB),
	)
}

func (s *Server) RegisterRoutes(router *chi.Mux) error {
	handlerService := &handlers.HandlerService{
		ApiClient:   client.NewClient(s.config.APIBaseURL, client.WithTimeout(s.config.APITimeout)),
		Pages:       s.store,
		Reports:     s.store,
		Buttons:     report.NewButtons(s.config.ButtonReset),
		Environment: s.config.Environment,
		ButtonReset: s.config.ButtonReset,
		SessionTTL:  s.config.SessionTTL,
	}

	corsMiddleware, err := middleware.NewCORS(s.config.AllowedOrigins)
	if err != nil {
		return fmt.Errorf("invalid cors configuration: %w", err)
	}

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(templates.Static())))
	router.Get("/health/live", handlerService.HandleLive)

	// public json state, usable from other origins. Requests without a
	// session load the dashboard from the SAM api, so the route is limited.
	router.Group(func(r chi.Router) {
		r.Use(middleware.CORS(corsMiddleware))
		r.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))

		r.Get("/ui-api/state", handlerService.HandleState)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders(s.config.Environment))

		r.Get("/", handlerService.HandleDashboard)
		r.Get("/localities/{index}/students", handlerService.HandleStudents)
		r.Get("/students/{id}", handlerService.HandleStudent)
		r.Get("/logs", handlerService.HandleLogs)

		// UI API endpoints (htmx fragments)
		r.Post("/ui-api/localities/{index}/select", handlerService.HandleSelectLocality)
		r.Get("/ui-api/modal", handlerService.HandleModal)
		r.Get("/ui-api/report-button/{id}", handlerService.HandleReportButton)

		// every report run makes the SAM api render a PDF
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))

			r.Post("/ui-api/localities/{id}/report", handlerService.HandleGenerateReport)
			r.Get("/reports/{token}", handlerService.HandleDownloadReport)
		})
	})
	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
}

// Start runs the http server, and the store janitor when the store needs one, until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("UI server listening", slog.String("address", addr), slog.String("api_base_url", s.config.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down UI server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
		return nil
	})

	if mem, ok := s.store.(*store.Memory); ok {
		g.Go(func() error {
			return mem.Janitor(gctx, janitorInterval)
		})
	}

	return g.Wait()
}
