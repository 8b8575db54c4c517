package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fieldcheck/internal/api/handlers/http/attendance"
	"fieldcheck/internal/api/handlers/http/system"
	"fieldcheck/internal/config"
	"fieldcheck/internal/middleware"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

// NewServer builds the HTTP surface. metricsHandler may be nil, in which
// case /metrics is not mounted.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, svc attendance.AttendanceService, checks map[string]system.Check, metricsHandler http.Handler) *Server {
	attendanceHandler := attendance.NewHandler(logger, svc)
	systemHandler := system.NewHandler(logger, checks)

	r := InitRouter(ctx, cfg, attendanceHandler, systemHandler, metricsHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(ctx context.Context, cfg *config.Config, attendanceHandler *attendance.Handler, systemHandler *system.Handler, metricsHandler http.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/actors/{actorID}", func(ar chi.Router) {
			ar.Use(middleware.Limit(ctx, cfg.Http.RateLimitRPS, cfg.Http.RateLimitBurst, 5*time.Minute, logger))

			ar.Post("/position", attendanceHandler.PostPosition)
			ar.Put("/permission", attendanceHandler.PutPermission)
			ar.Post("/scan", attendanceHandler.PostScan)
			ar.Post("/refresh", attendanceHandler.PostRefresh)
			ar.Post("/register", attendanceHandler.PostRegister)
			ar.Get("/session", attendanceHandler.GetSession)
			ar.Delete("/session", attendanceHandler.DeleteSession)
			ar.Get("/hint", attendanceHandler.GetHint)
		})

		api.Get("/health", systemHandler.SystemHealth)
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	return r
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
