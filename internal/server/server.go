package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(port string, events EventProcessor, queries *parking.QueryService, serviceName string) *Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(events, queries, serviceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: httpServer}
}

// NewRouter assembles the HTTP routes and middleware chain.
func NewRouter(events EventProcessor, queries *parking.QueryService, serviceName string) http.Handler {
	handler := NewHandler(events, queries, serviceName)

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Post("/webhook", handler.Webhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plate-status", handler.PlateStatus)
		r.Post("/spot-status", handler.SpotStatus)
		r.Get("/revenue", handler.Revenue)
	})

	return r
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
