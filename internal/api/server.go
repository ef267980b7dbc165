// Package api serves recommendations over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recsys/internal/domain"
	"recsys/internal/logging"
	"recsys/internal/recommender"
)

// Recommender is the subset of the pipeline the API needs.
type Recommender interface {
	RecommendScored(title string, k int) ([]domain.Recommendation, error)
	State() recommender.State
	Len() int
	Catalog() domain.Catalog
	DefaultK() int
}

// Server exposes the recommender on a chi router.
type Server struct {
	rec    Recommender
	router chi.Router
}

// NewServer builds the route table.
func NewServer(rec Recommender) *Server {
	s := &Server{rec: rec}
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommendations", s.recommendations)
		r.Get("/titles/random", s.randomTitle)
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
