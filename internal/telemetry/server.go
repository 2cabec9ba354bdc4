package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/grifflux/pennywatch/internal/rank"
)

// Server serves /metrics, /health and the latest leaderboard as JSON.
type Server struct {
	registry *Registry
	srv      *http.Server

	mu     sync.RWMutex
	latest *rank.Leaderboard
}

// NewServer builds the HTTP surface on addr.
func NewServer(addr string, registry *Registry) *Server {
	s := &Server{registry: registry}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry.Prometheus(), promhttp.HandlerOpts{}))
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// SetLeaderboard publishes the latest run result to /leaderboard.
func (s *Server) SetLeaderboard(lb rank.Leaderboard) {
	s.mu.Lock()
	s.latest = &lb
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	lb := s.latest
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	if lb == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_ = json.NewEncoder(w).Encode(lb)
}

// Start serves until the listener fails; call from a goroutine.
func (s *Server) Start() {
	log.Info().Str("addr", s.srv.Addr).Msg("Telemetry server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Telemetry server failed")
	}
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
