// Package app wires the cache engine behind a small operational HTTP surface.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"readcache/internal/cache"
)

// Server exposes health and cache statistics over HTTP.
type Server struct {
	engine  *cache.Engine
	log     *zap.Logger
	mux     *http.ServeMux
	httpSrv *http.Server
}

func NewServer(engine *cache.Engine, log *zap.Logger) *Server {
	s := &Server{
		engine: engine,
		log:    log,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/stats", s.handleStats)
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.withCommonHeaders(s.mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("http server starting", zap.String("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) withCommonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "readcache")
		h.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	meta := s.engine.Stats(r.Context())
	health := map[string]interface{}{
		"status":        "ok",
		"service":       "readcache",
		"article_count": meta.ArticleCount,
		"total_size":    meta.TotalSize,
		"timestamp":     time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.engine.Stats(r.Context()))
}
