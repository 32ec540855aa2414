// Package server exposes the Prometheus metrics of a running computation
// over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/agbru/distcalc/internal/logging"
	"github.com/agbru/distcalc/internal/metrics"
)

// ShutdownTimeout bounds how long Shutdown waits for in-flight scrapes.
const ShutdownTimeout = 2 * time.Second

// Server serves /metrics for one collector.
type Server struct {
	addr      string
	collector *metrics.Collector
	logger    logging.Logger
	srv       *http.Server
	ln        net.Listener
	done      chan struct{}
}

// New creates a server for addr. Nothing is bound until Start.
func New(addr string, collector *metrics.Collector, logger logging.Logger) *Server {
	s := &Server{addr: addr, collector: collector, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", SecurityMiddleware(s.handleMetrics))
	s.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Start binds the address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", err)
		}
	}()
	s.logger.Info("serving metrics", logging.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Shutdown stops the server, waiting at most ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.done == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.logger.Debug("rejected metrics request", logging.String("method", r.Method))
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.collector.Handler().ServeHTTP(w, r)
}

// SecurityMiddleware sets defensive response headers before calling next.
func SecurityMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next(w, r)
	}
}
