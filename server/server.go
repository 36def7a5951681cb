// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/mpvtex"
	"github.com/gogpu/mpvtex/config"
	"github.com/gogpu/mpvtex/dispatch"
)

const shutdownTimeout = 5 * time.Second

// Server serves the method channel, frame pulls and metrics.
type Server struct {
	cfg      config.ServerConfig
	host     *Host
	disp     *dispatch.Dispatcher
	log      *slog.Logger
	router   *chi.Mux
	upgrader websocket.Upgrader
	clients  atomic.Int64

	// baseCtx is cancelled on shutdown so open channels close.
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New returns a server for the sessions of disp, whose players register
// with host.
func New(cfg config.ServerConfig, host *Host, disp *dispatch.Dispatcher) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		host:    host,
		disp:    disp,
		log:     mpvtex.Logger(),
		baseCtx: ctx,
		cancel:  cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}))
	}

	metrics := newMetricsRegistry(newCollector(s.disp.Registry(), s.host, &s.clients))
	r.Get("/channel", s.handleChannel)
	r.Get("/textures/{id}/frame.png", s.handleFrame)
	r.Handle("/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// checkOrigin accepts same-origin requests, requests without an Origin
// header, and origins listed in the configuration. "*" accepts any origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	s.log.Warn("server: websocket origin rejected", "origin", origin)
	return false
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully. Open channels are closed; sessions are left to the caller.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(l) }()
	s.log.Info("server: listening", "addr", l.Addr().String())

	select {
	case err := <-errc:
		s.cancel()
		return err
	case <-ctx.Done():
	}
	s.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Close closes open channels without stopping a running Serve.
func (s *Server) Close() { s.cancel() }
