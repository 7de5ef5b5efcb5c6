// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kingwill101/routed-sub001/lifecycle"
	"github.com/kingwill101/routed-sub001/router"
)

// ErrForcedClose is returned by Run when a second signal cut the drain
// short.
var ErrForcedClose = errors.New("server: forced close")

// Server serves one engine until shutdown.
type Server struct {
	engine *router.Engine
	lm     *lifecycle.Manager
	cfg    *config
	logger *slog.Logger

	once  sync.Once
	ready chan struct{}
	addr  net.Addr
}

// New validates the options and binds the server to the engine's
// lifecycle manager.
func New(engine *router.Engine, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, errors.New("server: engine is nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Server{
		engine: engine,
		lm:     engine.Lifecycle(),
		cfg:    cfg,
		logger: cfg.logger,
		ready:  make(chan struct{}),
	}, nil
}

// MustNew is New that panics on error.
func MustNew(engine *router.Engine, opts ...Option) *Server {
	s, err := New(engine, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Ready is closed once the server accepts connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. It is nil before Ready.
func (s *Server) Addr() net.Addr {
	select {
	case <-s.ready:
		return s.addr
	default:
		return nil
	}
}

// Protocol names what the server speaks.
func (s *Server) Protocol() string {
	switch {
	case s.cfg.certFile != "":
		return "HTTPS"
	case s.cfg.h2c:
		return "h2c"
	default:
		return "HTTP"
	}
}

// ExitCode maps the result of Run to a process exit code. A completed
// shutdown, forced or not, reports the WithExitCode value. Anything else
// reports 1.
func (s *Server) ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrForcedClose), errors.Is(err, lifecycle.ErrGraceExpired):
		return s.cfg.exitCode
	default:
		return 1
	}
}

// Run listens on the configured address and serves until ctx ends or a
// shutdown signal arrives.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener, which it takes ownership of. The
// route table is built first; any build error stops the server before it
// accepts a connection.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	handler, err := s.engine.Handler()
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("server: refusing to start: %w", err)
	}

	srv, err := s.httpServer(handler)
	if err != nil {
		_ = ln.Close()
		return err
	}
	s.lm.OnForceClose(func() { _ = srv.Close() })

	sigCh := s.cfg.sigCh
	if s.cfg.handleSignals && sigCh == nil {
		ch := make(chan os.Signal, 2)
		signal.Notify(ch, s.cfg.signals...)
		defer signal.Stop(ch)
		sigCh = ch
	}
	if !s.cfg.handleSignals {
		sigCh = nil
	}

	serveErr := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.certFile != "" {
			err = srv.ServeTLS(ln, s.cfg.certFile, s.cfg.keyFile)
		} else {
			err = srv.Serve(ln)
		}
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	s.addr = ln.Addr()
	if s.cfg.banner {
		s.printBanner()
	}
	s.logger.Info("server starting",
		"address", s.addr.String(),
		"protocol", s.Protocol(),
		"service", s.cfg.serviceName,
		"version", s.cfg.serviceVersion,
	)
	s.once.Do(func() { close(s.ready) })

	select {
	case err, ok := <-serveErr:
		if ok && err != nil {
			return fmt.Errorf("server: %s serve failed: %w", s.Protocol(), err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("server shutting down", "reason", context.Cause(ctx))
	case sig := <-sigCh:
		s.logger.Info("server shutting down", "signal", sig.String())
	}
	return s.shutdown(srv, sigCh)
}

func (s *Server) httpServer(handler http.Handler) (*http.Server, error) {
	h2s := &http2.Server{IdleTimeout: s.cfg.idleTimeout}
	if s.cfg.h2c {
		handler = h2c.NewHandler(handler, h2s)
	}

	srv := &http.Server{
		Addr:              s.cfg.addr,
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		MaxHeaderBytes:    s.cfg.maxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	if s.cfg.certFile != "" {
		if err := http2.ConfigureServer(srv, h2s); err != nil {
			return nil, fmt.Errorf("server: configure HTTP/2: %w", err)
		}
	}
	return srv, nil
}

// shutdown closes the listener, drains through the lifecycle manager and
// force-closes on grace expiry or a second signal.
func (s *Server) shutdown(srv *http.Server, sigCh <-chan os.Signal) error {
	start := time.Now()
	s.lm.StartDrain()
	srv.SetKeepAlivesEnabled(false)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Warn("second signal, forcing close", "signal", sig.String(), "active", s.lm.Active())
			s.lm.ForceClose()
		case <-done:
		}
	}()

	stopCtx, stop := context.WithCancel(context.Background())
	defer stop()
	closed := make(chan error, 1)
	go func() { closed <- srv.Shutdown(stopCtx) }()

	drainErr := s.lm.Drain(context.Background(), s.cfg.shutdownGrace)
	if drainErr == nil && s.lm.State() == lifecycle.StateClosed {
		drainErr = ErrForcedClose
	}

	// Connections left over after the drain are idle or hijacked.
	timer := time.NewTimer(s.cfg.closeTimeout)
	defer timer.Stop()
	select {
	case err := <-closed:
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("http shutdown failed", "error", err)
		}
	case <-timer.C:
		stop()
		_ = srv.Close()
		<-closed
	}

	s.logger.Info("server exited", "protocol", s.Protocol(), "elapsed", time.Since(start), "forced", drainErr != nil)
	return drainErr
}
