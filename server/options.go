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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"
)

const (
	DefaultAddr              = ":8080"
	DefaultReadTimeout       = 15 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownGrace     = 30 * time.Second
)

// Option configures a Server.
type Option func(*config)

type config struct {
	addr              string
	certFile          string
	keyFile           string
	h2c               bool
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	maxHeaderBytes    int
	shutdownGrace     time.Duration
	closeTimeout      time.Duration

	handleSignals bool
	signals       []os.Signal
	sigCh         <-chan os.Signal
	exitCode      int

	logger         *slog.Logger
	banner         bool
	bannerOut      io.Writer
	serviceName    string
	serviceVersion string
}

func defaultConfig() *config {
	return &config{
		addr:              DefaultAddr,
		readTimeout:       DefaultReadTimeout,
		readHeaderTimeout: DefaultReadHeaderTimeout,
		writeTimeout:      DefaultWriteTimeout,
		idleTimeout:       DefaultIdleTimeout,
		maxHeaderBytes:    1 << 20,
		shutdownGrace:     DefaultShutdownGrace,
		closeTimeout:      5 * time.Second,
		handleSignals:     true,
		signals:           []os.Signal{os.Interrupt, syscall.SIGTERM},
		logger:            slog.New(slog.DiscardHandler),
		bannerOut:         os.Stdout,
		serviceName:       "routed",
	}
}

func (c *config) validate() error {
	var errs []error
	if c.addr == "" {
		errs = append(errs, errors.New("server: address is required"))
	}
	if (c.certFile == "") != (c.keyFile == "") {
		errs = append(errs, errors.New("server: TLS needs both a certificate and a key file"))
	}
	if c.h2c && c.certFile != "" {
		errs = append(errs, errors.New("server: h2c and TLS are mutually exclusive"))
	}
	for name, d := range map[string]time.Duration{
		"read timeout":        c.readTimeout,
		"read header timeout": c.readHeaderTimeout,
		"write timeout":       c.writeTimeout,
		"idle timeout":        c.idleTimeout,
		"shutdown grace":      c.shutdownGrace,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("server: %s must not be negative, got %s", name, d))
		}
	}
	if c.maxHeaderBytes < 0 {
		errs = append(errs, fmt.Errorf("server: max header bytes must not be negative, got %d", c.maxHeaderBytes))
	}
	return errors.Join(errs...)
}

// WithAddr sets the listen address. Default: ":8080".
func WithAddr(addr string) Option {
	return func(c *config) { c.addr = addr }
}

// WithTLS serves HTTPS with HTTP/2 negotiated over ALPN.
func WithTLS(certFile, keyFile string) Option {
	return func(c *config) {
		c.certFile = certFile
		c.keyFile = keyFile
	}
}

// WithH2C accepts HTTP/2 over cleartext next to HTTP/1.1, both by prior
// knowledge and by the Upgrade: h2c handshake.
func WithH2C(enabled bool) Option {
	return func(c *config) { c.h2c = enabled }
}

// WithReadTimeout sets http.Server.ReadTimeout.
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) { c.readTimeout = d }
}

// WithReadHeaderTimeout sets http.Server.ReadHeaderTimeout.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(c *config) { c.readHeaderTimeout = d }
}

// WithWriteTimeout sets http.Server.WriteTimeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}

// WithIdleTimeout sets the keep-alive idle timeout for HTTP/1.1 and HTTP/2.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.idleTimeout = d }
}

// WithMaxHeaderBytes sets http.Server.MaxHeaderBytes.
func WithMaxHeaderBytes(n int) Option {
	return func(c *config) { c.maxHeaderBytes = n }
}

// WithShutdownGrace bounds how long in-flight requests may run once
// shutdown starts. Zero waits for them indefinitely. Default: 30s.
func WithShutdownGrace(d time.Duration) Option {
	return func(c *config) { c.shutdownGrace = d }
}

// WithSignalHandling turns signal-driven shutdown on or off. When off,
// only the Run context triggers shutdown. Default: on.
func WithSignalHandling(enabled bool) Option {
	return func(c *config) { c.handleSignals = enabled }
}

// WithSignals replaces the shutdown signals. Default: SIGINT, SIGTERM.
func WithSignals(sigs ...os.Signal) Option {
	return func(c *config) { c.signals = sigs }
}

// WithExitCode sets the code [Server.ExitCode] reports after a shutdown,
// forced or not. Default: 0.
func WithExitCode(code int) Option {
	return func(c *config) { c.exitCode = code }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBanner prints a startup banner with the route table.
func WithBanner(enabled bool) Option {
	return func(c *config) { c.banner = enabled }
}

// WithBannerOutput redirects the banner. Default: os.Stdout.
func WithBannerOutput(w io.Writer) Option {
	return func(c *config) { c.bannerOut = w }
}

// WithServiceInfo names the service in the banner and the startup log.
func WithServiceInfo(name, version string) Option {
	return func(c *config) {
		c.serviceName = name
		c.serviceVersion = version
	}
}
