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
// Package ratelimit provides token bucket rate limiting middleware.
//
// Each request takes a token from the bucket of its key, the client IP by
// default. Requests over the limit are answered with 429 through the
// engine error pipeline, carrying Retry-After and the RateLimit-Limit,
// RateLimit-Remaining and RateLimit-Reset headers.
//
//	limiter := ratelimit.NewLimiter(
//	    ratelimit.WithRate(50),
//	    ratelimit.WithBurst(100),
//	)
//	defer limiter.Close()
//	api.Use(limiter.Handler())
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kingwill101/routed-sub001/router"
)

// ErrLimited is recorded for rejected requests.
var ErrLimited = router.NewHTTPError(http.StatusTooManyRequests, "too many requests")

// KeyFunc derives the bucket key of a request.
type KeyFunc func(*router.Context) string

// Meta describes a rejected request.
type Meta struct {
	Key      string
	Route    string
	Method   string
	ClientIP string
	Decision Decision
}

// ClientIPKey keys buckets by client address.
func ClientIPKey(c *router.Context) string {
	return "ip:" + c.ClientIP()
}

// Limiter owns a store and, for the built-in MemoryStore, the goroutine
// that evicts idle keys.
type Limiter struct {
	cfg  *config
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewLimiter returns a limiter. Call Close to stop its sweeper.
func NewLimiter(opts ...Option) *Limiter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	l := &Limiter{cfg: cfg, now: time.Now, stop: make(chan struct{})}
	if cfg.store == nil {
		mem := NewMemoryStore(cfg.rate, cfg.burst)
		cfg.store = mem
		go l.sweep(mem)
	}
	return l
}

// New returns the handler of a limiter that lives as long as the process.
func New(opts ...Option) router.HandlerFunc {
	return NewLimiter(opts...).Handler()
}

// Close stops the sweeper. It is safe to call more than once.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep(mem *MemoryStore) {
	t := time.NewTicker(l.cfg.idleTTL)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-t.C:
			mem.Sweep(now, l.cfg.idleTTL)
		}
	}
}

// Handler returns the middleware.
func (l *Limiter) Handler() router.HandlerFunc {
	cfg := l.cfg
	return func(c *router.Context) {
		if cfg.filter.Excluded(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := cfg.key(c)
		d := cfg.store.Allow(key, l.now())
		if cfg.headers {
			resetSecs := strconv.Itoa(seconds(d.Reset))
			c.Header("RateLimit-Limit", strconv.Itoa(d.Limit))
			c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			c.Header("RateLimit-Reset", resetSecs)
		}
		if d.Allowed {
			c.Next()
			return
		}

		meta := Meta{
			Key:      key,
			Route:    c.RoutePattern(),
			Method:   c.Request.Method,
			ClientIP: c.ClientIP(),
			Decision: d,
		}
		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}
		logger.Debug("rate limit exceeded", "key", key, "route", meta.Route)

		if cfg.onExceeded != nil {
			cfg.onExceeded(c, meta)
		}
		if cfg.reportOnly {
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.Itoa(max(1, seconds(d.Reset))))
		c.AbortWithError(ErrLimited)
	}
}

// seconds rounds up so clients never retry early.
func seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
