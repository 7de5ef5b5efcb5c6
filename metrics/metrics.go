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
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kingwill101/routed-sub001/router"
)

var (
	_ router.ObservabilityRecorder = (*Recorder)(nil)
	_ router.DiagnosticHandler     = (*Recorder)(nil)
)

var metricNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Names under these prefixes belong to the recorder.
var reservedPrefixes = []string{"__", "http_", "router_"}

// ErrInvalidMetricName is returned for custom metric names Prometheus
// would reject or that use a reserved prefix.
var ErrInvalidMetricName = errors.New("metrics: invalid metric name")

// Recorder collects request and routing metrics.
type Recorder struct {
	cfg      *config
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	size        *prometheus.HistogramVec
	inFlight    prometheus.Gauge
	diagnostics *prometheus.CounterVec
}

type requestState struct {
	start  time.Time
	method string
}

// New registers the request collectors in a fresh registry.
func New(opts ...Option) (*Recorder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	constLabels := prometheus.Labels{}
	if cfg.serviceName != "" {
		constLabels["service"] = cfg.serviceName
	}
	if cfg.serviceVersion != "" {
		constLabels["version"] = cfg.serviceVersion
	}

	r := &Recorder{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "http_requests_total",
			Help:        "Requests served, by method, route template and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Name:        "http_request_duration_seconds",
			Help:        "Time from routing to the end of the error pipeline.",
			Buckets:     cfg.durationBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route", "code"}),
		size: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Name:        "http_response_size_bytes",
			Help:        "Response body size.",
			Buckets:     cfg.sizeBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.namespace,
			Name:        "http_requests_in_flight",
			Help:        "Requests currently being served.",
			ConstLabels: constLabels,
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "router_diagnostics_total",
			Help:        "Routing diagnostic events, by kind.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
	}

	cs := []prometheus.Collector{r.requests, r.duration, r.size, r.inFlight, r.diagnostics}
	if cfg.runtime {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range cs {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return r, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Registry exposes the underlying registry, for example to gather in tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry:          r.registry,
		EnableOpenMetrics: true,
	})
}

// OnRequestStart starts timing unless the path is excluded.
func (r *Recorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if r.cfg.filter.Excluded(req.URL.Path) {
		return ctx, nil
	}
	r.inFlight.Inc()
	return ctx, &requestState{start: time.Now(), method: req.Method}
}

// OnRequestEnd records the finished request under its route template.
func (r *Recorder) OnRequestEnd(_ context.Context, state any, info router.ResponseInfo, routePattern string) {
	st, ok := state.(*requestState)
	if !ok {
		return
	}
	r.inFlight.Dec()

	status := info.StatusCode()
	if status == 0 {
		status = http.StatusOK
	}
	method := normalizeMethod(st.method)
	code := strconv.Itoa(status)

	r.requests.WithLabelValues(method, routePattern, code).Inc()
	r.duration.WithLabelValues(method, routePattern, code).Observe(time.Since(st.start).Seconds())
	if n := info.Size(); n > 0 {
		r.size.WithLabelValues(method, routePattern).Observe(float64(n))
	}
}

// OnDiagnostic counts routing diagnostics by kind.
func (r *Recorder) OnDiagnostic(ev router.DiagnosticEvent) {
	r.diagnostics.WithLabelValues(string(ev.Kind)).Inc()
}

// Counter registers a custom counter vector.
func (r *Recorder) Counter(name, help string, labels ...string) (*prometheus.CounterVec, error) {
	if err := validateMetricName(name); err != nil {
		return nil, err
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: r.cfg.namespace, Name: name, Help: help}, labels)
	if err := r.registry.Register(c); err != nil {
		return nil, fmt.Errorf("metrics: register %s: %w", name, err)
	}
	return c, nil
}

// Gauge registers a custom gauge vector.
func (r *Recorder) Gauge(name, help string, labels ...string) (*prometheus.GaugeVec, error) {
	if err := validateMetricName(name); err != nil {
		return nil, err
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: r.cfg.namespace, Name: name, Help: help}, labels)
	if err := r.registry.Register(g); err != nil {
		return nil, fmt.Errorf("metrics: register %s: %w", name, err)
	}
	return g, nil
}

// Histogram registers a custom histogram vector. Nil buckets use the
// Prometheus defaults.
func (r *Recorder) Histogram(name, help string, buckets []float64, labels ...string) (*prometheus.HistogramVec, error) {
	if err := validateMetricName(name); err != nil {
		return nil, err
	}
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: r.cfg.namespace, Name: name, Help: help, Buckets: buckets}, labels)
	if err := r.registry.Register(h); err != nil {
		return nil, fmt.Errorf("metrics: register %s: %w", name, err)
	}
	return h, nil
}

func validateMetricName(name string) error {
	if !metricNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricName, name)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return fmt.Errorf("%w: %q uses reserved prefix %q", ErrInvalidMetricName, name, prefix)
		}
	}
	return nil
}

// normalizeMethod folds custom methods into one label value.
func normalizeMethod(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodConnect, http.MethodTrace:
		return m
	default:
		return "OTHER"
	}
}
