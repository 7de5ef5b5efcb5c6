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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kingwill101/routed-sub001/internal/pathfilter"
)

// Option configures a Recorder.
type Option func(*config)

type config struct {
	namespace       string
	serviceName     string
	serviceVersion  string
	durationBuckets []float64
	sizeBuckets     []float64
	runtime         bool
	filter          *pathfilter.Filter
	errs            []error
}

func defaultConfig() *config {
	return &config{
		durationBuckets: prometheus.DefBuckets,
		sizeBuckets:     prometheus.ExponentialBuckets(100, 10, 6),
		filter:          pathfilter.New(),
	}
}

func (c *config) validate() error {
	if c.namespace != "" && !metricNameRegex.MatchString(c.namespace) {
		c.errs = append(c.errs, fmt.Errorf("%w: namespace %q", ErrInvalidMetricName, c.namespace))
	}
	if len(c.errs) > 0 {
		return c.errs[0]
	}
	return nil
}

// WithNamespace prefixes every metric name.
func WithNamespace(ns string) Option {
	return func(c *config) { c.namespace = ns }
}

// WithServiceInfo adds constant service and version labels.
func WithServiceInfo(name, version string) Option {
	return func(c *config) {
		c.serviceName = name
		c.serviceVersion = version
	}
}

// WithDurationBuckets replaces the request duration buckets (seconds).
func WithDurationBuckets(buckets ...float64) Option {
	return func(c *config) { c.durationBuckets = buckets }
}

// WithSizeBuckets replaces the response size buckets (bytes).
func WithSizeBuckets(buckets ...float64) Option {
	return func(c *config) { c.sizeBuckets = buckets }
}

// WithRuntimeMetrics also registers the Go runtime and process collectors.
func WithRuntimeMetrics(enabled bool) Option {
	return func(c *config) { c.runtime = enabled }
}

// WithExcludePaths skips exact request paths, such as the metrics
// endpoint itself.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) { c.filter.AddPaths(paths...) }
}

// WithExcludePrefixes skips whole path hierarchies like /debug/.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) { c.filter.AddPrefixes(prefixes...) }
}

// WithExcludePatterns skips paths matching any regular expression.
// An invalid pattern makes New fail.
func WithExcludePatterns(patterns ...string) Option {
	return func(c *config) {
		if err := c.filter.AddPatterns(patterns...); err != nil {
			c.errs = append(c.errs, fmt.Errorf("metrics: %w", err))
		}
	}
}
