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
// Package metrics records engine traffic in Prometheus.
//
// A [Recorder] implements router.ObservabilityRecorder and
// router.DiagnosticHandler. Requests are labelled by method, route
// template and status, never by raw path, so cardinality stays bounded by
// the route table. Unmatched requests use the router Pattern* sentinels.
//
//	rec := metrics.MustNew(metrics.WithNamespace("routed"))
//	e := router.MustNew(
//	    router.WithObservability(rec),
//	    router.WithDiagnostics(rec),
//	)
//	e.GET("/metrics", router.WrapHandler(rec.Handler()))
//
// # Custom Metrics
//
// Counters, gauges and histograms registered through the recorder share
// its registry. Names starting with http_ or router_ are reserved.
//
//	orders, err := rec.Counter("orders_created_total", "Orders created.", "channel")
//	orders.WithLabelValues("web").Inc()
package metrics
