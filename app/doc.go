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
// Package app assembles a runnable service from a config.Config.
//
// New builds the logger, the lifecycle manager, the metrics and tracing
// recorders when enabled, the engine with requestid, accesslog and
// recovery middleware, the liveness and readiness probes, the metrics
// endpoint and the server. Routes are then added to [App.Engine] and
// [App.Run] serves until the context ends or a signal arrives.
//
//	cfg := config.MustLoad(ctx, config.WithOptionalFile("routed.yaml"))
//	a := app.MustNew(cfg,
//	    app.WithReadinessCheck("db", db.PingContext),
//	)
//	a.Engine().GET("/users/{id:int}", getUser)
//	os.Exit(a.ExitCode(a.Run(ctx)))
//
// The readiness probe answers 503 as soon as draining starts, while the
// liveness probe keeps answering 200 until the process exits.
package app
