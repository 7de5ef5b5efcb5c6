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
// Package server runs a router.Engine behind net/http.
//
// It speaks HTTP/1.1, HTTP/2 over cleartext (h2c) or HTTP/2 over TLS, and
// owns the process shutdown sequence: on the first SIGINT or SIGTERM (or
// when the Run context ends) it stops accepting connections, lets the
// engine's lifecycle manager drain in-flight requests for the grace period
// and force-closes whatever is left. A second signal force-closes at once.
//
//	e := router.MustNew()
//	e.GET("/healthz", func(c *router.Context) { c.NoContent() })
//
//	srv := server.MustNew(e,
//	    server.WithAddr(":8080"),
//	    server.WithShutdownGrace(20*time.Second),
//	)
//	err := srv.Run(context.Background())
//	os.Exit(srv.ExitCode(err))
package server
