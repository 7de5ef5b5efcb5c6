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
// Package bridge connects an out-of-process transport to the engine.
//
// The peer process owns the sockets and speaks its own framing. Whatever
// decodes those frames produces a [Request] and a [Sink], and
// [Adapter.Serve] runs them through the same http.Handler the native
// listeners use. Routing, middleware, lifecycle tracking and the error
// pipeline therefore behave identically for bridged traffic.
//
//	a := bridge.NewAdapter(engine)
//	err := a.Serve(ctx, &bridge.Request{
//	    Method:    "GET",
//	    Scheme:    "https",
//	    Authority: "api.example.com",
//	    Path:      "/users/42",
//	    Protocol:  "2",
//	    Header:    hdr,
//	}, sink)
//
// WebSocket upgrades work by detaching the socket: http.Hijacker on the
// response writer calls [Sink.DetachSocket] and the handler takes over
// the raw connection.
package bridge
