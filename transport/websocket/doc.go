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
// Package websocket upgrades routed requests to WebSocket connections.
//
// The handler returned by [New] performs the handshake with
// gorilla/websocket and then detaches the request, so the engine writes
// no response of its own. The request stays in the lifecycle's active
// set until the [Handler] returns, which means a drain waits for open
// sessions and a force close cancels them with a 1001 close frame.
//
//	e.GET("/ws/echo", websocket.New(websocket.Echo,
//	    websocket.WithAllowAnyOrigin(),
//	    websocket.WithPingInterval(15*time.Second),
//	))
package websocket
