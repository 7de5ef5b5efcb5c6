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

// Package lifecycle tracks in-flight requests and coordinates graceful
// shutdown.
//
// Each request moves through started, handling and finished. The
// [ActiveSet] records started requests and exposes a completion signal
// that resolves whenever the set becomes empty. The [Manager] layers
// draining on top: once draining, new requests are refused except for
// allow-listed paths, Drain waits for the set to empty up to a grace
// period, and ForceClose cancels whatever is left. ForceClose is safe to
// call any number of times from any goroutine.
package lifecycle
