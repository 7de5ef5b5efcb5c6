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
package router

// DiagnosticEvent is an informational event about routing decisions.
// The engine behaves the same whether events are collected or not.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	DiagTableBuilt       DiagnosticKind = "table_built"
	DiagRouteNotFound    DiagnosticKind = "route_not_found"
	DiagMethodNotAllowed DiagnosticKind = "method_not_allowed"
	DiagFallbackSelected DiagnosticKind = "fallback_selected"
	DiagDrainRejected    DiagnosticKind = "drain_rejected"
	DiagHookPanic        DiagnosticKind = "hook_panic"
)

// DiagnosticHandler receives diagnostic events. Handlers are called
// synchronously on the request goroutine and should be fast.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc adapts a function to DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}

func (e *Engine) emit(kind DiagnosticKind, msg string, fields map[string]any) {
	if e.cfg.diagnostics == nil {
		return
	}
	e.cfg.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
}
