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
package app

import (
	"context"
	"log/slog"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/telemetry/semconv"
)

// diagnosticsFanout delivers each event to every handler in order.
type diagnosticsFanout []router.DiagnosticHandler

func (f diagnosticsFanout) OnDiagnostic(ev router.DiagnosticEvent) {
	for _, h := range f {
		h.OnDiagnostic(ev)
	}
}

// logDiagnostics logs routing events. Hook panics are errors, the rest
// are debug noise unless something is wrong.
func logDiagnostics(logger *slog.Logger) router.DiagnosticHandler {
	return router.DiagnosticHandlerFunc(func(ev router.DiagnosticEvent) {
		level := slog.LevelDebug
		switch ev.Kind {
		case router.DiagHookPanic:
			level = slog.LevelError
		case router.DiagTableBuilt, router.DiagDrainRejected:
			level = slog.LevelInfo
		}
		if !logger.Enabled(context.Background(), level) {
			return
		}
		attrs := make([]slog.Attr, 0, len(ev.Fields)+1)
		attrs = append(attrs, slog.String(semconv.DiagnosticKind, string(ev.Kind)))
		for k, v := range ev.Fields {
			attrs = append(attrs, slog.Any(k, v))
		}
		logger.LogAttrs(context.Background(), level, ev.Message, attrs...)
	})
}
