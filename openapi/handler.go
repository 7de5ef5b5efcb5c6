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
package openapi

import (
	"net/http"
	"strings"

	"github.com/kingwill101/routed-sub001/router"
)

// Handler serves the engine's document. The document is rebuilt on every
// request so routes added at runtime show up. YAML is served for
// ?format=yaml, paths ending in .yaml and Accept headers naming yaml.
func Handler(e *router.Engine, opts ...Option) router.HandlerFunc {
	g := New(opts...)
	return func(c *router.Context) {
		doc, err := g.FromEngine(e)
		if err != nil {
			c.AbortWithError(err)
			return
		}
		if !wantsYAML(c.Request) {
			_ = c.JSON(http.StatusOK, doc)
			return
		}
		data, err := doc.YAML()
		if err != nil {
			c.AbortWithError(err)
			return
		}
		_ = c.Data(http.StatusOK, "application/yaml", data)
	}
}

func wantsYAML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "yaml" ||
		strings.HasSuffix(r.URL.Path, ".yaml") ||
		strings.Contains(r.Header.Get("Accept"), "yaml")
}
