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
package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var methodColors = map[string]string{
	http.MethodGet:     "10",
	http.MethodPost:    "12",
	http.MethodPut:     "11",
	http.MethodDelete:  "9",
	http.MethodPatch:   "13",
	http.MethodHead:    "14",
	http.MethodOptions: "7",
}

// printBanner writes the service header and the route table. Colors are
// dropped automatically when the output is not a terminal.
func (s *Server) printBanner() {
	w := s.cfg.bannerOut
	r := lipgloss.NewRenderer(w)

	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	label := r.NewStyle().Foreground(lipgloss.Color("240")).Width(12).PaddingLeft(2)
	value := r.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	scheme := "http://"
	if s.cfg.certFile != "" {
		scheme = "https://"
	}
	addr := s.addr.String()
	if strings.HasPrefix(addr, "[::]") {
		addr = "0.0.0.0" + strings.TrimPrefix(addr, "[::]")
	}

	var b strings.Builder
	b.WriteString(title.Render(s.cfg.serviceName))
	if s.cfg.serviceVersion != "" {
		b.WriteString(" " + value.Render(s.cfg.serviceVersion))
	}
	b.WriteString("\n")
	b.WriteString(label.Render("Address:") + value.Render(scheme+addr) + "\n")
	b.WriteString(label.Render("Protocol:") + value.Render(s.Protocol()) + "\n")
	b.WriteString(label.Render("Grace:") + value.Render(s.cfg.shutdownGrace.String()) + "\n")

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, b.String())

	routes, err := s.engine.Routes()
	if err != nil || len(routes) == 0 {
		_, _ = fmt.Fprintln(w)
		return
	}

	rows := make([][]string, 0, len(routes))
	for _, rt := range routes {
		method := rt.Method
		if c, ok := methodColors[method]; ok {
			method = r.NewStyle().Bold(true).Foreground(lipgloss.Color(c)).Render(method)
		}
		name := rt.Name
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{method, rt.Path, name, string(rt.Kind), strconv.Itoa(rt.Middleware)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			st := r.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				st = st.Bold(true)
			}
			return st
		}).
		Headers("Method", "Path", "Name", "Kind", "Middleware").
		Rows(rows...)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, t.Render())
	_, _ = fmt.Fprintln(w)
}
