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
// Command routed serves a small demo API on top of the routing engine.
//
// Configuration comes from an optional file (-config, default routed.yaml),
// a .env file and ROUTED_* environment variables, in that order.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kingwill101/routed-sub001/app"
	"github.com/kingwill101/routed-sub001/binding"
	"github.com/kingwill101/routed-sub001/config"
	"github.com/kingwill101/routed-sub001/openapi"
	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/middleware/bodylimit"
	"github.com/kingwill101/routed-sub001/router/middleware/timeout"
	"github.com/kingwill101/routed-sub001/transport/websocket"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "routed.yaml", "configuration file, skipped when missing")
	dotenv := flag.String("env-file", ".env", "dotenv file, skipped when missing")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx,
		config.WithOptionalFile(*configPath),
		config.WithDotEnv(*dotenv),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routed: %v\n", err)
		return 2
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routed: %v\n", err)
		return 2
	}
	registerRoutes(a.Engine(), newStore())

	err = a.Run(ctx)
	if err != nil {
		a.Logger().Error("server stopped", "error", err)
	}
	return a.ExitCode(err)
}

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type createUser struct {
	Name string `json:"name" validate:"required,max=64"`
}

type listQuery struct {
	Prefix string `query:"prefix" doc:"only users whose name starts with this"`
}

type store struct {
	mu    sync.RWMutex
	next  atomic.Int64
	users map[int]user
}

func newStore() *store {
	return &store{users: make(map[int]user)}
}

func registerRoutes(e *router.Engine, s *store) {
	e.GET("/", func(c *router.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"service": "routed"})
	}).SetName("home")

	api := e.Group("/api", timeout.New())
	api.SetNamePrefix("api.")

	users := api.Group("/users")
	users.GET("", s.list).SetName("users.list").SetTags("users").
		SetSchema(openapi.Summary("List users")).
		SetSchema(openapi.Params(listQuery{})).
		SetSchema(openapi.Response(http.StatusOK, []user{}))
	users.POST("", bodylimit.New(bodylimit.WithLimit(1<<10)), s.create).SetName("users.create").SetTags("users").
		SetSchema(openapi.Summary("Create a user")).
		SetSchema(openapi.Request(createUser{})).
		SetSchema(openapi.Response(http.StatusCreated, user{})).
		SetSchema(openapi.Response(http.StatusUnprocessableEntity, nil))
	users.GET("/{id:int}", s.get).SetName("users.get").SetTags("users").
		SetSchema(openapi.Summary("Fetch a user")).
		SetSchema(openapi.Response(http.StatusOK, user{})).
		SetSchema(openapi.Response(http.StatusNotFound, nil))
	users.DELETE("/{id:int}", s.remove).SetName("users.delete").SetTags("users").
		SetSchema(openapi.Summary("Delete a user")).
		SetSchema(openapi.Response(http.StatusNoContent, nil))

	api.Fallback(func(c *router.Context) {
		c.AbortWithError(router.NewHTTPError(http.StatusNotFound, "no such API endpoint"))
	})

	e.GET("/ws/echo", websocket.New(websocket.Echo)).SetName("ws.echo").
		SetDescription("Echoes every websocket message back to the sender.")

	e.GET("/openapi.json", openapi.Handler(e,
		openapi.WithInfo("routed demo", "1.0.0"),
		openapi.WithExcludeNames("openapi"),
	)).SetName("openapi")
}

func (s *store) list(c *router.Context) {
	q, err := binding.Query[listQuery](c)
	if err != nil {
		c.AbortWithError(err)
		return
	}
	s.mu.RLock()
	out := make([]user, 0, len(s.users))
	for _, u := range s.users {
		if strings.HasPrefix(u.Name, q.Prefix) {
			out = append(out, u)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b user) int { return a.ID - b.ID })
	_ = c.JSON(http.StatusOK, out)
}

func (s *store) create(c *router.Context) {
	in, err := binding.Body[createUser](c)
	if err != nil {
		c.AbortWithError(err)
		return
	}
	u := user{ID: int(s.next.Add(1)), Name: in.Name}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	_ = c.JSON(http.StatusCreated, u)
}

func (s *store) get(c *router.Context) {
	id, _ := c.ParamInt("id")
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		c.AbortWithError(router.NewHTTPError(http.StatusNotFound, "user not found"))
		return
	}
	_ = c.JSON(http.StatusOK, u)
}

func (s *store) remove(c *router.Context) {
	id, _ := c.ParamInt("id")
	s.mu.Lock()
	delete(s.users, id)
	s.mu.Unlock()
	c.NoContent()
}
