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

package container

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int64 }

func TestContainer_Lifetimes(t *testing.T) {
	t.Parallel()

	var built atomic.Int64
	factory := func(*Container) (any, error) {
		return &counter{n: built.Add(1)}, nil
	}

	c := New()
	c.Bind("transient", factory)
	c.Singleton("singleton", factory)
	c.Scoped("scoped", factory)

	t.Run("transient builds every time", func(t *testing.T) {
		a := MustResolve[*counter](c, "transient")
		b := MustResolve[*counter](c, "transient")
		assert.NotSame(t, a, b)
	})

	t.Run("singleton is shared by scopes", func(t *testing.T) {
		a := MustResolve[*counter](c.Scope(), "singleton")
		b := MustResolve[*counter](c.Scope(), "singleton")
		assert.Same(t, a, b)
	})

	t.Run("scoped is per scope", func(t *testing.T) {
		s1, s2 := c.Scope(), c.Scope()
		a1 := MustResolve[*counter](s1, "scoped")
		a2 := MustResolve[*counter](s1, "scoped")
		b := MustResolve[*counter](s2, "scoped")
		assert.Same(t, a1, a2)
		assert.NotSame(t, a1, b)
	})
}

func TestContainer_Instance(t *testing.T) {
	t.Parallel()

	c := New()
	c.Instance("name", "routed")
	s := c.Scope()
	s.Instance("name", "scoped")

	v, err := Resolve[string](c, "name")
	require.NoError(t, err)
	assert.Equal(t, "routed", v)

	v, err = Resolve[string](s, "name")
	require.NoError(t, err)
	assert.Equal(t, "scoped", v)
	assert.Same(t, c, s.Parent())
}

func TestContainer_Errors(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.Make("missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, c.Has("missing"))

	boom := errors.New("boom")
	c.Singleton("broken", func(*Container) (any, error) { return nil, boom })
	_, err = c.Make("broken")
	require.ErrorIs(t, err, boom)
	assert.True(t, c.Has("broken"))

	c.Instance("num", 1)
	_, err = Resolve[string](c, "num")
	require.Error(t, err)
	assert.Panics(t, func() { MustResolve[string](c, "num") })
}

func TestContainer_FactoriesResolveDependencies(t *testing.T) {
	t.Parallel()

	c := New()
	c.Instance("greeting", "hello")
	c.Scoped("message", func(s *Container) (any, error) {
		g, err := Resolve[string](s, "greeting")
		if err != nil {
			return nil, err
		}
		return g + " world", nil
	})

	v, err := Resolve[string](c.Scope(), "message")
	require.NoError(t, err)
	assert.Equal(t, "hello world", v)
}

func TestContainer_ConcurrentSingleton(t *testing.T) {
	t.Parallel()

	c := New()
	c.Singleton("svc", func(*Container) (any, error) { return &counter{}, nil })

	var wg sync.WaitGroup
	results := make([]*counter, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = MustResolve[*counter](c.Scope(), "svc")
		}()
	}
	wg.Wait()

	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}
