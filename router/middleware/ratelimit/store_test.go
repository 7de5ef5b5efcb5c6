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
package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Refill(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(2, 3)
	now := time.Unix(1_700_000_000, 0)

	for i := range 3 {
		d := s.Allow("k", now)
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 2-i, d.Remaining)
		assert.Equal(t, 3, d.Limit)
	}

	d := s.Allow("k", now)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 500*time.Millisecond, d.Reset)

	d = s.Allow("k", now.Add(500*time.Millisecond))
	assert.True(t, d.Allowed)

	d = s.Allow("k", now.Add(time.Hour))
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining, "refill is capped at burst")
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(1, 1)
	now := time.Now()

	assert.True(t, s.Allow("a", now).Allowed)
	assert.False(t, s.Allow("a", now).Allowed)
	assert.True(t, s.Allow("b", now).Allowed)
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(1, 1)
	start := time.Now()
	for i := range 100 {
		s.Allow(fmt.Sprintf("client-%d", i), start)
	}
	s.Allow("fresh", start.Add(time.Minute))
	require.Equal(t, 101, s.Len())

	removed := s.Sweep(start.Add(time.Minute), 30*time.Second)
	assert.Equal(t, 100, removed)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0.0001, 50)
	now := time.Now()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 200 {
		wg.Go(func() {
			if s.Allow("shared", now).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}
