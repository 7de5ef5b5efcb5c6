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

package lifecycle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveSet_SignalRearms(t *testing.T) {
	t.Parallel()

	s := NewActiveSet()
	select {
	case <-s.Done():
	default:
		t.Fatal("empty set must report done")
	}

	req := httptest.NewRequest(http.MethodGet, "/a", nil)
	s.Add("1", req, nil)
	s.Add("2", req, nil)
	done := s.Done()
	select {
	case <-done:
		t.Fatal("signal must be armed while requests are active")
	default:
	}

	assert.True(t, s.Remove("1"))
	assert.False(t, s.Remove("1"), "second remove is a no-op")
	select {
	case <-done:
		t.Fatal("one request is still active")
	default:
	}

	assert.True(t, s.Remove("2"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("signal must resolve when the set empties")
	}

	// first entry after empty arms a fresh signal
	s.Add("3", req, nil)
	select {
	case <-s.Done():
		t.Fatal("signal must be re-armed")
	default:
	}
	assert.Equal(t, 1, s.Len())
}

func TestActiveSet_CancelAll(t *testing.T) {
	t.Parallel()

	s := NewActiveSet()
	ctx, cancel := context.WithCancel(context.Background())
	s.Add("1", httptest.NewRequest(http.MethodGet, "/slow", nil), cancel)

	assert.Equal(t, 1, s.CancelAll())
	require.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, 0, s.Len())
	require.NoError(t, s.Wait(context.Background()))
	assert.Equal(t, 0, s.CancelAll())
}

func TestActiveSet_Snapshot(t *testing.T) {
	t.Parallel()

	s := NewActiveSet()
	s.Add("id-1", httptest.NewRequest(http.MethodPost, "/upload", nil), nil)

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "id-1", snap[0].ID)
	assert.Equal(t, http.MethodPost, snap[0].Method)
	assert.Equal(t, "/upload", snap[0].Path)
	assert.False(t, snap[0].Started.IsZero())
}

func TestActiveSet_ConcurrentAddRemove(t *testing.T) {
	t.Parallel()

	s := NewActiveSet()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("req-%d", i)
			s.Add(id, req, nil)
			s.Remove(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, s.Len())
	require.NoError(t, s.Wait(context.Background()))
}

func TestManager_IDGenerators(t *testing.T) {
	t.Parallel()

	m := New()
	id, _, err := m.Begin(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, id, 36, "uuid string")
	m.End(id)

	u := New(WithULIDs())
	id, _, err = u.Begin(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, id, 26, "ulid string")
	u.End(id)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "draining", StateDraining.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestActiveSet_AddIf(t *testing.T) {
	t.Parallel()

	s := NewActiveSet()
	req := httptest.NewRequest(http.MethodGet, "/a", nil)
	refused := fmt.Errorf("refused")

	require.ErrorIs(t, s.AddIf("a", req, nil, func() error { return refused }), refused)
	assert.Zero(t, s.Len())
	select {
	case <-s.Done():
	default:
		t.Fatal("a refused request must not re-arm the signal")
	}

	require.NoError(t, s.AddIf("b", req, nil, func() error { return nil }))
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Remove("b"))
}
