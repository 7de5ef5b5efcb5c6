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
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is the time until a token is available again.
	Reset time.Duration
}

// Store keeps the limiter state per key. Implementations must be safe
// for concurrent use.
type Store interface {
	Allow(key string, now time.Time) Decision
}

const shardCount = 32

type bucket struct {
	tokens float64
	last   time.Time
}

type shard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// MemoryStore is an in-process token bucket store. Keys are spread over
// shards by hash so unrelated clients rarely contend on a lock.
type MemoryStore struct {
	rate   float64
	burst  int
	shards [shardCount]shard
}

// NewMemoryStore returns a store refilling rate tokens per second up to
// burst tokens per key.
func NewMemoryStore(rate float64, burst int) *MemoryStore {
	s := &MemoryStore{rate: rate, burst: max(burst, 1)}
	for i := range s.shards {
		s.shards[i].buckets = make(map[string]*bucket)
	}
	return s
}

func (s *MemoryStore) shardFor(key string) *shard {
	return &s.shards[xxhash.Sum64String(key)%shardCount]
}

// Allow takes one token for key if one is available.
func (s *MemoryStore) Allow(key string, now time.Time) Decision {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	b, ok := sh.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(s.burst), last: now}
		sh.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(s.burst), b.tokens+elapsed*s.rate)
		b.last = now
	}

	d := Decision{Limit: s.burst}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
	}
	d.Remaining = int(b.tokens)
	if b.tokens < 1 && s.rate > 0 {
		d.Reset = time.Duration((1 - b.tokens) / s.rate * float64(time.Second))
	}
	return d
}

// Sweep drops buckets untouched since before now minus idle and returns
// how many were removed. A bucket idle that long has refilled anyway.
func (s *MemoryStore) Sweep(now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)
	removed := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, b := range sh.buckets {
			if b.last.Before(cutoff) {
				delete(sh.buckets, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.buckets)
		sh.mu.Unlock()
	}
	return n
}
