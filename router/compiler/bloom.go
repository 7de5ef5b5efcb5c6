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

package compiler

import "github.com/cespare/xxhash/v2"

// BloomFilter answers "definitely absent" for static paths so that the
// common miss case skips the map lookup.
//
// Positions are derived from one xxhash sum with double hashing:
// pos(i) = h1 + i*h2.
type BloomFilter struct {
	bits []uint64
	size uint64
	k    uint64
}

// NewBloomFilter creates a filter of size bits using numHashFuncs derived
// hashes. Sizes below 64 are rounded up.
func NewBloomFilter(size uint64, numHashFuncs int) *BloomFilter {
	if size < 64 {
		size = 64
	}
	if numHashFuncs < 1 {
		numHashFuncs = 1
	}
	return &BloomFilter{
		bits: make([]uint64, (size+63)/64),
		size: size,
		k:    uint64(numHashFuncs), //nolint:gosec // small positive count
	}
}

func split(s string) (uint64, uint64) {
	sum := xxhash.Sum64String(s)
	return sum, (sum >> 33) | 1
}

// Add inserts s.
func (bf *BloomFilter) Add(s string) {
	h1, h2 := split(s)
	for i := range bf.k {
		pos := (h1 + i*h2) % bf.size
		bf.bits[pos/64] |= 1 << (pos % 64)
	}
}

// Test reports whether s may have been added. False is exact.
func (bf *BloomFilter) Test(s string) bool {
	h1, h2 := split(s)
	for i := range bf.k {
		pos := (h1 + i*h2) % bf.size
		if bf.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}
