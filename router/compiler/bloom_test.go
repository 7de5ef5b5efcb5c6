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

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomFilter_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(1024, 3)
	paths := make([]string, 0, 100)
	for i := range 100 {
		paths = append(paths, fmt.Sprintf("/static/%d", i))
	}
	for _, p := range paths {
		bf.Add(p)
	}
	for _, p := range paths {
		assert.True(t, bf.Test(p), "added path %s must test positive", p)
	}
}

func TestBloomFilter_Empty(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(128, 3)
	assert.False(t, bf.Test("/anything"))
	assert.False(t, bf.Test(""))
}

func TestBloomFilter_SmallSizesAreClamped(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(0, 0)
	bf.Add("/x")
	assert.True(t, bf.Test("/x"))
	assert.Equal(t, uint64(1), bf.k)
	assert.Equal(t, uint64(64), bf.size)
}

func TestBloomFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(8192, 3)
	for i := range 200 {
		bf.Add(fmt.Sprintf("/route/%d", i))
	}
	hits := 0
	for i := range 1000 {
		if bf.Test(fmt.Sprintf("/missing/%d", i)) {
			hits++
		}
	}
	assert.Less(t, hits, 100, "false positive rate should stay well under 10%%")
}
