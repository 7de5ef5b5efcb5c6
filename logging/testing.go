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
package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sync"
	"testing"
)

// LogEntry represents a parsed log entry for testing.
type LogEntry struct {
	Level   string
	Message string
	Attrs   map[string]any
}

// SyncBuffer is a bytes.Buffer safe for concurrent writers.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Bytes returns a copy of the buffered output.
func (b *SyncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

// Reset discards the buffered output.
func (b *SyncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// ParseJSONLogEntries parses one JSON object per line.
func ParseJSONLogEntries(data []byte) ([]LogEntry, error) {
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			return nil, err
		}
		le := LogEntry{Attrs: make(map[string]any)}
		le.Message, _ = raw["msg"].(string)
		le.Level, _ = raw["level"].(string)
		for k, v := range raw {
			if k != "time" && k != "level" && k != "msg" {
				le.Attrs[k] = v
			}
		}
		entries = append(entries, le)
	}
	return entries, scanner.Err()
}

// TestHelper captures JSON log output in memory.
type TestHelper struct {
	Logger *Logger
	Buffer *SyncBuffer
}

// NewTestHelper creates a debug-level JSON logger writing to memory.
func NewTestHelper(t testing.TB, opts ...Option) *TestHelper {
	t.Helper()

	buf := &SyncBuffer{}
	all := append([]Option{WithJSONHandler(), WithOutput(buf), WithLevel(LevelDebug)}, opts...)
	logger, err := New(all...)
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return &TestHelper{Logger: logger, Buffer: buf}
}

// Logs returns all parsed log entries.
func (th *TestHelper) Logs() []LogEntry {
	entries, _ := ParseJSONLogEntries(th.Buffer.Bytes())
	return entries
}

// ContainsLog reports whether any entry has msg as its message.
func (th *TestHelper) ContainsLog(msg string) bool {
	for _, e := range th.Logs() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any entry carries key with a value equal
// to value once both are JSON decoded.
func (th *TestHelper) ContainsAttr(key string, value any) bool {
	want, err := json.Marshal(value)
	if err != nil {
		return false
	}
	for _, e := range th.Logs() {
		v, ok := e.Attrs[key]
		if !ok {
			continue
		}
		got, _ := json.Marshal(v)
		if bytes.Equal(got, want) {
			return true
		}
	}
	return false
}

// CountLevel counts entries at level ("INFO", "WARN", ...).
func (th *TestHelper) CountLevel(level string) int {
	n := 0
	for _, e := range th.Logs() {
		if e.Level == level {
			n++
		}
	}
	return n
}
