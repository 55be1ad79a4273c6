// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared utilities.
package util

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// Debounce scenario: ten rapid triggers within the interval collapse into
// exactly one callback.
func TestDebouncer_BurstCollapses(t *testing.T) {
	d := NewDebouncer(150 * time.Millisecond)
	defer d.Stop()

	var fired int64
	for i := 0; i < 10; i++ {
		d.Trigger(func() { atomic.AddInt64(&fired, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	// Wait past the quiet interval for the trailing call.
	time.Sleep(400 * time.Millisecond)

	if got := atomic.LoadInt64(&fired); got != 1 {
		t.Errorf("callback fired %d times, want 1", got)
	}
	if d.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", d.Calls())
	}
}

func TestDebouncer_SeparatedTriggersBothFire(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var fired int64
	d.Trigger(func() { atomic.AddInt64(&fired, 1) })
	time.Sleep(100 * time.Millisecond)
	d.Trigger(func() { atomic.AddInt64(&fired, 1) })
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt64(&fired); got != 2 {
		t.Errorf("callback fired %d times, want 2", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var fired int64
	d.Trigger(func() { atomic.AddInt64(&fired, 1) })
	d.Stop()
	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt64(&fired); got != 0 {
		t.Errorf("callback fired %d times after Stop, want 0", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.toml")

	if err := AtomicWriteFile(path, []byte("alpha"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("beta"), 0644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "beta" {
		t.Errorf("content = %q, want %q", data, "beta")
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is a longer string", 10, "this is..."},
		{"héllo wörld unicode", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
