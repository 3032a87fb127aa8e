// Package testkit provides testing helpers
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// MustPanic asserts that fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain asserts that haystack contains needle
// on failure the full haystack is written to a temp file so long log output stays readable
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		out := filepath.Join(t.TempDir(), "haystack.txt")
		_ = os.WriteFile(out, []byte(haystack), 0o600)
		t.Fatalf("expected output to contain %q\n\nfull output written to %s", needle, out)
	}
}

var seamLocks sync.Map // *T -> *sync.Mutex

// Seam replaces *target for the rest of t and holds a lock on target until t ends,
// so parallel tests that replace the same package variable run one at a time
// Tests replacing different variables do not block each other
func Seam[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	mu, _ := seamLocks.LoadOrStore(target, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	t.Cleanup(mu.(*sync.Mutex).Unlock)

	orig := *target
	*target = replacement
	// cleanups run last-in first-out: restore, then unlock
	t.Cleanup(func() { *target = orig })
}
