package testkit

import (
	"sync"
	"testing"
)

// serial guards package-level seams shared across parallel tests
var serial sync.Mutex

// Swap replaces a package-level variable (usually a func seam such as a clock) for the duration of the test
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds a global lock until the test finishes, use it before Swap in parallel tests
func Serial(t *testing.T) {
	t.Helper()
	serial.Lock()
	t.Cleanup(serial.Unlock)
}
