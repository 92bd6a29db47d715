// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t in UTC, or nil if t is zero
// ledger rows use it for optional timestamps such as updated_at
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
