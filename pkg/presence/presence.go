// Package presence tracks ephemeral "is typing" signals per ordered
// (sender, receiver) pair. A signal is active only while it is younger than
// the TTL; it degrades to inactive without an explicit stop, so a crashed or
// navigated-away client never leaves a stuck indicator.
package presence

import (
	"context"
	"time"
)

// DefaultTTL matches the client's own clear-after-inactivity timer.
const DefaultTTL = 3 * time.Second

// Tracker records and answers typing signals. (A typing to B) is
// independent of (B typing to A).
type Tracker interface {
	// SetTyping refreshes the signal when on is true and clears it
	// immediately when false. Explicit stop is honored but never required.
	SetTyping(ctx context.Context, sender, receiver int64, on bool) error
	// IsTyping reports whether an active signal exists for the ordered pair.
	IsTyping(ctx context.Context, sender, receiver int64) (bool, error)
}
