package presence

import (
	"context"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(ttl time.Duration) (*Memory, *fakeClock) {
	m := NewMemory(ttl)
	clk := &fakeClock{t: time.Unix(1000, 0)}
	m.now = clk.now
	return m, clk
}

func TestTypingVisibleWithinTTL(t *testing.T) {
	m, clk := newTestTracker(3 * time.Second)
	ctx := context.Background()

	if err := m.SetTyping(ctx, 1, 2, true); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}
	for _, d := range []time.Duration{0, time.Second, 2900 * time.Millisecond} {
		clk.t = time.Unix(1000, 0).Add(d)
		on, err := m.IsTyping(ctx, 1, 2)
		if err != nil {
			t.Fatalf("IsTyping: %v", err)
		}
		if !on {
			t.Fatalf("signal should still be live at +%s", d)
		}
	}
}

func TestTypingExpiresAfterTTL(t *testing.T) {
	m, clk := newTestTracker(3 * time.Second)
	ctx := context.Background()

	if err := m.SetTyping(ctx, 1, 2, true); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}
	clk.advance(3 * time.Second)
	on, err := m.IsTyping(ctx, 1, 2)
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if on {
		t.Fatalf("signal must expire at the TTL boundary")
	}
}

func TestTypingRefreshExtendsWindow(t *testing.T) {
	m, clk := newTestTracker(3 * time.Second)
	ctx := context.Background()

	if err := m.SetTyping(ctx, 1, 2, true); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}
	clk.advance(2 * time.Second)
	if err := m.SetTyping(ctx, 1, 2, true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	clk.advance(2 * time.Second)
	on, err := m.IsTyping(ctx, 1, 2)
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if !on {
		t.Fatalf("refresh must extend the window")
	}
}

func TestTypingOffClearsImmediately(t *testing.T) {
	m, _ := newTestTracker(3 * time.Second)
	ctx := context.Background()

	if err := m.SetTyping(ctx, 1, 2, true); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}
	if err := m.SetTyping(ctx, 1, 2, false); err != nil {
		t.Fatalf("SetTyping off: %v", err)
	}
	on, err := m.IsTyping(ctx, 1, 2)
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if on {
		t.Fatalf("explicit off must clear the signal")
	}
}

func TestTypingIsDirectional(t *testing.T) {
	m, _ := newTestTracker(3 * time.Second)
	ctx := context.Background()

	if err := m.SetTyping(ctx, 1, 2, true); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}
	on, err := m.IsTyping(ctx, 2, 1)
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if on {
		t.Fatalf("1 typing to 2 must not read as 2 typing to 1")
	}
	// unrelated pair stays clear too
	on, err = m.IsTyping(ctx, 1, 3)
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if on {
		t.Fatalf("unrelated pair must not see the signal")
	}
}

func TestSweepEvictsOnlyStaleSignals(t *testing.T) {
	m, clk := newTestTracker(3 * time.Second)
	ctx := context.Background()

	if err := m.SetTyping(ctx, 1, 2, true); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}
	clk.advance(2 * time.Second)
	if err := m.SetTyping(ctx, 3, 2, true); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}
	clk.advance(1 * time.Second)

	// first signal is 3s old, second only 1s
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected 1 evicted; got %d", n)
	}
	on, err := m.IsTyping(ctx, 3, 2)
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if !on {
		t.Fatalf("fresh signal must survive the sweep")
	}
}

func TestNewMemoryDefaultsTTL(t *testing.T) {
	m := NewMemory(0)
	if m.ttl != DefaultTTL {
		t.Fatalf("expected default ttl %s; got %s", DefaultTTL, m.ttl)
	}
}
