package presence

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is the default single-process Tracker. Expiry is evaluated lazily
// at read time; Sweep exists only for memory hygiene, never for correctness.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	signals map[string]time.Time
}

// NewMemory returns a Memory tracker. A non-positive ttl falls back to
// DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		signals: make(map[string]time.Time),
	}
}

func pairKey(sender, receiver int64) string {
	return fmt.Sprintf("%d>%d", sender, receiver)
}

func (m *Memory) SetTyping(_ context.Context, sender, receiver int64, on bool) error {
	key := pairKey(sender, receiver)
	m.mu.Lock()
	defer m.mu.Unlock()
	if on {
		// last write wins; rapid refreshes are commutative
		m.signals[key] = m.now()
	} else {
		delete(m.signals, key)
	}
	return nil
}

func (m *Memory) IsTyping(_ context.Context, sender, receiver int64) (bool, error) {
	key := pairKey(sender, receiver)
	m.mu.RLock()
	at, ok := m.signals[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if m.now().Sub(at) >= m.ttl {
		m.mu.Lock()
		// recheck under the write lock; a fresh ping may have landed
		if at2, ok2 := m.signals[key]; ok2 && m.now().Sub(at2) >= m.ttl {
			delete(m.signals, key)
		}
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Sweep evicts every stale signal and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, at := range m.signals {
		if now.Sub(at) >= m.ttl {
			delete(m.signals, k)
			n++
		}
	}
	return n
}
