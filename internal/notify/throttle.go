package notify

import (
	"context"
	"sync"
	"time"
)

// ThrottleStore persists the shared last-notification timestamp. The value is
// process-wide state with a TTL; the read-then-write around it is deliberately
// unlocked across instances, so a few extra sends near the window edge are
// possible and accepted.
type ThrottleStore interface {
	// LastSentAt returns the recorded send time, or ok=false when none is
	// recorded or the entry has expired.
	LastSentAt(ctx context.Context) (sentAt time.Time, ok bool, err error)
	// MarkSent records a send at sentAt, expiring after ttl.
	MarkSent(ctx context.Context, sentAt time.Time, ttl time.Duration) error
}

// MemoryThrottle keeps the throttle state in process memory. Suitable for a
// single-instance deployment; use the Redis store when running more than one.
type MemoryThrottle struct {
	mu        sync.Mutex
	clock     func() time.Time
	sentAt    time.Time
	expiresAt time.Time
}

// NewMemoryThrottle constructs an in-process throttle store. A nil clock
// defaults to time.Now.
func NewMemoryThrottle(clock func() time.Time) *MemoryThrottle {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryThrottle{clock: clock}
}

// LastSentAt implements ThrottleStore.
func (m *MemoryThrottle) LastSentAt(_ context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sentAt.IsZero() || m.clock().After(m.expiresAt) {
		return time.Time{}, false, nil
	}
	return m.sentAt, true, nil
}

// MarkSent implements ThrottleStore.
func (m *MemoryThrottle) MarkSent(_ context.Context, sentAt time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentAt = sentAt
	m.expiresAt = sentAt.Add(ttl)
	return nil
}
