package notify

import (
	"context"
	"testing"
	"time"
)

func TestMemoryThrottleRoundTrip(t *testing.T) {
	now := time.Unix(1770000000, 0).UTC()
	clock := func() time.Time { return now }
	store := NewMemoryThrottle(clock)

	if _, ok, err := store.LastSentAt(context.Background()); err != nil || ok {
		t.Fatalf("fresh store should have no timestamp, ok=%v err=%v", ok, err)
	}

	if err := store.MarkSent(context.Background(), now, 10*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sentAt, ok, err := store.LastSentAt(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected recorded timestamp, ok=%v err=%v", ok, err)
	}
	if !sentAt.Equal(now) {
		t.Fatalf("unexpected timestamp: %v", sentAt)
	}
}

func TestMemoryThrottleExpiresAfterTTL(t *testing.T) {
	now := time.Unix(1770000000, 0).UTC()
	clock := func() time.Time { return now }
	store := NewMemoryThrottle(func() time.Time { return clock() })

	if err := store.MarkSent(context.Background(), now, 10*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(10*time.Minute + time.Second)
	if _, ok, err := store.LastSentAt(context.Background()); err != nil || ok {
		t.Fatalf("entry should have expired, ok=%v err=%v", ok, err)
	}
}
