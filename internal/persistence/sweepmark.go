package persistence

import (
	"context"
	"fmt"
	"time"
)

// SweepMarker records that a sweep already acted on an issue, suppressing
// repeat actions within the cool-down window. A zero TTL disables marking
// entirely, which preserves the reference behavior of re-acting on every
// pass.
type SweepMarker struct {
	redis *Redis
	ttl   time.Duration
}

// NewSweepMarker builds a marker backed by Redis. Returns nil when the
// cool-down is disabled; callers treat a nil marker as "always act".
func NewSweepMarker(redis *Redis, ttl time.Duration) *SweepMarker {
	if redis == nil || redis.Client == nil || ttl <= 0 {
		return nil
	}
	return &SweepMarker{redis: redis, ttl: ttl}
}

// TryMark attempts to claim the (kind, issueID) pair for this cool-down
// window. It returns true when the caller should proceed. Marking errors
// fail open: a broken Redis must not stop escalations.
func (m *SweepMarker) TryMark(ctx context.Context, kind, issueID string) bool {
	if m == nil {
		return true
	}
	key := fmt.Sprintf("sweep:%s:%s", kind, issueID)
	ok, err := m.redis.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
