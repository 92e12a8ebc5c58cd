package domain

import (
	"context"
	"time"
)

type AuditEntry struct {
	Entity     string
	EntityID   string
	Operation  string
	OldStatus  string
	NewStatus  string
	ActorID    string
	OccurredAt time.Time
}

type AuditLogger interface {
	LogTransition(ctx context.Context, entry AuditEntry) error
}

// SweepLocker provides mutual exclusion for sweep passes across instances.
// unlock must be called once the pass ends; ok is false when another holder owns the lock.
type SweepLocker interface {
	TryLock(ctx context.Context, ttl time.Duration) (unlock func(), ok bool, err error)
}
