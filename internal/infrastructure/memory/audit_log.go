package memory

import (
	"context"
	"sync"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
)

// AuditLog keeps audit entries in process memory.
type AuditLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) LogTransition(ctx context.Context, entry domain.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *AuditLog) Entries() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
