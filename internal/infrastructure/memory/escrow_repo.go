// Package memory holds mutex-guarded repositories used by the "memory"
// storage driver and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
)

type EscrowRepository struct {
	mu      sync.RWMutex
	escrows map[string]*domain.EscrowTransaction
}

func NewEscrowRepository() *EscrowRepository {
	return &EscrowRepository{escrows: make(map[string]*domain.EscrowTransaction)}
}

func (r *EscrowRepository) CreateEscrow(ctx context.Context, escrow *domain.EscrowTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.escrows[escrow.ID]; ok {
		return fmt.Errorf("escrow %s: %w", escrow.ID, domain.ErrAlreadyExists)
	}
	r.escrows[escrow.ID] = cloneEscrow(escrow)
	return nil
}

func (r *EscrowRepository) GetEscrowByID(ctx context.Context, escrowID string) (*domain.EscrowTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	escrow, ok := r.escrows[escrowID]
	if !ok {
		return nil, fmt.Errorf("escrow %s: %w", escrowID, domain.ErrNotFound)
	}
	return cloneEscrow(escrow), nil
}

func (r *EscrowRepository) UpdateEscrowConditional(ctx context.Context, next *domain.EscrowTransaction, expectedStatus domain.EscrowStatus, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.escrows[next.ID]
	if !ok {
		return fmt.Errorf("escrow %s: %w", next.ID, domain.ErrNotFound)
	}
	if stored.Status != expectedStatus || stored.Version != expectedVersion {
		return fmt.Errorf("escrow %s: %w", next.ID, domain.ErrConcurrencyConflict)
	}
	r.escrows[next.ID] = cloneEscrow(next)
	return nil
}

func (r *EscrowRepository) FindDueReleases(ctx context.Context, now time.Time, limit int) ([]*domain.EscrowTransaction, error) {
	r.mu.RLock()
	var due []*domain.EscrowTransaction
	for _, escrow := range r.escrows {
		if escrow.IsDue(now) {
			due = append(due, cloneEscrow(escrow))
		}
	}
	r.mu.RUnlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].ReleaseAt.Equal(due[j].ReleaseAt) {
			return due[i].ID < due[j].ID
		}
		return due[i].ReleaseAt.Before(due[j].ReleaseAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *EscrowRepository) ListEscrows(ctx context.Context, filter domain.EscrowFilter) ([]*domain.EscrowTransaction, int64, error) {
	r.mu.RLock()
	var matched []*domain.EscrowTransaction
	for _, escrow := range r.escrows {
		if matchEscrow(escrow, filter) {
			matched = append(matched, cloneEscrow(escrow))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

func (r *EscrowRepository) GetEscrowTotals(ctx context.Context) ([]domain.EscrowTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byStatus := make(map[domain.EscrowStatus]*domain.EscrowTotal)
	for _, escrow := range r.escrows {
		t, ok := byStatus[escrow.Status]
		if !ok {
			t = &domain.EscrowTotal{Status: escrow.Status}
			byStatus[escrow.Status] = t
		}
		t.Count++
		t.Amount = t.Amount.Add(escrow.Amount)
	}
	totals := make([]domain.EscrowTotal, 0, len(byStatus))
	for _, t := range byStatus {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Status < totals[j].Status })
	return totals, nil
}

func matchEscrow(e *domain.EscrowTransaction, f domain.EscrowFilter) bool {
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.PayerID != nil && e.PayerID != *f.PayerID {
		return false
	}
	if f.ReceiverID != nil && e.ReceiverID != *f.ReceiverID {
		return false
	}
	if f.PartyID != nil && !e.IsParty(*f.PartyID) {
		return false
	}
	return true
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneEscrow(e *domain.EscrowTransaction) *domain.EscrowTransaction {
	c := *e
	if e.ServiceID != nil {
		v := *e.ServiceID
		c.ServiceID = &v
	}
	if e.ReleasedAt != nil {
		v := *e.ReleasedAt
		c.ReleasedAt = &v
	}
	if e.RefundedAt != nil {
		v := *e.RefundedAt
		c.RefundedAt = &v
	}
	return &c
}
