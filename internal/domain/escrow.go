package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EscrowStatus string

const (
	EscrowPending  EscrowStatus = "pending"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
	EscrowDisputed EscrowStatus = "disputed"
)

// DefaultHoldPeriod is the grace period between creation and automatic release.
const DefaultHoldPeriod = 7 * 24 * time.Hour

func (s EscrowStatus) Valid() bool {
	switch s {
	case EscrowPending, EscrowReleased, EscrowRefunded, EscrowDisputed:
		return true
	}
	return false
}

type EscrowTransaction struct {
	ID          string
	PayerID     string
	ReceiverID  string
	Amount      decimal.Decimal
	Description string
	ServiceID   *string
	Status      EscrowStatus
	CreatedAt   time.Time
	ReleaseAt   time.Time
	ReleasedAt  *time.Time
	RefundedAt  *time.Time
	Released    bool
	Disputed    bool
	Version     int64
	UpdatedAt   time.Time
}

// IsReleasable reports whether funds may be paid out to the receiver.
// A disputed transaction is never releasable, whatever its status says.
func (e *EscrowTransaction) IsReleasable() bool {
	return e.Status == EscrowPending && !e.Disputed && !e.Released
}

// IsDue reports whether the automatic release is owed at now.
func (e *EscrowTransaction) IsDue(now time.Time) bool {
	return e.IsReleasable() && !now.Before(e.ReleaseAt)
}

func (e *EscrowTransaction) IsTerminal() bool {
	return e.Status == EscrowReleased || e.Status == EscrowRefunded
}

func (e *EscrowTransaction) IsParty(subjectID string) bool {
	return subjectID != "" && (e.PayerID == subjectID || e.ReceiverID == subjectID)
}

// Release returns the released copy of e. changed is false when e was
// already released; the copy is then identical to e.
func (e EscrowTransaction) Release(now time.Time) (next EscrowTransaction, changed bool, err error) {
	if e.Status == EscrowReleased && e.Released {
		return e, false, nil
	}
	if !e.IsReleasable() {
		return e, false, e.invalid("release")
	}
	at := now
	e.Status = EscrowReleased
	e.Released = true
	e.ReleasedAt = &at
	e.touch(now)
	return e, true, nil
}

// Refund accepts pending and disputed transactions.
func (e EscrowTransaction) Refund(now time.Time) (next EscrowTransaction, changed bool, err error) {
	if e.Status == EscrowRefunded {
		return e, false, nil
	}
	if e.Status != EscrowPending && e.Status != EscrowDisputed {
		return e, false, e.invalid("refund")
	}
	at := now
	e.Status = EscrowRefunded
	e.RefundedAt = &at
	e.touch(now)
	return e, true, nil
}

// Dispute freezes a pending transaction; the sweep skips it from then on.
func (e EscrowTransaction) Dispute(now time.Time) (next EscrowTransaction, changed bool, err error) {
	if e.Status == EscrowDisputed {
		return e, false, nil
	}
	if e.Status != EscrowPending || e.Released {
		return e, false, e.invalid("dispute")
	}
	e.Status = EscrowDisputed
	e.Disputed = true
	e.touch(now)
	return e, true, nil
}

func (e *EscrowTransaction) touch(now time.Time) {
	e.Version++
	e.UpdatedAt = now
}

func (e *EscrowTransaction) invalid(op string) *InvalidStateError {
	current := string(e.Status)
	if e.Disputed && e.Status == EscrowPending {
		current = string(EscrowDisputed)
	}
	return &InvalidStateError{Entity: "escrow", ID: e.ID, Operation: op, Current: current}
}

type EscrowFilter struct {
	Status     *EscrowStatus
	PayerID    *string
	ReceiverID *string
	// PartyID matches either side of the transaction.
	PartyID *string
	Page    int
	Limit   int
}

type EscrowTotal struct {
	Status EscrowStatus
	Count  int64
	Amount decimal.Decimal
}

type EscrowSummary struct {
	HeldTotal             decimal.Decimal
	ReleasedTotal         decimal.Decimal
	RefundedTotal         decimal.Decimal
	DisputedTotal         decimal.Decimal
	CountByStatus         map[EscrowStatus]int64
	PaymentsHeldTotal     decimal.Decimal
	PaymentsReleasedTotal decimal.Decimal
	CalculatedAt          time.Time
}

type EscrowRepository interface {
	CreateEscrow(ctx context.Context, escrow *EscrowTransaction) error
	GetEscrowByID(ctx context.Context, escrowID string) (*EscrowTransaction, error)
	// UpdateEscrowConditional persists next only if the stored record still has
	// expectedStatus and expectedVersion, otherwise ErrConcurrencyConflict.
	UpdateEscrowConditional(ctx context.Context, next *EscrowTransaction, expectedStatus EscrowStatus, expectedVersion int64) error
	FindDueReleases(ctx context.Context, now time.Time, limit int) ([]*EscrowTransaction, error)
	ListEscrows(ctx context.Context, filter EscrowFilter) ([]*EscrowTransaction, int64, error)
	GetEscrowTotals(ctx context.Context) ([]EscrowTotal, error)
}
