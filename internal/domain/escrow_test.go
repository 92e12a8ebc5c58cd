package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func pendingEscrow() EscrowTransaction {
	return EscrowTransaction{
		ID:         "esc1",
		PayerID:    "alice",
		ReceiverID: "bob",
		Amount:     decimal.NewFromInt(100),
		Status:     EscrowPending,
		CreatedAt:  t0,
		ReleaseAt:  t0.Add(DefaultHoldPeriod),
		Version:    1,
	}
}

func TestEscrowRelease(t *testing.T) {
	e := pendingEscrow()
	now := t0.Add(time.Hour)

	next, changed, err := e.Release(now)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !changed {
		t.Fatal("expected state change")
	}
	if next.Status != EscrowReleased || !next.Released {
		t.Fatalf("unexpected state: %s released=%v", next.Status, next.Released)
	}
	if next.ReleasedAt == nil || !next.ReleasedAt.Equal(now) {
		t.Fatalf("released_at = %v, want %v", next.ReleasedAt, now)
	}
	if next.Version != 2 {
		t.Errorf("version = %d, want 2", next.Version)
	}
	if e.Status != EscrowPending {
		t.Error("receiver value must not be mutated")
	}

	again, changed, err := next.Release(now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second release: %v", err)
	}
	if changed {
		t.Error("second release must be a no-op")
	}
	if !again.ReleasedAt.Equal(now) || again.Version != next.Version {
		t.Error("second release changed the record")
	}
}

func TestEscrowTransitionsRejected(t *testing.T) {
	released, _, _ := pendingEscrow().Release(t0)
	refunded, _, _ := pendingEscrow().Refund(t0)
	disputed, _, _ := pendingEscrow().Dispute(t0)

	tests := []struct {
		name    string
		apply   func() (EscrowTransaction, bool, error)
		current string
	}{
		{"refund after release", func() (EscrowTransaction, bool, error) { return released.Refund(t0) }, "released"},
		{"release after refund", func() (EscrowTransaction, bool, error) { return refunded.Release(t0) }, "refunded"},
		{"release disputed", func() (EscrowTransaction, bool, error) { return disputed.Release(t0) }, "disputed"},
		{"dispute released", func() (EscrowTransaction, bool, error) { return released.Dispute(t0) }, "released"},
		{"dispute refunded", func() (EscrowTransaction, bool, error) { return refunded.Dispute(t0) }, "refunded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, changed, err := tt.apply()
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("err = %v, want ErrInvalidState", err)
			}
			var stateErr *InvalidStateError
			if !errors.As(err, &stateErr) || stateErr.Current != tt.current {
				t.Fatalf("current = %v, want %s", stateErr, tt.current)
			}
			if changed {
				t.Error("rejected transition reported a change")
			}
		})
	}
}

func TestEscrowDisputedFlagBlocksRelease(t *testing.T) {
	e := pendingEscrow()
	e.Disputed = true

	if e.IsReleasable() {
		t.Fatal("disputed transaction must not be releasable")
	}
	if e.IsDue(t0.Add(365 * 24 * time.Hour)) {
		t.Fatal("disputed transaction must never be due")
	}
	if _, _, err := e.Release(t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestEscrowRefundFromDispute(t *testing.T) {
	disputed, _, err := pendingEscrow().Dispute(t0)
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	refunded, changed, err := disputed.Refund(t0.Add(time.Minute))
	if err != nil || !changed {
		t.Fatalf("refund: changed=%v err=%v", changed, err)
	}
	if refunded.Released || refunded.ReleasedAt != nil {
		t.Error("refund must not touch release fields")
	}
	if refunded.RefundedAt == nil {
		t.Error("refunded_at not set")
	}
}

func TestEscrowIsDue(t *testing.T) {
	e := pendingEscrow()
	cases := []struct {
		at   time.Time
		want bool
	}{
		{t0.Add(6 * 24 * time.Hour), false},
		{e.ReleaseAt.Add(-time.Nanosecond), false},
		{e.ReleaseAt, true},
		{t0.Add(8 * 24 * time.Hour), true},
	}
	for _, c := range cases {
		if got := e.IsDue(c.at); got != c.want {
			t.Errorf("IsDue(%v) = %v, want %v", c.at, got, c.want)
		}
	}
}

func TestPaymentLifecycle(t *testing.T) {
	p := PaymentTransaction{ID: "pay1", BookingID: "b1", Amount: decimal.NewFromInt(50), Status: PaymentInitiated, Version: 1}

	if _, _, err := p.Release(t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("release from initiated: err = %v", err)
	}
	held, changed, err := p.Hold(t0)
	if err != nil || !changed || held.Status != PaymentHeld {
		t.Fatalf("hold: %v %v %s", changed, err, held.Status)
	}
	released, changed, err := held.Release(t0)
	if err != nil || !changed || released.Status != PaymentReleased {
		t.Fatalf("release: %v %v %s", changed, err, released.Status)
	}
	if _, changed, err := released.Release(t0); err != nil || changed {
		t.Fatalf("repeat release: changed=%v err=%v", changed, err)
	}
	if _, _, err := released.Refund(t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("refund after release: err = %v", err)
	}
	if _, _, err := released.Hold(t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("hold after release: err = %v", err)
	}
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	if !verr.Empty() {
		t.Fatal("new error must be empty")
	}
	verr.Add("amount", "must be positive")
	verr.Add("payer_id", "is required")
	if !errors.Is(verr, ErrValidation) {
		t.Fatal("ValidationError must match ErrValidation")
	}
	want := "validation failed: amount: must be positive; payer_id: is required"
	if verr.Error() != want {
		t.Errorf("Error() = %q, want %q", verr.Error(), want)
	}
}
