package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "initiated"
	PaymentHeld      PaymentStatus = "held"
	PaymentReleased  PaymentStatus = "released"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentInitiated, PaymentHeld, PaymentReleased, PaymentRefunded:
		return true
	}
	return false
}

// PaymentTransaction is the payment attached to a single booking.
type PaymentTransaction struct {
	ID        string
	BookingID string
	PayerID   string
	PayeeID   string
	Amount    decimal.Decimal
	Status    PaymentStatus
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *PaymentTransaction) IsTerminal() bool {
	return p.Status == PaymentReleased || p.Status == PaymentRefunded
}

func (p *PaymentTransaction) IsParty(subjectID string) bool {
	return subjectID != "" && (p.PayerID == subjectID || p.PayeeID == subjectID)
}

// Hold marks the funds as escrowed.
func (p PaymentTransaction) Hold(now time.Time) (PaymentTransaction, bool, error) {
	return p.transition(now, "hold", PaymentHeld, PaymentInitiated)
}

// Release pays out a held payment; no other source status is accepted.
func (p PaymentTransaction) Release(now time.Time) (PaymentTransaction, bool, error) {
	return p.transition(now, "release", PaymentReleased, PaymentHeld)
}

func (p PaymentTransaction) Refund(now time.Time) (PaymentTransaction, bool, error) {
	return p.transition(now, "refund", PaymentRefunded, PaymentInitiated, PaymentHeld)
}

func (p PaymentTransaction) transition(now time.Time, op string, target PaymentStatus, from ...PaymentStatus) (PaymentTransaction, bool, error) {
	if p.Status == target {
		return p, false, nil
	}
	for _, s := range from {
		if p.Status == s {
			p.Status = target
			p.Version++
			p.UpdatedAt = now
			return p, true, nil
		}
	}
	return p, false, &InvalidStateError{Entity: "payment", ID: p.ID, Operation: op, Current: string(p.Status)}
}

type PaymentFilter struct {
	Status    *PaymentStatus
	BookingID *string
	PayerID   *string
	Page      int
	Limit     int
}

type PaymentTotal struct {
	Status PaymentStatus
	Count  int64
	Amount decimal.Decimal
}

type PaymentRepository interface {
	// CreatePayment returns ErrAlreadyExists when the booking already has a payment.
	CreatePayment(ctx context.Context, payment *PaymentTransaction) error
	GetPaymentByID(ctx context.Context, paymentID string) (*PaymentTransaction, error)
	GetPaymentByBookingID(ctx context.Context, bookingID string) (*PaymentTransaction, error)
	UpdatePaymentConditional(ctx context.Context, next *PaymentTransaction, expectedStatus PaymentStatus, expectedVersion int64) error
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*PaymentTransaction, int64, error)
	GetPaymentTotals(ctx context.Context) ([]PaymentTotal, error)
}
