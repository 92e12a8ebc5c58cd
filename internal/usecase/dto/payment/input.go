package paymentdto

import (
	"github.com/shopspring/decimal"
)

type InitiatePaymentInput struct {
	BookingID string          `validate:"required,max=64"`
	PayerID   string          `validate:"required,max=64"`
	PayeeID   string          `validate:"omitempty,max=64,nefield=PayerID"`
	Amount    decimal.Decimal `validate:"gt=0"`
}

type ListPaymentsInput struct {
	Status    *string
	BookingID *string
	PayerID   *string
	Page      int64
	Limit     int64
}
