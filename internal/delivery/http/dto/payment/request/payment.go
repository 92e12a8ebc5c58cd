package request

import "github.com/shopspring/decimal"

type InitiatePaymentRequest struct {
	BookingID string          `json:"booking_id"`
	PayerID   string          `json:"payer_id,omitempty"`
	PayeeID   string          `json:"payee_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

type ListPaymentsQuery struct {
	Status    string `query:"status"`
	BookingID string `query:"booking_id"`
	PayerID   string `query:"payer_id"`
	Page      int64  `query:"page"`
	Limit     int64  `query:"limit"`
}
