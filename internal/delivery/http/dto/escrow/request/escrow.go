package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEscrowRequest accepts amount as a JSON string or number.
type CreateEscrowRequest struct {
	PayerID     string          `json:"payer_id"`
	ReceiverID  string          `json:"receiver_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ServiceID   *string         `json:"service_id,omitempty"`
	ReleaseAt   *time.Time      `json:"release_at,omitempty"`
}

type ListEscrowsQuery struct {
	Status     string `query:"status"`
	PayerID    string `query:"payer_id"`
	ReceiverID string `query:"receiver_id"`
	Page       int64  `query:"page"`
	Limit      int64  `query:"limit"`
}
