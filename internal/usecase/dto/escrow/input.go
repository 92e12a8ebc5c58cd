package escrowdto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateEscrowInput struct {
	PayerID     string          `validate:"required,max=64"`
	ReceiverID  string          `validate:"required,max=64,nefield=PayerID"`
	Amount      decimal.Decimal `validate:"gt=0"`
	Description string          `validate:"max=2000"`
	ServiceID   *string         `validate:"omitempty,uuid"`
	// ReleaseAt overrides the default hold period when set.
	ReleaseAt *time.Time
}

type ListEscrowsInput struct {
	Status     *string
	PayerID    *string
	ReceiverID *string
	Page       int64
	Limit      int64
}
