package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowModel struct {
	ID          string          `gorm:"primaryKey;size:32"`
	PayerID     string          `gorm:"size:64;not null;index"`
	ReceiverID  string          `gorm:"size:64;not null;index"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null;check:escrow_amount_positive,amount > 0"`
	Description string          `gorm:"type:text;not null;default:''"`
	ServiceID   *string         `gorm:"type:uuid"`
	Status      string          `gorm:"size:16;not null"`
	Released    bool            `gorm:"not null;default:false"`
	Disputed    bool            `gorm:"not null;default:false"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"not null;index"`
	ReleaseAt   time.Time       `gorm:"not null;index:idx_escrow_due,where:status = 'pending' AND released = false AND disputed = false"`
	ReleasedAt  *time.Time      `gorm:"check:escrow_single_settlement,released_at IS NULL OR refunded_at IS NULL"`
	RefundedAt  *time.Time
	UpdatedAt   time.Time
}

func (EscrowModel) TableName() string {
	return "escrow_transactions"
}
