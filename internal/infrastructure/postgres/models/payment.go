package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentModel struct {
	ID        string          `gorm:"primaryKey;size:32"`
	BookingID string          `gorm:"size:64;not null;uniqueIndex"`
	PayerID   string          `gorm:"size:64;not null"`
	PayeeID   string          `gorm:"size:64;not null;default:''"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null;check:payment_amount_positive,amount > 0"`
	Status    string          `gorm:"size:16;not null"`
	Version   int64           `gorm:"not null;default:1"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time
}

func (PaymentModel) TableName() string {
	return "payment_transactions"
}
