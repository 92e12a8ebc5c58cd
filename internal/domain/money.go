package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const AmountScale = 2

// MaxAmount is the smallest amount that no longer fits numeric(20,2).
var MaxAmount = decimal.New(1, 18)

// ValidateAmount checks that amount is positive, has at most AmountScale
// decimal places and fits the storage column.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return NewValidationError("amount", "must be greater than 0")
	case !amount.Equal(amount.Round(AmountScale)):
		return NewValidationError("amount", fmt.Sprintf("must have at most %d decimal places", AmountScale))
	case amount.GreaterThanOrEqual(MaxAmount):
		return NewValidationError("amount", fmt.Sprintf("must be less than %s", MaxAmount.String()))
	}
	return nil
}
