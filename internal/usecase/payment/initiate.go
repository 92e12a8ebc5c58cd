package payment

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/payment"
	"github.com/jaevor/go-nanoid"
)

// InitiatePayment opens the payment for a booking. Non-staff callers may
// only pay for themselves.
func (uc *DefaultPaymentUsecase) InitiatePayment(ctx context.Context, actor domain.Identity, input *paymentdto.InitiatePaymentInput) (*domain.PaymentTransaction, error) {
	if !actor.IsAuthenticated {
		uc.recordTransition("initiate", domain.ErrUnauthorized)
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsStaff {
		if input.PayerID == "" {
			input.PayerID = actor.SubjectID
		}
		if input.PayerID != actor.SubjectID {
			uc.recordTransition("initiate", domain.ErrForbidden)
			return nil, domain.ErrForbidden
		}
	}
	if err := uc.validator.Struct(input); err != nil {
		uc.recordTransition("initiate", err)
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.recordTransition("initiate", err)
		return nil, err
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	now := uc.clock.Now()
	payment := &domain.PaymentTransaction{
		ID:        idGenerator(),
		BookingID: input.BookingID,
		PayerID:   input.PayerID,
		PayeeID:   input.PayeeID,
		Amount:    input.Amount,
		Status:    domain.PaymentInitiated,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.paymentRepo.CreatePayment(ctx, payment); err != nil {
		uc.recordTransition("initiate", err)
		return nil, err
	}
	uc.recordTransition("initiate", nil)
	uc.logger.Info("payment initiated", "payment_id", payment.ID, "booking_id", payment.BookingID)
	uc.scheduleNonCriticalOperations(ctx, "initiate", domain.EventPaymentInitiated, actor, "", payment)
	return payment, nil
}
