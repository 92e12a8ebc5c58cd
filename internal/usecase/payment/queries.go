package payment

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/escrow"
	paymentdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/payment"
)

func (uc *DefaultPaymentUsecase) GetPaymentByID(ctx context.Context, actor domain.Identity, paymentID string) (*domain.PaymentTransaction, error) {
	if !actor.IsAuthenticated {
		return nil, domain.ErrUnauthorized
	}
	payment, err := uc.paymentRepo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && !payment.IsParty(actor.SubjectID) {
		return nil, domain.ErrForbidden
	}
	return payment, nil
}

func (uc *DefaultPaymentUsecase) GetPaymentByBookingID(ctx context.Context, actor domain.Identity, bookingID string) (*domain.PaymentTransaction, error) {
	if !actor.IsAuthenticated {
		return nil, domain.ErrUnauthorized
	}
	payment, err := uc.paymentRepo.GetPaymentByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && !payment.IsParty(actor.SubjectID) {
		return nil, domain.ErrForbidden
	}
	return payment, nil
}

func (uc *DefaultPaymentUsecase) ListPayments(ctx context.Context, actor domain.Identity, input *paymentdto.ListPaymentsInput) (*paymentdto.ListPaymentsOutput, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if input == nil {
		input = &paymentdto.ListPaymentsInput{}
	}
	page, limit := escrowdto.NormalizePage(input.Page, input.Limit)
	filter := domain.PaymentFilter{
		BookingID: input.BookingID,
		PayerID:   input.PayerID,
		Page:      int(page),
		Limit:     int(limit),
	}
	if input.Status != nil && *input.Status != "" {
		status := domain.PaymentStatus(*input.Status)
		if !status.Valid() {
			return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", *input.Status))
		}
		filter.Status = &status
	}
	payments, total, err := uc.paymentRepo.ListPayments(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &paymentdto.ListPaymentsOutput{
		Payments:   payments,
		Pagination: escrowdto.NewPagination(page, limit, total),
	}, nil
}
