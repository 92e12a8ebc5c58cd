package escrow

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/escrow"
	"github.com/shopspring/decimal"
)

func (uc *DefaultEscrowUsecase) GetEscrowByID(ctx context.Context, actor domain.Identity, escrowID string) (*domain.EscrowTransaction, error) {
	if !actor.IsAuthenticated {
		return nil, domain.ErrUnauthorized
	}
	escrow, err := uc.escrowRepo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if err := requireStaffOrParty(actor, escrow); err != nil {
		return nil, err
	}
	return escrow, nil
}

func (uc *DefaultEscrowUsecase) ListEscrows(ctx context.Context, actor domain.Identity, input *escrowdto.ListEscrowsInput) (*escrowdto.ListEscrowsOutput, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	filter, err := buildEscrowFilter(input)
	if err != nil {
		return nil, err
	}
	return uc.listEscrows(ctx, filter)
}

// ListMyEscrows lists the transactions where the caller is payer or receiver.
func (uc *DefaultEscrowUsecase) ListMyEscrows(ctx context.Context, actor domain.Identity, input *escrowdto.ListEscrowsInput) (*escrowdto.ListEscrowsOutput, error) {
	if !actor.IsAuthenticated || actor.SubjectID == "" {
		return nil, domain.ErrUnauthorized
	}
	filter, err := buildEscrowFilter(input)
	if err != nil {
		return nil, err
	}
	subject := actor.SubjectID
	filter.PayerID = nil
	filter.ReceiverID = nil
	filter.PartyID = &subject
	return uc.listEscrows(ctx, filter)
}

func (uc *DefaultEscrowUsecase) listEscrows(ctx context.Context, filter domain.EscrowFilter) (*escrowdto.ListEscrowsOutput, error) {
	escrows, total, err := uc.escrowRepo.ListEscrows(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &escrowdto.ListEscrowsOutput{
		Escrows:    escrows,
		Pagination: escrowdto.NewPagination(int64(filter.Page), int64(filter.Limit), total),
	}, nil
}

func buildEscrowFilter(input *escrowdto.ListEscrowsInput) (domain.EscrowFilter, error) {
	if input == nil {
		input = &escrowdto.ListEscrowsInput{}
	}
	page, limit := escrowdto.NormalizePage(input.Page, input.Limit)
	filter := domain.EscrowFilter{
		PayerID:    input.PayerID,
		ReceiverID: input.ReceiverID,
		Page:       int(page),
		Limit:      int(limit),
	}
	if input.Status != nil && *input.Status != "" {
		status := domain.EscrowStatus(*input.Status)
		if !status.Valid() {
			return filter, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", *input.Status))
		}
		filter.Status = &status
	}
	return filter, nil
}

// GetSummary aggregates held, released, refunded and disputed amounts across
// escrow transactions, plus the payment totals.
func (uc *DefaultEscrowUsecase) GetSummary(ctx context.Context, actor domain.Identity) (*domain.EscrowSummary, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	totals, err := uc.escrowRepo.GetEscrowTotals(ctx)
	if err != nil {
		return nil, err
	}
	summary := &domain.EscrowSummary{
		HeldTotal:             decimal.Zero,
		ReleasedTotal:         decimal.Zero,
		RefundedTotal:         decimal.Zero,
		DisputedTotal:         decimal.Zero,
		CountByStatus:         make(map[domain.EscrowStatus]int64),
		PaymentsHeldTotal:     decimal.Zero,
		PaymentsReleasedTotal: decimal.Zero,
		CalculatedAt:          uc.clock.Now(),
	}
	for _, t := range totals {
		summary.CountByStatus[t.Status] += t.Count
		switch t.Status {
		case domain.EscrowPending:
			summary.HeldTotal = summary.HeldTotal.Add(t.Amount)
		case domain.EscrowDisputed:
			// disputed funds are still held
			summary.HeldTotal = summary.HeldTotal.Add(t.Amount)
			summary.DisputedTotal = summary.DisputedTotal.Add(t.Amount)
		case domain.EscrowReleased:
			summary.ReleasedTotal = summary.ReleasedTotal.Add(t.Amount)
		case domain.EscrowRefunded:
			summary.RefundedTotal = summary.RefundedTotal.Add(t.Amount)
		}
	}

	if uc.paymentRepo == nil {
		return summary, nil
	}
	paymentTotals, err := uc.paymentRepo.GetPaymentTotals(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range paymentTotals {
		switch t.Status {
		case domain.PaymentHeld:
			summary.PaymentsHeldTotal = summary.PaymentsHeldTotal.Add(t.Amount)
		case domain.PaymentReleased:
			summary.PaymentsReleasedTotal = summary.PaymentsReleasedTotal.Add(t.Amount)
		}
	}
	return summary, nil
}
