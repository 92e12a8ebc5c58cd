package escrow

import (
	"context"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
)

// ReleaseEscrow pays a pending transaction out to the receiver ahead of release_at.
// Releasing an already released transaction returns it unchanged.
func (uc *DefaultEscrowUsecase) ReleaseEscrow(ctx context.Context, actor domain.Identity, escrowID string) (*domain.EscrowTransaction, error) {
	if err := requireStaff(actor); err != nil {
		uc.recordTransition(OperationRelease, err)
		return nil, err
	}
	escrow, _, err := uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  escrowID,
		Operation: OperationRelease,
		EventType: domain.EventEscrowReleased,
		Actor:     actor,
		Now:       uc.clock.Now(),
		Apply:     domain.EscrowTransaction.Release,
	})
	if err != nil {
		return nil, err
	}
	return escrow, nil
}

// RefundEscrow returns the funds to the payer. Disputed transactions leave
// the disputed state only through here.
func (uc *DefaultEscrowUsecase) RefundEscrow(ctx context.Context, actor domain.Identity, escrowID string) (*domain.EscrowTransaction, error) {
	if err := requireStaff(actor); err != nil {
		uc.recordTransition(OperationRefund, err)
		return nil, err
	}
	escrow, _, err := uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  escrowID,
		Operation: OperationRefund,
		EventType: domain.EventEscrowRefunded,
		Actor:     actor,
		Now:       uc.clock.Now(),
		Apply:     domain.EscrowTransaction.Refund,
	})
	if err != nil {
		return nil, err
	}
	return escrow, nil
}

// DisputeEscrow may be raised by staff or by either party.
func (uc *DefaultEscrowUsecase) DisputeEscrow(ctx context.Context, actor domain.Identity, escrowID string) (*domain.EscrowTransaction, error) {
	if !actor.IsAuthenticated {
		uc.recordTransition(OperationDispute, domain.ErrUnauthorized)
		return nil, domain.ErrUnauthorized
	}
	escrow, changed, err := uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  escrowID,
		Operation: OperationDispute,
		EventType: domain.EventEscrowDisputed,
		Actor:     actor,
		Now:       uc.clock.Now(),
		Apply:     domain.EscrowTransaction.Dispute,
		Authorize: func(e *domain.EscrowTransaction) error {
			return requireStaffOrParty(actor, e)
		},
	})
	if err != nil {
		return nil, err
	}
	if changed {
		uc.logger.Warn("escrow disputed", "escrow_id", escrow.ID, "actor_id", actor.SubjectID)
	}
	return escrow, nil
}
