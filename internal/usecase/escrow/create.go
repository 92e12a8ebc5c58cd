package escrow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/escrow"
	"github.com/jaevor/go-nanoid"
)

func (uc *DefaultEscrowUsecase) CreateEscrow(ctx context.Context, actor domain.Identity, input *escrowdto.CreateEscrowInput) (*domain.EscrowTransaction, error) {
	if err := requireStaff(actor); err != nil {
		uc.recordTransition("create", err)
		return nil, err
	}
	if err := uc.validator.Struct(input); err != nil {
		uc.recordTransition("create", err)
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.recordTransition("create", err)
		return nil, err
	}

	now := uc.clock.Now()
	releaseAt := now.Add(domain.DefaultHoldPeriod)
	if input.ReleaseAt != nil {
		if input.ReleaseAt.Before(now) {
			verr := domain.NewValidationError("release_at", "must not be in the past")
			uc.recordTransition("create", verr)
			return nil, verr
		}
		releaseAt = input.ReleaseAt.UTC()
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	escrow := &domain.EscrowTransaction{
		ID:          idGenerator(),
		PayerID:     input.PayerID,
		ReceiverID:  input.ReceiverID,
		Amount:      input.Amount,
		Description: input.Description,
		ServiceID:   input.ServiceID,
		Status:      domain.EscrowPending,
		CreatedAt:   now,
		ReleaseAt:   releaseAt,
		Version:     1,
		UpdatedAt:   now,
	}
	if err := uc.escrowRepo.CreateEscrow(ctx, escrow); err != nil {
		uc.recordTransition("create", err)
		return nil, err
	}
	uc.recordTransition("create", nil)

	uc.logger.Info("escrow created",
		slog.String("escrow_id", escrow.ID),
		slog.String("amount", escrow.Amount.String()),
		slog.Time("release_at", escrow.ReleaseAt),
	)
	uc.afterCreate(ctx, actor, escrow)
	return escrow, nil
}

func (uc *DefaultEscrowUsecase) afterCreate(ctx context.Context, actor domain.Identity, escrow *domain.EscrowTransaction) {
	uc.publishEscrowEvent(ctx, domain.EventEscrowCreated, actor, escrow)
	if uc.auditLogger != nil {
		entry := domain.AuditEntry{
			Entity:     "escrow",
			EntityID:   escrow.ID,
			Operation:  "create",
			NewStatus:  string(escrow.Status),
			ActorID:    actor.SubjectID,
			OccurredAt: escrow.CreatedAt,
		}
		if err := uc.auditLogger.LogTransition(ctx, entry); err != nil {
			uc.logger.Error("failed to write audit entry", "escrow_id", escrow.ID, "operation", "create", "error", err)
		}
	}
	if uc.Metrics != nil {
		uc.Metrics.RecordEscrowCreated(escrow.Amount.InexactFloat64())
	}
}
