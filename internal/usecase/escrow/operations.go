package escrow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/google/uuid"
)

const (
	OperationRelease     = "release"
	OperationAutoRelease = "auto_release"
	OperationRefund      = "refund"
	OperationDispute     = "dispute"
)

type transitionFunc func(e domain.EscrowTransaction, now time.Time) (domain.EscrowTransaction, bool, error)

// EscrowOperation describes a single state change of one escrow transaction.
type EscrowOperation struct {
	EscrowID  string
	Operation string
	EventType string
	Actor     domain.Identity
	Now       time.Time
	Apply     transitionFunc
	// Authorize runs against the loaded record before any change.
	Authorize func(e *domain.EscrowTransaction) error
	// Loaded skips the initial read when the caller already holds the record.
	Loaded *domain.EscrowTransaction
}

// ProcessEscrowOperation applies op with a conditional write. changed is false
// when the record was already in the target state.
func (uc *DefaultEscrowUsecase) ProcessEscrowOperation(ctx context.Context, op *EscrowOperation) (*domain.EscrowTransaction, bool, error) {
	current := op.Loaded
	if current == nil {
		var err error
		current, err = uc.escrowRepo.GetEscrowByID(ctx, op.EscrowID)
		if err != nil {
			return nil, false, err
		}
	}
	if op.Authorize != nil {
		if err := op.Authorize(current); err != nil {
			return nil, false, err
		}
	}

	next, changed, err := uc.processCriticalOperation(ctx, current, op)
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		// lost the race: decide against the winner's state
		fresh, getErr := uc.escrowRepo.GetEscrowByID(ctx, op.EscrowID)
		if getErr != nil {
			return nil, false, getErr
		}
		next, changed, err = op.Apply(*fresh, op.Now)
		if err == nil && changed {
			err = fmt.Errorf("%s escrow %s: %w", op.Operation, op.EscrowID, domain.ErrConcurrencyConflict)
		}
	}
	if err != nil {
		uc.recordTransition(op.Operation, err)
		return nil, false, err
	}
	uc.recordTransition(op.Operation, nil)
	if changed {
		uc.scheduleNonCriticalOperations(ctx, op, current.Status, &next)
	}
	return &next, changed, nil
}

func (uc *DefaultEscrowUsecase) processCriticalOperation(ctx context.Context, current *domain.EscrowTransaction, op *EscrowOperation) (domain.EscrowTransaction, bool, error) {
	next, changed, err := op.Apply(*current, op.Now)
	if err != nil || !changed {
		return next, changed, err
	}
	if err := uc.escrowRepo.UpdateEscrowConditional(ctx, &next, current.Status, current.Version); err != nil {
		return next, false, err
	}
	return next, true, nil
}

// scheduleNonCriticalOperations publishes the event and writes the audit entry.
// Failures are logged only; the transition is already durable.
func (uc *DefaultEscrowUsecase) scheduleNonCriticalOperations(ctx context.Context, op *EscrowOperation, oldStatus domain.EscrowStatus, e *domain.EscrowTransaction) {
	uc.publishEscrowEvent(ctx, op.EventType, op.Actor, e)

	if uc.auditLogger != nil {
		entry := domain.AuditEntry{
			Entity:     "escrow",
			EntityID:   e.ID,
			Operation:  op.Operation,
			OldStatus:  string(oldStatus),
			NewStatus:  string(e.Status),
			ActorID:    op.Actor.SubjectID,
			OccurredAt: op.Now,
		}
		if err := uc.auditLogger.LogTransition(ctx, entry); err != nil {
			uc.logger.Error("failed to write audit entry", "escrow_id", e.ID, "operation", op.Operation, "error", err)
		}
	}

	if uc.Metrics == nil {
		return
	}
	amount := e.Amount.InexactFloat64()
	switch op.Operation {
	case OperationRelease:
		uc.Metrics.RecordEscrowReleased("manual", amount)
	case OperationAutoRelease:
		uc.Metrics.RecordEscrowReleased("auto", amount)
	case OperationRefund:
		uc.Metrics.RecordEscrowRefunded(amount)
	}
}

func (uc *DefaultEscrowUsecase) publishEscrowEvent(ctx context.Context, eventType string, actor domain.Identity, e *domain.EscrowTransaction) {
	if uc.publisher == nil {
		return
	}
	event := domain.EscrowEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		EscrowID:   e.ID,
		PayerID:    e.PayerID,
		ReceiverID: e.ReceiverID,
		Amount:     e.Amount.StringFixed(2),
		Status:     string(e.Status),
		ActorID:    actor.SubjectID,
		OccurredAt: e.UpdatedAt,
	}
	value, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to marshal escrow event", "escrow_id", e.ID, "error", err)
		return
	}
	msg := domain.Message{Key: []byte(e.ID), Value: value, Type: eventType}
	if err := uc.publisher.Publish(ctx, msg); err != nil {
		uc.logger.Error("failed to publish escrow event", "escrow_id", e.ID, "event_type", eventType, "error", err)
		if uc.Metrics != nil {
			uc.Metrics.RecordPublishError(eventType)
		}
	}
}

func (uc *DefaultEscrowUsecase) recordTransition(operation string, err error) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordEscrowTransition(operation, resultLabel(err))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthorized):
		return "denied"
	default:
		return "error"
	}
}
