package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/google/uuid"
)

type PaymentOperation struct {
	PaymentID string
	Operation string
	EventType string
	Actor     domain.Identity
	Apply     func(p domain.PaymentTransaction, now time.Time) (domain.PaymentTransaction, bool, error)
}

func (uc *DefaultPaymentUsecase) HoldPayment(ctx context.Context, actor domain.Identity, paymentID string) (*domain.PaymentTransaction, error) {
	return uc.ProcessPaymentOperation(ctx, &PaymentOperation{
		PaymentID: paymentID,
		Operation: "hold",
		EventType: domain.EventPaymentHeld,
		Actor:     actor,
		Apply:     domain.PaymentTransaction.Hold,
	})
}

// ReleasePayment is accepted only for held payments.
func (uc *DefaultPaymentUsecase) ReleasePayment(ctx context.Context, actor domain.Identity, paymentID string) (*domain.PaymentTransaction, error) {
	return uc.ProcessPaymentOperation(ctx, &PaymentOperation{
		PaymentID: paymentID,
		Operation: "release",
		EventType: domain.EventPaymentReleased,
		Actor:     actor,
		Apply:     domain.PaymentTransaction.Release,
	})
}

func (uc *DefaultPaymentUsecase) RefundPayment(ctx context.Context, actor domain.Identity, paymentID string) (*domain.PaymentTransaction, error) {
	return uc.ProcessPaymentOperation(ctx, &PaymentOperation{
		PaymentID: paymentID,
		Operation: "refund",
		EventType: domain.EventPaymentRefunded,
		Actor:     actor,
		Apply:     domain.PaymentTransaction.Refund,
	})
}

// ProcessPaymentOperation runs a staff-only transition with a conditional write.
// A lost race is re-evaluated once against the stored record.
func (uc *DefaultPaymentUsecase) ProcessPaymentOperation(ctx context.Context, op *PaymentOperation) (*domain.PaymentTransaction, error) {
	if err := requireStaff(op.Actor); err != nil {
		uc.recordTransition(op.Operation, err)
		return nil, err
	}
	current, err := uc.paymentRepo.GetPaymentByID(ctx, op.PaymentID)
	if err != nil {
		uc.recordTransition(op.Operation, err)
		return nil, err
	}

	now := uc.clock.Now()
	next, changed, err := op.Apply(*current, now)
	if err == nil && changed {
		err = uc.paymentRepo.UpdatePaymentConditional(ctx, &next, current.Status, current.Version)
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			fresh, getErr := uc.paymentRepo.GetPaymentByID(ctx, op.PaymentID)
			if getErr != nil {
				return nil, getErr
			}
			next, changed, err = op.Apply(*fresh, now)
			if err == nil && changed {
				err = fmt.Errorf("%s payment %s: %w", op.Operation, op.PaymentID, domain.ErrConcurrencyConflict)
			}
			changed = false
		}
	}
	uc.recordTransition(op.Operation, err)
	if err != nil {
		return nil, err
	}
	if changed {
		uc.scheduleNonCriticalOperations(ctx, op.Operation, op.EventType, op.Actor, string(current.Status), &next)
	}
	return &next, nil
}

func (uc *DefaultPaymentUsecase) scheduleNonCriticalOperations(ctx context.Context, operation, eventType string, actor domain.Identity, oldStatus string, p *domain.PaymentTransaction) {
	if uc.publisher != nil {
		event := domain.PaymentEvent{
			EventID:    uuid.NewString(),
			EventType:  eventType,
			PaymentID:  p.ID,
			BookingID:  p.BookingID,
			PayerID:    p.PayerID,
			PayeeID:    p.PayeeID,
			Amount:     p.Amount.StringFixed(2),
			Status:     string(p.Status),
			ActorID:    actor.SubjectID,
			OccurredAt: p.UpdatedAt,
		}
		value, err := json.Marshal(event)
		if err != nil {
			uc.logger.Error("failed to marshal payment event", "payment_id", p.ID, "error", err)
		} else if err := uc.publisher.Publish(ctx, domain.Message{Key: []byte(p.BookingID), Value: value, Type: eventType}); err != nil {
			uc.logger.Error("failed to publish payment event", "payment_id", p.ID, "event_type", eventType, "error", err)
			if uc.Metrics != nil {
				uc.Metrics.RecordPublishError(eventType)
			}
		}
	}

	if uc.auditLogger != nil {
		entry := domain.AuditEntry{
			Entity:     "payment",
			EntityID:   p.ID,
			Operation:  operation,
			OldStatus:  oldStatus,
			NewStatus:  string(p.Status),
			ActorID:    actor.SubjectID,
			OccurredAt: p.UpdatedAt,
		}
		if err := uc.auditLogger.LogTransition(ctx, entry); err != nil {
			uc.logger.Error("failed to write audit entry", "payment_id", p.ID, "operation", operation, "error", err)
		}
	}
}

func (uc *DefaultPaymentUsecase) recordTransition(operation string, err error) {
	if uc.Metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidState):
		result = "invalid_state"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		result = "conflict"
	case errors.Is(err, domain.ErrAlreadyExists):
		result = "duplicate"
	case errors.Is(err, domain.ErrNotFound):
		result = "not_found"
	case errors.Is(err, domain.ErrValidation):
		result = "validation"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthorized):
		result = "denied"
	default:
		result = "error"
	}
	uc.Metrics.RecordPaymentTransition(operation, result)
}
