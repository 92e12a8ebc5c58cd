package mappers

import (
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/models"
)

func ToDomainPayment(model *models.PaymentModel) *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:        model.ID,
		BookingID: model.BookingID,
		PayerID:   model.PayerID,
		PayeeID:   model.PayeeID,
		Amount:    model.Amount,
		Status:    domain.PaymentStatus(model.Status),
		Version:   model.Version,
		CreatedAt: model.CreatedAt.UTC(),
		UpdatedAt: model.UpdatedAt.UTC(),
	}
}

func ToGORMPayment(payment *domain.PaymentTransaction) *models.PaymentModel {
	return &models.PaymentModel{
		ID:        payment.ID,
		BookingID: payment.BookingID,
		PayerID:   payment.PayerID,
		PayeeID:   payment.PayeeID,
		Amount:    payment.Amount,
		Status:    string(payment.Status),
		Version:   payment.Version,
		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.UpdatedAt,
	}
}

func ToGORMAuditEntry(entry domain.AuditEntry) *models.AuditEntryModel {
	return &models.AuditEntryModel{
		Entity:     entry.Entity,
		EntityID:   entry.EntityID,
		Operation:  entry.Operation,
		OldStatus:  entry.OldStatus,
		NewStatus:  entry.NewStatus,
		ActorID:    entry.ActorID,
		OccurredAt: entry.OccurredAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
