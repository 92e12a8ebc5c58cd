package mappers

import (
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/models"
)

func ToDomainEscrow(model *models.EscrowModel) *domain.EscrowTransaction {
	return &domain.EscrowTransaction{
		ID:          model.ID,
		PayerID:     model.PayerID,
		ReceiverID:  model.ReceiverID,
		Amount:      model.Amount,
		Description: model.Description,
		ServiceID:   model.ServiceID,
		Status:      domain.EscrowStatus(model.Status),
		CreatedAt:   model.CreatedAt.UTC(),
		ReleaseAt:   model.ReleaseAt.UTC(),
		ReleasedAt:  utcPtr(model.ReleasedAt),
		RefundedAt:  utcPtr(model.RefundedAt),
		Released:    model.Released,
		Disputed:    model.Disputed,
		Version:     model.Version,
		UpdatedAt:   model.UpdatedAt.UTC(),
	}
}

func ToGORMEscrow(escrow *domain.EscrowTransaction) *models.EscrowModel {
	return &models.EscrowModel{
		ID:          escrow.ID,
		PayerID:     escrow.PayerID,
		ReceiverID:  escrow.ReceiverID,
		Amount:      escrow.Amount,
		Description: escrow.Description,
		ServiceID:   escrow.ServiceID,
		Status:      string(escrow.Status),
		Released:    escrow.Released,
		Disputed:    escrow.Disputed,
		Version:     escrow.Version,
		CreatedAt:   escrow.CreatedAt,
		ReleaseAt:   escrow.ReleaseAt,
		ReleasedAt:  escrow.ReleasedAt,
		RefundedAt:  escrow.RefundedAt,
		UpdatedAt:   escrow.UpdatedAt,
	}
}

// ToEscrowUpdates lists the mutable columns; maps keep zero values in the UPDATE.
func ToEscrowUpdates(escrow *domain.EscrowTransaction) map[string]interface{} {
	return map[string]interface{}{
		"status":      string(escrow.Status),
		"released":    escrow.Released,
		"disputed":    escrow.Disputed,
		"released_at": escrow.ReleasedAt,
		"refunded_at": escrow.RefundedAt,
		"version":     escrow.Version,
		"updated_at":  escrow.UpdatedAt,
	}
}
