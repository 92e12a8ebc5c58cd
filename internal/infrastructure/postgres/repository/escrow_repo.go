package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DefaultEscrowRepository struct {
	db *gorm.DB
}

func NewDefaultEscrowRepository(db *gorm.DB) *DefaultEscrowRepository {
	return &DefaultEscrowRepository{db: db}
}

func (r *DefaultEscrowRepository) CreateEscrow(ctx context.Context, escrow *domain.EscrowTransaction) error {
	escrowModel := mappers.ToGORMEscrow(escrow)
	if err := r.db.WithContext(ctx).Create(escrowModel).Error; err != nil {
		return translate(err, "escrow", escrow.ID)
	}
	return nil
}

func (r *DefaultEscrowRepository) GetEscrowByID(ctx context.Context, escrowID string) (*domain.EscrowTransaction, error) {
	var escrowModel models.EscrowModel
	if err := r.db.WithContext(ctx).Where("id = ?", escrowID).First(&escrowModel).Error; err != nil {
		return nil, translate(err, "escrow", escrowID)
	}
	return mappers.ToDomainEscrow(&escrowModel), nil
}

// UpdateEscrowConditional is a compare-and-set on (status, version).
func (r *DefaultEscrowRepository) UpdateEscrowConditional(ctx context.Context, next *domain.EscrowTransaction, expectedStatus domain.EscrowStatus, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.EscrowModel{}).
		Where("id = ? AND status = ? AND version = ?", next.ID, string(expectedStatus), expectedVersion).
		Updates(mappers.ToEscrowUpdates(next))
	if res.Error != nil {
		return translate(res.Error, "escrow", next.ID)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.EscrowModel{}).Where("id = ?", next.ID).Count(&count).Error; err != nil {
			return translate(err, "escrow", next.ID)
		}
		if count == 0 {
			return fmt.Errorf("escrow %s: %w", next.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("escrow %s: %w", next.ID, domain.ErrConcurrencyConflict)
	}
	return nil
}

func (r *DefaultEscrowRepository) FindDueReleases(ctx context.Context, now time.Time, limit int) ([]*domain.EscrowTransaction, error) {
	var escrowModels []models.EscrowModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.EscrowPending)).
		Where("released = ? AND disputed = ?", false, false).
		Where("release_at <= ?", now).
		Order("release_at ASC, id ASC").
		Limit(limit).
		Find(&escrowModels).Error; err != nil {
		return nil, fmt.Errorf("failed to find due escrows: %w", err)
	}
	escrows := make([]*domain.EscrowTransaction, len(escrowModels))
	for i := range escrowModels {
		escrows[i] = mappers.ToDomainEscrow(&escrowModels[i])
	}
	return escrows, nil
}

func (r *DefaultEscrowRepository) ListEscrows(ctx context.Context, filter domain.EscrowFilter) ([]*domain.EscrowTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.EscrowModel{})

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.PayerID != nil {
		query = query.Where("payer_id = ?", *filter.PayerID)
	}
	if filter.ReceiverID != nil {
		query = query.Where("receiver_id = ?", *filter.ReceiverID)
	}
	if filter.PartyID != nil {
		query = query.Where("payer_id = ? OR receiver_id = ?", *filter.PartyID, *filter.PartyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	if filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		query = query.Offset(offset).Limit(filter.Limit)
	}

	var escrowModels []models.EscrowModel
	if err := query.Order("created_at DESC, id DESC").Find(&escrowModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find escrow models: %w", err)
	}

	escrows := make([]*domain.EscrowTransaction, len(escrowModels))
	for i := range escrowModels {
		escrows[i] = mappers.ToDomainEscrow(&escrowModels[i])
	}
	return escrows, total, nil
}

type statusTotalRow struct {
	Status string
	Count  int64
	Amount decimal.Decimal
}

func (r *DefaultEscrowRepository) GetEscrowTotals(ctx context.Context) ([]domain.EscrowTotal, error) {
	var rows []statusTotalRow
	if err := r.db.WithContext(ctx).
		Model(&models.EscrowModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate escrows: %w", err)
	}
	totals := make([]domain.EscrowTotal, len(rows))
	for i, row := range rows {
		totals[i] = domain.EscrowTotal{Status: domain.EscrowStatus(row.Status), Count: row.Count, Amount: row.Amount}
	}
	return totals, nil
}
