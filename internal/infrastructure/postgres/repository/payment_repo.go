package repository

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPaymentRepository struct {
	db *gorm.DB
}

func NewDefaultPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{db: db}
}

// CreatePayment relies on the unique booking_id index to reject a second payment.
func (r *DefaultPaymentRepository) CreatePayment(ctx context.Context, payment *domain.PaymentTransaction) error {
	if err := r.db.WithContext(ctx).Create(mappers.ToGORMPayment(payment)).Error; err != nil {
		return translate(err, "payment for booking", payment.BookingID)
	}
	return nil
}

func (r *DefaultPaymentRepository) GetPaymentByID(ctx context.Context, paymentID string) (*domain.PaymentTransaction, error) {
	var paymentModel models.PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", paymentID).First(&paymentModel).Error; err != nil {
		return nil, translate(err, "payment", paymentID)
	}
	return mappers.ToDomainPayment(&paymentModel), nil
}

func (r *DefaultPaymentRepository) GetPaymentByBookingID(ctx context.Context, bookingID string) (*domain.PaymentTransaction, error) {
	var paymentModel models.PaymentModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&paymentModel).Error; err != nil {
		return nil, translate(err, "payment for booking", bookingID)
	}
	return mappers.ToDomainPayment(&paymentModel), nil
}

func (r *DefaultPaymentRepository) UpdatePaymentConditional(ctx context.Context, next *domain.PaymentTransaction, expectedStatus domain.PaymentStatus, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ? AND status = ? AND version = ?", next.ID, string(expectedStatus), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(next.Status),
			"version":    next.Version,
			"updated_at": next.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error, "payment", next.ID)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetPaymentByID(ctx, next.ID); err != nil {
			return err
		}
		return fmt.Errorf("payment %s: %w", next.ID, domain.ErrConcurrencyConflict)
	}
	return nil
}

func (r *DefaultPaymentRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.PaymentTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.PayerID != nil {
		query = query.Where("payer_id = ?", *filter.PayerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}
	if filter.Limit > 0 {
		query = query.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var paymentModels []models.PaymentModel
	if err := query.Order("created_at DESC, id DESC").Find(&paymentModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find payment models: %w", err)
	}
	payments := make([]*domain.PaymentTransaction, len(paymentModels))
	for i := range paymentModels {
		payments[i] = mappers.ToDomainPayment(&paymentModels[i])
	}
	return payments, total, nil
}

func (r *DefaultPaymentRepository) GetPaymentTotals(ctx context.Context) ([]domain.PaymentTotal, error) {
	var rows []statusTotalRow
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	totals := make([]domain.PaymentTotal, len(rows))
	for i, row := range rows {
		totals[i] = domain.PaymentTotal{Status: domain.PaymentStatus(row.Status), Count: row.Count, Amount: row.Amount}
	}
	return totals, nil
}
