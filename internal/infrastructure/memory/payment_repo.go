package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
)

type PaymentRepository struct {
	mu        sync.RWMutex
	payments  map[string]*domain.PaymentTransaction
	byBooking map[string]string
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments:  make(map[string]*domain.PaymentTransaction),
		byBooking: make(map[string]string),
	}
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *domain.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byBooking[payment.BookingID]; ok {
		return fmt.Errorf("payment for booking %s: %w", payment.BookingID, domain.ErrAlreadyExists)
	}
	if _, ok := r.payments[payment.ID]; ok {
		return fmt.Errorf("payment %s: %w", payment.ID, domain.ErrAlreadyExists)
	}
	c := *payment
	r.payments[payment.ID] = &c
	r.byBooking[payment.BookingID] = payment.ID
	return nil
}

func (r *PaymentRepository) GetPaymentByID(ctx context.Context, paymentID string) (*domain.PaymentTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", paymentID, domain.ErrNotFound)
	}
	c := *payment
	return &c, nil
}

func (r *PaymentRepository) GetPaymentByBookingID(ctx context.Context, bookingID string) (*domain.PaymentTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBooking[bookingID]
	if !ok {
		return nil, fmt.Errorf("payment for booking %s: %w", bookingID, domain.ErrNotFound)
	}
	c := *r.payments[id]
	return &c, nil
}

func (r *PaymentRepository) UpdatePaymentConditional(ctx context.Context, next *domain.PaymentTransaction, expectedStatus domain.PaymentStatus, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.payments[next.ID]
	if !ok {
		return fmt.Errorf("payment %s: %w", next.ID, domain.ErrNotFound)
	}
	if stored.Status != expectedStatus || stored.Version != expectedVersion {
		return fmt.Errorf("payment %s: %w", next.ID, domain.ErrConcurrencyConflict)
	}
	c := *next
	r.payments[next.ID] = &c
	return nil
}

func (r *PaymentRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.PaymentTransaction, int64, error) {
	r.mu.RLock()
	var matched []*domain.PaymentTransaction
	for _, p := range r.payments {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.BookingID != nil && p.BookingID != *filter.BookingID {
			continue
		}
		if filter.PayerID != nil && p.PayerID != *filter.PayerID {
			continue
		}
		c := *p
		matched = append(matched, &c)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

func (r *PaymentRepository) GetPaymentTotals(ctx context.Context) ([]domain.PaymentTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byStatus := make(map[domain.PaymentStatus]*domain.PaymentTotal)
	for _, p := range r.payments {
		t, ok := byStatus[p.Status]
		if !ok {
			t = &domain.PaymentTotal{Status: p.Status}
			byStatus[p.Status] = t
		}
		t.Count++
		t.Amount = t.Amount.Add(p.Amount)
	}
	totals := make([]domain.PaymentTotal, 0, len(byStatus))
	for _, t := range byStatus {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Status < totals[j].Status })
	return totals, nil
}
