package payment

import (
	"context"
	"log/slog"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/metrics"
	paymentdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/validation"
)

type PaymentUsecase interface {
	InitiatePayment(ctx context.Context, actor domain.Identity, input *paymentdto.InitiatePaymentInput) (*domain.PaymentTransaction, error)
	HoldPayment(ctx context.Context, actor domain.Identity, paymentID string) (*domain.PaymentTransaction, error)
	ReleasePayment(ctx context.Context, actor domain.Identity, paymentID string) (*domain.PaymentTransaction, error)
	RefundPayment(ctx context.Context, actor domain.Identity, paymentID string) (*domain.PaymentTransaction, error)

	GetPaymentByID(ctx context.Context, actor domain.Identity, paymentID string) (*domain.PaymentTransaction, error)
	GetPaymentByBookingID(ctx context.Context, actor domain.Identity, bookingID string) (*domain.PaymentTransaction, error)
	ListPayments(ctx context.Context, actor domain.Identity, input *paymentdto.ListPaymentsInput) (*paymentdto.ListPaymentsOutput, error)
}

type DefaultPaymentUsecase struct {
	paymentRepo domain.PaymentRepository
	publisher   domain.PublisherPort
	auditLogger domain.AuditLogger
	clock       domain.Clock
	validator   *validation.Validator
	Metrics     *metrics.EscrowMetrics
	logger      *slog.Logger
}

func NewDefaultPaymentUsecase(
	paymentRepo domain.PaymentRepository,
	publisher domain.PublisherPort,
	auditLogger domain.AuditLogger,
	clock domain.Clock,
	escrowMetrics *metrics.EscrowMetrics,
	logger *slog.Logger,
) *DefaultPaymentUsecase {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultPaymentUsecase{
		paymentRepo: paymentRepo,
		publisher:   publisher,
		auditLogger: auditLogger,
		clock:       clock,
		validator:   validation.New(),
		Metrics:     escrowMetrics,
		logger:      logger.With("component", "payment_usecase"),
	}
}

func requireStaff(actor domain.Identity) error {
	if !actor.IsAuthenticated {
		return domain.ErrUnauthorized
	}
	if !actor.IsStaff {
		return domain.ErrForbidden
	}
	return nil
}
