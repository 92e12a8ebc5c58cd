package setup

import (
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/escrow"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/payment"
)

type UseCases struct {
	EscrowUsecase  *escrow.DefaultEscrowUsecase
	PaymentUsecase *payment.DefaultPaymentUsecase
	Metrics        *metrics.EscrowMetrics
}

func InitializeUseCases(deps *Dependencies, clock domain.Clock) *UseCases {
	escrowMetrics := metrics.NewEscrowMetrics(deps.Registry)

	escrowUsecase := escrow.NewDefaultEscrowUsecase(
		deps.Repositories.EscrowRepo,
		deps.Repositories.PaymentRepo,
		deps.Publisher,
		deps.AuditLogger,
		deps.SweepLocker,
		clock,
		escrowMetrics,
		deps.Logger,
		escrow.Config{
			SweepBatchSize: deps.Config.Sweep.BatchSize,
			SweepLockTTL:   deps.Config.Sweep.LockTTL,
		},
	)

	paymentUsecase := payment.NewDefaultPaymentUsecase(
		deps.Repositories.PaymentRepo,
		deps.Publisher,
		deps.AuditLogger,
		clock,
		escrowMetrics,
		deps.Logger,
	)

	return &UseCases{
		EscrowUsecase:  escrowUsecase,
		PaymentUsecase: paymentUsecase,
		Metrics:        escrowMetrics,
	}
}
