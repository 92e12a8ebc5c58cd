package escrow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/metrics"
	escrowdto "github.com/LavaJover/shvark-escrow-service/internal/usecase/dto/escrow"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/validation"
)

type EscrowUsecase interface {
	CreateEscrow(ctx context.Context, actor domain.Identity, input *escrowdto.CreateEscrowInput) (*domain.EscrowTransaction, error)
	ReleaseEscrow(ctx context.Context, actor domain.Identity, escrowID string) (*domain.EscrowTransaction, error)
	RefundEscrow(ctx context.Context, actor domain.Identity, escrowID string) (*domain.EscrowTransaction, error)
	DisputeEscrow(ctx context.Context, actor domain.Identity, escrowID string) (*domain.EscrowTransaction, error)
	SweepDueReleases(ctx context.Context, now time.Time) ([]*domain.EscrowTransaction, error)

	GetEscrowByID(ctx context.Context, actor domain.Identity, escrowID string) (*domain.EscrowTransaction, error)
	ListEscrows(ctx context.Context, actor domain.Identity, input *escrowdto.ListEscrowsInput) (*escrowdto.ListEscrowsOutput, error)
	ListMyEscrows(ctx context.Context, actor domain.Identity, input *escrowdto.ListEscrowsInput) (*escrowdto.ListEscrowsOutput, error)
	GetSummary(ctx context.Context, actor domain.Identity) (*domain.EscrowSummary, error)
}

type Config struct {
	// SweepBatchSize bounds how many due transactions one query returns.
	SweepBatchSize int
	SweepLockTTL   time.Duration
}

const (
	defaultSweepBatchSize = 100
	defaultSweepLockTTL   = time.Minute
)

type DefaultEscrowUsecase struct {
	escrowRepo  domain.EscrowRepository
	paymentRepo domain.PaymentRepository
	publisher   domain.PublisherPort
	auditLogger domain.AuditLogger
	sweepLocker domain.SweepLocker
	clock       domain.Clock
	validator   *validation.Validator
	Metrics     *metrics.EscrowMetrics
	logger      *slog.Logger
	cfg         Config

	// sweepMu keeps passes in this process from overlapping.
	sweepMu sync.Mutex
}

func NewDefaultEscrowUsecase(
	escrowRepo domain.EscrowRepository,
	paymentRepo domain.PaymentRepository,
	publisher domain.PublisherPort,
	auditLogger domain.AuditLogger,
	sweepLocker domain.SweepLocker,
	clock domain.Clock,
	escrowMetrics *metrics.EscrowMetrics,
	logger *slog.Logger,
	cfg Config,
) *DefaultEscrowUsecase {
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}
	if cfg.SweepLockTTL <= 0 {
		cfg.SweepLockTTL = defaultSweepLockTTL
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultEscrowUsecase{
		escrowRepo:  escrowRepo,
		paymentRepo: paymentRepo,
		publisher:   publisher,
		auditLogger: auditLogger,
		sweepLocker: sweepLocker,
		clock:       clock,
		validator:   validation.New(),
		Metrics:     escrowMetrics,
		logger:      logger.With("component", "escrow_usecase"),
		cfg:         cfg,
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

func requireStaffOrParty(actor domain.Identity, escrow *domain.EscrowTransaction) error {
	if !actor.IsAuthenticated {
		return domain.ErrUnauthorized
	}
	if actor.IsStaff || escrow.IsParty(actor.SubjectID) {
		return nil
	}
	return domain.ErrForbidden
}
