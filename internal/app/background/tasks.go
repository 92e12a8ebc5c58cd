package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/escrow"
)

type BackgroundTasks struct {
	EscrowUsecase escrow.EscrowUsecase
	Clock         domain.Clock
	SweepInterval time.Duration
	logger        *slog.Logger
}

func NewBackgroundTasks(escrowUC escrow.EscrowUsecase, clock domain.Clock, sweepInterval time.Duration, logger *slog.Logger) *BackgroundTasks {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &BackgroundTasks{
		EscrowUsecase: escrowUC,
		Clock:         clock,
		SweepInterval: sweepInterval,
		logger:        logger.With("component", "background"),
	}
}

// StartAll launches every periodic job; they stop when ctx is canceled.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startAutoRelease(ctx)
}

func (bt *BackgroundTasks) startAutoRelease(ctx context.Context) {
	ticker := time.NewTicker(bt.SweepInterval)
	defer ticker.Stop()

	bt.logger.Info("auto-release sweeper started", "interval", bt.SweepInterval)
	for {
		select {
		case <-ctx.Done():
			bt.logger.Info("auto-release sweeper stopped")
			return
		case <-ticker.C:
			bt.runSweep(ctx)
		}
	}
}

func (bt *BackgroundTasks) runSweep(ctx context.Context) {
	released, err := bt.EscrowUsecase.SweepDueReleases(ctx, bt.Clock.Now())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		bt.logger.Error("auto-release sweep failed", "error", err)
		return
	}
	if len(released) > 0 {
		bt.logger.Info("auto-release sweep completed", "released", len(released))
	}
}
