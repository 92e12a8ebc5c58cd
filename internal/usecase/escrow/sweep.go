package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
)

var errNotDue = errors.New("escrow is not due for release")

// SweepDueReleases releases every pending, undisputed transaction whose
// release_at is at or before now. It returns the transactions it released.
// Records that changed underneath the pass are skipped and left for the next one.
func (uc *DefaultEscrowUsecase) SweepDueReleases(ctx context.Context, now time.Time) ([]*domain.EscrowTransaction, error) {
	uc.sweepMu.Lock()
	defer uc.sweepMu.Unlock()

	if uc.sweepLocker != nil {
		unlock, ok, err := uc.sweepLocker.TryLock(ctx, uc.cfg.SweepLockTTL)
		if err != nil {
			uc.recordSweep("lock_error", time.Now(), 0)
			return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		if !ok {
			uc.logger.Debug("sweep lock held by another instance")
			uc.recordSweep("locked", time.Now(), 0)
			return nil, nil
		}
		defer unlock()
	}

	started := time.Now()
	var released []*domain.EscrowTransaction
	skipped := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			uc.recordSweep("canceled", started, len(released))
			return released, err
		}
		batch, err := uc.escrowRepo.FindDueReleases(ctx, now, uc.cfg.SweepBatchSize)
		if err != nil {
			uc.recordSweep("error", started, len(released))
			return released, fmt.Errorf("failed to find due releases: %w", err)
		}

		progressed := false
		for _, candidate := range batch {
			if _, seen := skipped[candidate.ID]; seen {
				continue
			}
			escrow, err := uc.autoRelease(ctx, candidate, now)
			if err != nil {
				reason, skip := skipReason(err)
				if !skip {
					uc.recordSweep("error", started, len(released))
					return released, err
				}
				skipped[candidate.ID] = struct{}{}
				uc.logger.Info("sweep skipped escrow", "escrow_id", candidate.ID, "reason", reason, "error", err)
				if uc.Metrics != nil {
					uc.Metrics.RecordSweepSkipped(reason)
				}
				continue
			}
			progressed = true
			released = append(released, escrow)
		}

		if len(batch) < uc.cfg.SweepBatchSize || !progressed {
			break
		}
	}

	uc.recordSweep("ok", started, len(released))
	if len(released) > 0 {
		uc.logger.Info("sweep released escrows", "count", len(released), "skipped", len(skipped), "duration", time.Since(started))
	}
	return released, nil
}

func (uc *DefaultEscrowUsecase) autoRelease(ctx context.Context, candidate *domain.EscrowTransaction, now time.Time) (*domain.EscrowTransaction, error) {
	escrow, changed, err := uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  candidate.ID,
		Operation: OperationAutoRelease,
		EventType: domain.EventEscrowAutoReleased,
		Actor:     domain.SystemIdentity,
		Now:       now,
		Loaded:    candidate,
		Apply: func(e domain.EscrowTransaction, at time.Time) (domain.EscrowTransaction, bool, error) {
			// re-checked on every attempt so a dispute raised mid-pass wins
			if e.Status == domain.EscrowPending && !e.IsDue(at) {
				return e, false, errNotDue
			}
			return e.Release(at)
		},
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		// released by someone else between the query and the write
		return nil, fmt.Errorf("escrow %s: %w", candidate.ID, domain.ErrConcurrencyConflict)
	}
	return escrow, nil
}

func skipReason(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict", true
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state", true
	case errors.Is(err, errNotDue):
		return "not_due", true
	case errors.Is(err, domain.ErrNotFound):
		return "not_found", true
	}
	return "", false
}

func (uc *DefaultEscrowUsecase) recordSweep(result string, started time.Time, released int) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordSweep(result, time.Since(started).Seconds(), released)
}
