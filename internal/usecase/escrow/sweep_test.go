package escrow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// racingRepo lets a test change records between the due query and the write.
type racingRepo struct {
	domain.EscrowRepository
	afterFind func(ctx context.Context, due []*domain.EscrowTransaction)
	findErr   error
}

func (r *racingRepo) FindDueReleases(ctx context.Context, now time.Time, limit int) ([]*domain.EscrowTransaction, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	due, err := r.EscrowRepository.FindDueReleases(ctx, now, limit)
	if err == nil && r.afterFind != nil {
		r.afterFind(ctx, due)
	}
	return due, err
}

type stubLocker struct {
	ok       bool
	err      error
	unlocked int
}

func (l *stubLocker) TryLock(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	if l.err != nil || !l.ok {
		return nil, l.ok, l.err
	}
	return func() { l.unlocked++ }, true, nil
}

func TestSweepReleasesOnlyDue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	escrow := h.create(t, 100)

	released, err := h.uc.SweepDueReleases(ctx, t0.Add(6*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(released) != 0 {
		t.Fatalf("sweep at t0+6d released %d", len(released))
	}
	stored, _ := h.repo.GetEscrowByID(ctx, escrow.ID)
	if stored.Status != domain.EscrowPending {
		t.Fatalf("status after early sweep = %s", stored.Status)
	}

	at := t0.Add(8 * 24 * time.Hour)
	released, err = h.uc.SweepDueReleases(ctx, at)
	if err != nil {
		t.Fatal(err)
	}
	if len(released) != 1 || released[0].ID != escrow.ID {
		t.Fatalf("sweep at t0+8d released %v", released)
	}
	stored, _ = h.repo.GetEscrowByID(ctx, escrow.ID)
	if stored.Status != domain.EscrowReleased || !stored.Released || !stored.ReleasedAt.Equal(at) {
		t.Fatalf("after sweep: %s released_at=%v", stored.Status, stored.ReleasedAt)
	}
	if h.publisher.countType(domain.EventEscrowAutoReleased) != 1 {
		t.Error("expected escrow.auto_released event")
	}
	entries := h.audit.Entries()
	if last := entries[len(entries)-1]; last.ActorID != domain.SystemIdentity.SubjectID || last.Operation != OperationAutoRelease {
		t.Errorf("audit entry = %+v", last)
	}

	again, err := h.uc.SweepDueReleases(ctx, at.Add(time.Hour))
	if err != nil || len(again) != 0 {
		t.Fatalf("second sweep: %v %v", again, err)
	}
}

func TestSweepBoundaryIsInclusive(t *testing.T) {
	h := newHarness(t)
	escrow := h.create(t, 1)
	released, err := h.uc.SweepDueReleases(context.Background(), escrow.ReleaseAt)
	if err != nil {
		t.Fatal(err)
	}
	if len(released) != 1 {
		t.Fatalf("released %d at exactly release_at", len(released))
	}
}

func TestSweepNeverReleasesDisputed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	escrow := h.create(t, 100)

	h.clock.Set(t0.Add(24 * time.Hour))
	if _, err := h.uc.DisputeEscrow(ctx, payer, escrow.ID); err != nil {
		t.Fatal(err)
	}
	for _, at := range []time.Time{t0.Add(8 * 24 * time.Hour), t0.Add(30 * 24 * time.Hour), t0.AddDate(5, 0, 0)} {
		released, err := h.uc.SweepDueReleases(ctx, at)
		if err != nil {
			t.Fatal(err)
		}
		if len(released) != 0 {
			t.Fatalf("sweep at %v released a disputed escrow", at)
		}
	}
	stored, _ := h.repo.GetEscrowByID(ctx, escrow.ID)
	if stored.Status != domain.EscrowDisputed || stored.Released || stored.ReleasedAt != nil {
		t.Fatalf("disputed escrow changed: %+v", stored)
	}
}

func TestSweepProcessesAllBatches(t *testing.T) {
	h := newHarness(t)
	h.uc.cfg.SweepBatchSize = 2
	for i := 0; i < 5; i++ {
		h.create(t, 10)
	}
	released, err := h.uc.SweepDueReleases(context.Background(), t0.Add(8*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(released) != 5 {
		t.Fatalf("released %d, want 5", len(released))
	}
	if got := testutil.ToFloat64(h.metrics.SweepReleasedTotal); got != 5 {
		t.Errorf("sweep released metric = %v", got)
	}
	if got := testutil.ToFloat64(h.metrics.EscrowReleasedAmountTotal.WithLabelValues("auto")); got != 50 {
		t.Errorf("auto released amount = %v", got)
	}
}

func TestSweepSkipsRecordsChangedMidPass(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.create(t, 10)
	b := h.create(t, 20)
	c := h.create(t, 30)

	racing := &racingRepo{EscrowRepository: h.repo}
	raced := false
	racing.afterFind = func(ctx context.Context, due []*domain.EscrowTransaction) {
		if raced {
			return
		}
		raced = true
		// b gets disputed and c refunded after the query returned them
		for _, op := range []struct {
			id    string
			apply transitionFunc
		}{
			{b.ID, domain.EscrowTransaction.Dispute},
			{c.ID, domain.EscrowTransaction.Refund},
		} {
			stored, _ := h.repo.GetEscrowByID(ctx, op.id)
			next, _, _ := op.apply(*stored, t0.Add(time.Hour))
			if err := h.repo.UpdateEscrowConditional(ctx, &next, stored.Status, stored.Version); err != nil {
				t.Errorf("race setup: %v", err)
			}
		}
	}
	h.uc.escrowRepo = racing

	released, err := h.uc.SweepDueReleases(ctx, t0.Add(8*24*time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(released) != 1 || released[0].ID != a.ID {
		t.Fatalf("released %v, want only %s", released, a.ID)
	}
	storedB, _ := h.repo.GetEscrowByID(ctx, b.ID)
	if storedB.Status != domain.EscrowDisputed || storedB.Released {
		t.Errorf("disputed escrow b = %s", storedB.Status)
	}
	storedC, _ := h.repo.GetEscrowByID(ctx, c.ID)
	if storedC.Status != domain.EscrowRefunded || storedC.ReleasedAt != nil {
		t.Errorf("refunded escrow c = %s", storedC.Status)
	}
	if got := testutil.ToFloat64(h.metrics.SweepSkippedTotal.WithLabelValues("invalid_state")); got != 2 {
		t.Errorf("skipped invalid_state = %v, want 2", got)
	}
}

func TestSweepAbortsOnStorageError(t *testing.T) {
	h := newHarness(t)
	h.create(t, 10)
	storageErr := errors.New("connection refused")
	h.uc.escrowRepo = &racingRepo{EscrowRepository: h.repo, findErr: storageErr}

	_, err := h.uc.SweepDueReleases(context.Background(), t0.Add(8*24*time.Hour))
	if !errors.Is(err, storageErr) {
		t.Fatalf("got %v, want storage error", err)
	}
	if got := testutil.ToFloat64(h.metrics.SweepRunsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v", got)
	}
}

func TestSweepRespectsLocker(t *testing.T) {
	ctx := context.Background()
	at := t0.Add(8 * 24 * time.Hour)

	t.Run("held elsewhere", func(t *testing.T) {
		h := newHarness(t)
		h.create(t, 10)
		h.uc.sweepLocker = &stubLocker{ok: false}
		released, err := h.uc.SweepDueReleases(ctx, at)
		if err != nil || len(released) != 0 {
			t.Fatalf("got %v %v, want no-op", released, err)
		}
	})

	t.Run("acquired", func(t *testing.T) {
		h := newHarness(t)
		h.create(t, 10)
		locker := &stubLocker{ok: true}
		h.uc.sweepLocker = locker
		released, err := h.uc.SweepDueReleases(ctx, at)
		if err != nil || len(released) != 1 {
			t.Fatalf("got %v %v", released, err)
		}
		if locker.unlocked != 1 {
			t.Errorf("unlocked %d times", locker.unlocked)
		}
	})

	t.Run("lock error", func(t *testing.T) {
		h := newHarness(t)
		h.uc.sweepLocker = &stubLocker{err: errors.New("redis down")}
		if _, err := h.uc.SweepDueReleases(ctx, at); err == nil {
			t.Fatal("expected lock error")
		}
	})
}

func TestSweepStopsOnCanceledContext(t *testing.T) {
	h := newHarness(t)
	h.create(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.uc.SweepDueReleases(ctx, t0.Add(8*24*time.Hour))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
