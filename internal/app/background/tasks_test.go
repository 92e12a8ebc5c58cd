package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/usecase/escrow"
)

type mockEscrowUsecase struct {
	escrow.EscrowUsecase
	SweepFn func(ctx context.Context, now time.Time) ([]*domain.EscrowTransaction, error)
}

func (m *mockEscrowUsecase) SweepDueReleases(ctx context.Context, now time.Time) ([]*domain.EscrowTransaction, error) {
	return m.SweepFn(ctx, now)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestAutoReleaseRunsOnTicks(t *testing.T) {
	var calls atomic.Int32
	uc := &mockEscrowUsecase{SweepFn: func(ctx context.Context, now time.Time) ([]*domain.EscrowTransaction, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("db down")
		}
		return []*domain.EscrowTransaction{{ID: "e1"}}, nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	bt := NewBackgroundTasks(uc, nil, 5*time.Millisecond, discard())
	go func() {
		bt.startAutoRelease(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("sweep ran %d times, want at least 3", calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestRunSweepPassesClockTime(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	var got time.Time
	uc := &mockEscrowUsecase{SweepFn: func(ctx context.Context, now time.Time) ([]*domain.EscrowTransaction, error) {
		got = now
		return nil, nil
	}}
	bt := NewBackgroundTasks(uc, clockAt(at), time.Minute, discard())
	bt.runSweep(context.Background())
	if !got.Equal(at) {
		t.Errorf("sweep now = %v, want %v", got, at)
	}
}

type clockAt time.Time

func (c clockAt) Now() time.Time { return time.Time(c) }
