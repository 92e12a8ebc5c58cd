package setup

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/LavaJover/shvark-escrow-service/internal/config"
)

func memoryConfig() *config.EscrowConfig {
	cfg := &config.EscrowConfig{}
	cfg.EscrowDB.Driver = "memory"
	cfg.Events.Driver = "none"
	cfg.Sweep.BatchSize = 10
	return cfg
}

func TestInitializeMemoryDependencies(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := InitializeDependencies(context.Background(), memoryConfig(), logger)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer deps.Close()

	if deps.Repositories.EscrowRepo == nil || deps.Repositories.PaymentRepo == nil || deps.AuditLogger == nil {
		t.Fatalf("storage not wired: %+v", deps.Repositories)
	}
	if deps.Publisher != nil {
		t.Errorf("publisher = %T, want none", deps.Publisher)
	}
	if deps.SweepLocker != nil {
		t.Errorf("sweep locker = %T, want none without redis", deps.SweepLocker)
	}
	if checks := deps.HealthChecks(); len(checks) != 0 {
		t.Errorf("health checks = %v, want none for memory storage", checks)
	}

	uc := InitializeUseCases(deps, nil)
	if uc.EscrowUsecase == nil || uc.PaymentUsecase == nil || uc.Metrics == nil {
		t.Fatal("usecases not built")
	}
}
