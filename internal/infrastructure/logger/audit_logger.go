package logger

import (
	"context"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/mappers"
	"gorm.io/gorm"
)

// PGAuditLogger appends transition records to the audit_entries table.
type PGAuditLogger struct {
	db *gorm.DB
}

func NewPGAuditLogger(db *gorm.DB) *PGAuditLogger {
	return &PGAuditLogger{db: db}
}

func (l *PGAuditLogger) LogTransition(ctx context.Context, entry domain.AuditEntry) error {
	return l.db.WithContext(ctx).Create(mappers.ToGORMAuditEntry(entry)).Error
}
