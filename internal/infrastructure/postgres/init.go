package postgres

import (
	"fmt"

	"github.com/LavaJover/shvark-escrow-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the connection. autoMigrate creates the tables through gorm
// instead of the SQL migrations, which is only meant for local runs.
func InitDB(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}

	if autoMigrate {
		if err := db.AutoMigrate(&models.EscrowModel{}, &models.PaymentModel{}, &models.AuditEntryModel{}); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate: %w", err)
		}
	}

	return db, nil
}
