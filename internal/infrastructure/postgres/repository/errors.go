package repository

import (
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"gorm.io/gorm"
)

// translate maps gorm errors onto the domain sentinels.
func translate(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}
