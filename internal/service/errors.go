package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/apperrors"
)

// translate maps a gorm error onto the apperrors taxonomy. resource names
// the entity in NotFound and Conflict messages.
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict(resource + " already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.IntegrityViolation(resource + " references a missing row")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return apperrors.Validation(err.Error())
	default:
		return apperrors.StorageUnavailable(err)
	}
}
