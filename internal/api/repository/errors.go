package repository

import (
	"errors"
	"strings"

	"golang-stock-tracker/pkg/apperror"

	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a unique-constraint violation from any supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// translateError maps gorm errors onto the application taxonomy.
func translateError(err error, notFoundMsg, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(notFoundMsg)
	case isDuplicateKey(err):
		return apperror.Conflict(conflictMsg)
	default:
		return err
	}
}
