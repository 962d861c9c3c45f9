package service

import (
	"errors"

	"github.com/taichu-system/rental-management/internal/utils"
	"gorm.io/gorm"
)

// EntityError is one per-entity failure collected by a batch operation.
type EntityError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// notFound converts a missing row into the typed NotFound error. Rows that
// exist under another tenant produce the same error.
func notFound(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(resource, id)
	}
	return err
}

// asDuplicate converts a constraint violation into a Validation error with
// reason and message; other errors pass through.
func asDuplicate(err error, reason, message string) error {
	if utils.IsConstraintViolation(err) {
		return utils.WrapError(utils.ErrCodeValidationFailed, reason, message, err)
	}
	return err
}
