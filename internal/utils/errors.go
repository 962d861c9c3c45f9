package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error is the typed failure returned by the engines. Code selects the HTTP
// status, Reason is a stable machine-readable discriminator.
type Error struct {
	Code    int
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error %d (%s): %s - %v", e.Code, e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("error %d (%s): %s", e.Code, e.Reason, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code int, reason, message string) *Error {
	return &Error{
		Code:    code,
		Reason:  reason,
		Message: message,
	}
}

func WrapError(code int, reason, message string, err error) *Error {
	return &Error{
		Code:    code,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

const (
	ErrCodeInvalidInput     = 1001
	ErrCodeNotFound         = 1002
	ErrCodeInternalError    = 1004
	ErrCodeValidationFailed = 1005
	ErrCodeUnauthorized     = 1006
	ErrCodeForbidden        = 1007
	ErrCodeTenantSuspended  = 1014
)

// Machine-readable reasons.
const (
	ReasonNotFound              = "NOT_FOUND"
	ReasonInvalidInput          = "INVALID_INPUT"
	ReasonInsufficientNotice    = "INSUFFICIENT_NOTICE"
	ReasonDuplicateIncrease     = "DUPLICATE_YEARLY_INCREASE"
	ReasonOverlappingLease      = "OVERLAPPING_LEASE"
	ReasonDuplicate             = "DUPLICATE"
	ReasonInvalidState          = "INVALID_STATE"
	ReasonMissingConfig         = "IPC_NOT_CONFIGURED"
	ReasonMissingCredentials    = "MISSING_CREDENTIALS"
	ReasonInvalidToken          = "INVALID_TOKEN"
	ReasonTenantNotFound        = "TENANT_NOT_FOUND"
	ReasonTenantSuspended       = "TENANT_SUSPENDED"
	ReasonTenantContextRequired = "TENANT_CONTEXT_REQUIRED"
	ReasonForbidden             = "FORBIDDEN"
	ReasonInternal              = "INTERNAL"
)

func NotFound(resource, id string) *Error {
	return NewError(ErrCodeNotFound, ReasonNotFound, fmt.Sprintf("%s %s not found", resource, id))
}

func Validation(reason, format string, args ...interface{}) *Error {
	return NewError(ErrCodeValidationFailed, reason, fmt.Sprintf(format, args...))
}

func Unauthorized(reason, message string) *Error {
	return NewError(ErrCodeUnauthorized, reason, message)
}

// TenantSuspended signals a billing problem rather than an authentication
// failure, so it carries its own code.
func TenantSuspended() *Error {
	return NewError(ErrCodeTenantSuspended, ReasonTenantSuspended, "subscription payment required: tenant is suspended")
}

// GetHTTPStatusCode maps an error code to its HTTP status.
func GetHTTPStatusCode(code int) int {
	switch code {
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeTenantSuspended:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports a missing row, including rows hidden by tenant scope.
func IsNotFound(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	appErr, ok := AsError(err)
	return ok && appErr.Code == ErrCodeNotFound
}

// IsConstraintViolation reports a unique or exclusion constraint failure.
func IsConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" || pgErr.Code == "23P01"
	}
	return false
}

// HasReason reports whether err is an *Error with the given reason.
func HasReason(err error, reason string) bool {
	appErr, ok := AsError(err)
	return ok && appErr.Reason == reason
}
