package utils

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGetHTTPStatusCode(t *testing.T) {
	cases := map[int]int{
		ErrCodeNotFound:         http.StatusNotFound,
		ErrCodeValidationFailed: http.StatusUnprocessableEntity,
		ErrCodeUnauthorized:     http.StatusUnauthorized,
		ErrCodeTenantSuspended:  http.StatusPaymentRequired,
		ErrCodeInvalidInput:     http.StatusBadRequest,
		ErrCodeInternalError:    http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, GetHTTPStatusCode(code), "code %d", code)
	}
}

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("apply: %w", Validation(ReasonDuplicateIncrease, "already increased in %d", 2025))

	appErr, ok := AsError(err)
	assert.True(t, ok)
	assert.Equal(t, ErrCodeValidationFailed, appErr.Code)
	assert.True(t, HasReason(err, ReasonDuplicateIncrease))
	assert.False(t, HasReason(err, ReasonInsufficientNotice))
	assert.Contains(t, appErr.Message, "2025")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(gorm.ErrRecordNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("lease: %w", gorm.ErrRecordNotFound)))
	assert.True(t, IsNotFound(NotFound("lease", "x")))
	assert.False(t, IsNotFound(Validation(ReasonInvalidState, "nope")))
}

func TestIsConstraintViolation(t *testing.T) {
	assert.True(t, IsConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsConstraintViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsConstraintViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23P01"})))
	assert.False(t, IsConstraintViolation(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, IsConstraintViolation(gorm.ErrRecordNotFound))
}

func TestTenantSuspendedIsDistinct(t *testing.T) {
	suspended := TenantSuspended()
	unauthorized := Unauthorized(ReasonTenantNotFound, "unknown tenant")
	assert.NotEqual(t, suspended.Code, unauthorized.Code)
	assert.NotEqual(t, GetHTTPStatusCode(suspended.Code), GetHTTPStatusCode(unauthorized.Code))
}
