package utils

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ParseInt parses s, falling back to defaultValue.
func ParseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return result
}

// ParseUUID parses an identifier, returning an InvalidInput error on failure.
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, WrapError(ErrCodeInvalidInput, ReasonInvalidInput, "invalid identifier: "+s, err)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, WrapError(ErrCodeInvalidInput, ReasonInvalidInput, "invalid date: "+s, err)
	}
	return t, nil
}
