package services

import (
	"database/sql"
	"errors"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
)

// lookupErr maps a single-row read failure: a missing row becomes NotFound
// "<entity> not found", anything else an upstream failure.
func lookupErr(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("%s not found", entity)
	}
	return apperr.Upstream("Failed to fetch "+lowerFirst(entity), err)
}

func checkID(id, entity string) error {
	if !domain.IsID(id) {
		return apperr.Validation("Invalid %s ID format", lowerFirst(entity))
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func ptr[T any](v T) *T { return &v }
