package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when an operation targets a missing entry.
	ErrNotFound = errors.New("entry not found")

	ErrInvalidNumber   = fmt.Errorf("%w: task number must be a positive integer", ErrValidation)
	ErrEmptyContent    = fmt.Errorf("%w: empty content", ErrValidation)
	ErrContentTooLong  = fmt.Errorf("%w: content too long (max %d characters)", ErrValidation, MaxContentLength)
	ErrInvalidCategory = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrInvalidSubcat   = fmt.Errorf("%w: invalid sub-category", ErrValidation)
	ErrInvalidOwner    = fmt.Errorf("%w: invalid owner", ErrValidation)
)

// MaxContentLength bounds entry text.
const MaxContentLength = 4000

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
