package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a row, or a nested object a view requires, does not exist.
	ErrNotFound = errors.New("not found")
	// ErrIntegrity marks writes that would leave contradictory or duplicate rows behind.
	ErrIntegrity = errors.New("integrity violation")
	// ErrInvalid marks values outside a closed set or otherwise malformed input.
	ErrInvalid = errors.New("invalid value")

	ErrGroupTypeMismatch = fmt.Errorf("%w: group_type does not match chat reference", ErrIntegrity)
	ErrMessageTooLong    = fmt.Errorf("%w: message longer than %d characters", ErrIntegrity, MaxMessageLength)
	ErrEmptyMessage      = fmt.Errorf("%w: empty message", ErrInvalid)
)
