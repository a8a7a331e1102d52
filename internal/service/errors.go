package service

import (
	"errors"
	"fmt"

	"meetup-backend/internal/models"

	"gorm.io/gorm"
)

// Service level errors. Handlers map them to HTTP status codes.
var (
	ErrEmailTaken         = errors.New("email taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrDuplicateMember    = fmt.Errorf("%w: user is already a member of the event", models.ErrIntegrity)
)

// notFound converts gorm's record-not-found into models.ErrNotFound, naming what was looked up.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return err
}
