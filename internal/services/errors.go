package services

import (
	"errors"
	"fmt"

	"github.com/locm1/nippo/internal/storage"
)

// Error taxonomy shared by all services. Handlers map these onto HTTP codes.
// ErrNotFound deliberately covers both "absent" and "visibility denied" so a
// caller cannot distinguish a private report from a nonexistent one.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrTransient       = errors.New("temporarily unavailable")
	ErrOperationFailed = errors.New("operation failed")
)

// storeErr folds a storage failure into the service taxonomy. Backend
// unavailability surfaces as ErrTransient so a timeout is distinguishable
// from a permanent failure.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrUnavailable):
		return fmt.Errorf("%s: %w", op, ErrTransient)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
