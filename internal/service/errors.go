package service

import (
	"errors"
	"fmt"

	"github.com/nurpe/freelancehub/internal/store"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
)

// storeError translates persistence sentinels into service errors. Anything else is
// returned unchanged and ends up as an internal error at the edge.
func storeError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, store.ErrStale):
		return fmt.Errorf("%w: %s was changed concurrently", ErrInvalidState, entity)
	case errors.Is(err, store.ErrTooLarge):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}
