package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for the write path. Callers classify with errors.Is.
var (
	// ErrInvalidRow rejects a batch containing a row without a campaign id.
	// Nothing from the batch is persisted.
	ErrInvalidRow = errors.New("content row missing campaign id")

	// ErrNoSuchCampaign rejects an operation referencing a campaign that does
	// not exist.
	ErrNoSuchCampaign = errors.New("campaign does not exist")

	// ErrConflict reports a generated identifier collision. Backends retry
	// internally; callers should never observe it in practice.
	ErrConflict = errors.New("identifier already exists")

	// ErrUnavailable tags transient backend failures. The fallback layer
	// retries exactly these, once, against the in-process backend.
	ErrUnavailable = errors.New("storage backend unavailable")
)

// Unavailable wraps a driver-level failure so it is classified as transient.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// IsUnavailable reports whether err is a transient backend failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
