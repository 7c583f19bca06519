package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// ErrNotFound is returned when the requested document does not exist
var ErrNotFound = errors.New("document not found")

// errCritical is the stop error for repeater, matched by criticalError.Is
var errCritical = errors.New("critical store error")

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error {
	return e.err
}

// Is makes every critical error match errCritical
func (e *criticalError) Is(target error) bool {
	return target == errCritical //nolint:errorlint // sentinel comparison
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

// retrier runs store writes, retrying only busy/locked conditions
type retrier struct {
	attempts int
	delay    time.Duration
}

// do calls fn until it succeeds, fails with a non-lock error or attempts are exhausted.
// Lock errors are retried, everything else is returned as is on the first failure.
func (r retrier) do(ctx context.Context, fn func() error) error {
	attempts := r.attempts
	if attempts < 1 {
		attempts = 1
	}
	err := repeater.NewFixed(attempts, r.delay).Do(ctx, func() error {
		err := fn()
		if err == nil || isLockError(err) {
			return err // repeater will retry lock errors
		}
		return &criticalError{err: err}
	}, errCritical)

	var ce *criticalError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}
