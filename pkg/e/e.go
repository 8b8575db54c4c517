package e

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func Wrap(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
	ErrDeadline        = errors.New("deadline exceeded")
	ErrCanceled        = errors.New("context canceled")
	ErrUniqueViolation = errors.New("unique violation")
	ErrQueueEmpty      = errors.New("notification queue is empty")
)

// Attendance outcomes. Every failed scan or register attempt wraps exactly one
// of these.
var (
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrTargetNotFound      = errors.New("target not found")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrOutOfRange          = errors.New("out of range")
	ErrTooSoon             = errors.New("too soon")
	ErrStoreFailure        = errors.New("event store failure")
	ErrDirectoryFailure    = errors.New("directory failure")
	ErrBusy                = errors.New("session busy")
	ErrNoValidatedTarget   = errors.New("no validated target")
	ErrSessionReset        = errors.New("session reset during scan")
)

const (
	CheckpointScan     = "scan"
	CheckpointRegister = "register"
)

// OutOfRangeError carries the measured distance for user feedback.
type OutOfRangeError struct {
	Checkpoint     string
	DistanceMeters float64
	MaxMeters      float64
}

func (err *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s checkpoint: %.1fm from target, max %.1fm: %v",
		err.Checkpoint, err.DistanceMeters, err.MaxMeters, ErrOutOfRange)
}

func (err *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// TooSoonError carries the time left until the debounce window closes.
type TooSoonError struct {
	SinceLast time.Duration
	Remaining time.Duration
}

func (err *TooSoonError) Error() string {
	return fmt.Sprintf("last event %s ago, wait %.1f more minutes: %v",
		err.SinceLast.Round(time.Second), err.MinutesRemaining(), ErrTooSoon)
}

func (err *TooSoonError) Unwrap() error { return ErrTooSoon }

func (err *TooSoonError) MinutesRemaining() float64 {
	return err.Remaining.Minutes()
}

// Reason returns the stable tag for an attendance error.
func Reason(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrMalformedPayload):
		return "MALFORMED_PAYLOAD"
	case errors.Is(err, ErrTargetNotFound):
		return "TARGET_NOT_FOUND"
	case errors.Is(err, ErrInvalidCoordinates):
		return "INVALID_COORDINATES"
	case errors.Is(err, ErrPositionUnavailable):
		return "POSITION_UNAVAILABLE"
	case errors.Is(err, ErrOutOfRange):
		return "OUT_OF_RANGE"
	case errors.Is(err, ErrTooSoon):
		return "TOO_SOON"
	case errors.Is(err, ErrStoreFailure):
		return "STORE_FAILURE"
	case errors.Is(err, ErrDirectoryFailure):
		return "DIRECTORY_FAILURE"
	case errors.Is(err, ErrBusy):
		return "BUSY"
	case errors.Is(err, ErrNoValidatedTarget):
		return "NO_VALIDATED_TARGET"
	case errors.Is(err, ErrSessionReset):
		return "SESSION_RESET"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	default:
		return "INTERNAL"
	}
}

func WrapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrDeadline)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrCanceled)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrUniqueViolation)
		case "23503", "23514":
			return fmt.Errorf("%s: %w", op, ErrInvalidInput)
		default:
			return fmt.Errorf("%s: pg error %s: %w", op, pgErr.Code, ErrInternal)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, ErrInternal)
}
