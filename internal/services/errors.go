package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Kind classifies a service failure so callers can tell expected outcomes
// (Conflict, AlreadyVoted) apart from retryable faults (Unavailable).
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindAlreadyVoted    Kind = "already_voted"
	KindUnavailable     Kind = "unavailable"
	KindUnauthenticated Kind = "unauthenticated"
)

// Error is the error type returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	// Failed lists the inputs that were rejected by a partially applied batch.
	Failed []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...any) *Error {
	return newError(KindInvalidArgument, format, args...)
}

func notFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func unavailable(err error, format string, args ...any) *Error {
	e := newError(KindUnavailable, format, args...)
	e.Err = err
	return e
}

// KindOf reports the Kind of err, or "" when err is not a service error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// isDuplicateKey recognizes unique-index violations from every driver we
// run on: translated gorm errors (pgx, sqlite), raw pgx errors and lib/pq.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	// sqlite without translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// storeError wraps an unexpected persistence failure as Unavailable, leaving
// service errors untouched.
func storeError(err error, op string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return unavailable(err, "%s failed", op)
}
