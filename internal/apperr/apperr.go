// Package apperr defines the service-wide error taxonomy. Every error
// crossing a usecase boundary is one of four kinds so that transport
// adapters can map failures without string matching.
package apperr

import (
	"errors"
	"fmt"

	"github.com/mnavarro-dev/pedidos-service/internal/model"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is malformed or missing input; the caller's fault,
	// never retried automatically.
	KindValidation
	// KindNotFound means a referenced order does not exist.
	KindNotFound
	// KindConflict covers illegal state transitions and insufficient
	// stock at transition time.
	KindConflict
	// KindStorage is a transaction or commit failure; transient and
	// retryable by the caller.
	KindStorage
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	// Shortages is populated on stock-driven conflicts so callers can
	// tell end users which products are short.
	Shortages []model.Shortage
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Conflict(op, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(op string, shortages []model.Shortage) *Error {
	return &Error{
		Kind:      KindConflict,
		Op:        op,
		Message:   "insufficient stock",
		Shortages: shortages,
	}
}

func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Message: "storage failure", Err: err}
}

// KindOf extracts the taxonomy kind from any error in the chain.
// Unwrapped errors default to KindStorage: an unclassified failure out
// of a repository is by definition a storage problem, not user input.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// ShortagesOf returns the shortage payload carried by err, if any.
func ShortagesOf(err error) []model.Shortage {
	var e *Error
	if errors.As(err, &e) {
		return e.Shortages
	}
	return nil
}
