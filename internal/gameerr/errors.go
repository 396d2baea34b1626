// Package gameerr defines the error kinds shared by the game engines.
//
// Engines distinguish between two failure modes:
//
//   - invariant violations (ErrInvalidState): the session document is missing
//     required data. These are internal errors and are never retried.
//   - rejections (*RejectionError): the acting player asked for something the
//     rules do not allow right now. The document is left untouched and the
//     reason is safe to show to the player.
//
// Running out of cards is not an error at all; engines log it and carry on.
package gameerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState marks a document that is missing required fields or
	// carries values the engine cannot interpret.
	ErrInvalidState = errors.New("invalid game state")

	// ErrRejected matches every *RejectionError via errors.Is.
	ErrRejected = errors.New("action rejected")
)

// RejectionError is a user-facing refusal of an action.
type RejectionError struct {
	Op     string // operation that was refused, e.g. "play_card"
	Reason string
}

func (e *RejectionError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrRejected.
func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// Reject builds a RejectionError for op with a formatted reason.
func Reject(op, format string, args ...any) error {
	return &RejectionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// Invalid wraps ErrInvalidState with detail about what was wrong.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// IsRejection reports whether err is a user-facing rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected)
}

// Reason returns the user-facing reason of a rejection, or a generic message
// for anything else.
func Reason(err error) string {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return "internal error"
}
