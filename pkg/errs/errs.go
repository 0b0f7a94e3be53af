// Package errs defines the failure kinds reported by the negotiation engine.
//
// Every engine failure is an *Error carrying one Kind. Callers branch on the
// kind with errors.Is:
//
//	if errors.Is(err, errs.CurrencyMismatch) { ... }
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure. A Kind is itself an error so it can be
// used as the target of errors.Is.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	// MissingInput reports an absent or empty stream collection, or an entry
	// with neither an amount nor a unit price.
	MissingInput Kind = "missing input"

	// MalformedValue reports a monetary, quantity or ratio value that cannot
	// be parsed.
	MalformedValue Kind = "malformed value"

	// RangeViolation reports a ratio outside [0, 1) or a margin that leaves
	// no positive revenue denominator.
	RangeViolation Kind = "range violation"

	// CurrencyMismatch reports two entries or collections resolving to
	// different currencies.
	CurrencyMismatch Kind = "currency mismatch"

	// UnsupportedShape reports a value whose runtime shape matches none of
	// the recognized forms.
	UnsupportedShape Kind = "unsupported shape"
)

// Error is a failure raised by the engine.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around cause.
func Wrap(kind Kind, op string, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
