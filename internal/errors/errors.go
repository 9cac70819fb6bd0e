// Package errors provides the typed error kinds used throughout minisftp.
//
// The core never panics on an expected failure: every operation that can
// fail returns an error built by one of the constructors below, so callers
// can switch on Kind instead of string-matching messages.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// New, Wrap, Wrapf, Errorf, Cause, Is, As mirror github.com/pkg/errors
// and the standard library so the rest of the tree has one import to reach
// for regardless of whether it needs a stack trace or just a sentinel.
var (
	New    = errors.New
	Errorf = errors.Errorf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Cause  = errors.Cause
)

// WithStack annotates err with a stack trace at the point WithStack was
// called. It is a no-op if err is nil.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Is and As forward to the standard library so callers can match sentinel
// errors (e.g. context.Canceled) wrapped via Wrap/WithStack.
func Is(err, target error) bool     { return stderrors.Is(err, target) }
func As(err error, target any) bool { return stderrors.As(err, target) }

// Kind classifies a failure the way a caller would want to branch on it.
// It is attached to an error, never used as the error type itself.
type Kind int

const (
	// KindIO signals a local filesystem failure (wraps the OS error).
	KindIO Kind = iota + 1
	// KindInvalidTransition signals a programming error: state machine misuse.
	KindInvalidTransition
	// KindProtocol signals any SSH transport or SFTP request failure,
	// including remote I/O.
	KindProtocol
	// KindAuth signals rejected credentials or an unsupported auth method.
	KindAuth
	// KindSftp is a higher-level SFTP semantic error, reserved for future use.
	KindSftp
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindProtocol:
		return "protocol"
	case KindAuth:
		return "auth"
	case KindSftp:
		return "sftp"
	default:
		return "unknown"
	}
}

// kindError pairs an underlying error with the Kind a caller should switch
// on. It deliberately does not embed the wrapped error's type so that a
// type switch on the wrapped error still works through Unwrap.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }
func (e *kindError) Cause() error  { return e.err }

// WithKind tags err with kind. If err is nil, WithKind returns nil.
func WithKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// GetKind extracts the Kind attached by WithKind, if any.
func GetKind(err error) (Kind, bool) {
	var ke *kindError
	if As(err, &ke) {
		return ke.kind, true
	}
	return 0, false
}

// Io wraps a local filesystem error with KindIO.
func Io(err error) error { return WithKind(err, KindIO) }

// InvalidTransition reports an illegal state transition attempt.
func InvalidTransition(from, to fmt.Stringer) error {
	return WithKind(errors.Errorf("invalid transition from %s to %s", from, to), KindInvalidTransition)
}

// Protocol wraps an SSH transport or SFTP request failure with KindProtocol.
func Protocol(err error) error { return WithKind(err, KindProtocol) }

// Protocolf builds a new KindProtocol error from a format string.
func Protocolf(format string, args ...any) error {
	return WithKind(errors.Errorf(format, args...), KindProtocol)
}

// Auth wraps a rejected-credentials or unsupported-auth-method error with
// KindAuth.
func Auth(err error) error { return WithKind(err, KindAuth) }

// Authf builds a new KindAuth error from a format string.
func Authf(format string, args ...any) error {
	return WithKind(errors.Errorf(format, args...), KindAuth)
}

// fatalError marks an error that should terminate the process rather than
// be handled by a caller's retry loop. Distinct from Kind: a Fatal error is
// about severity, a Kind is about origin.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal creates an error that is marked as fatal, using the given message.
func Fatal(message string) error {
	return &fatalError{err: errors.New(message)}
}

// Fatalf creates an error that is marked as fatal, using the given format
// and args.
func Fatalf(format string, args ...any) error {
	return &fatalError{err: errors.Errorf(format, args...)}
}

// IsFatal checks whether err is marked as fatal.
func IsFatal(err error) bool {
	var f *fatalError
	return As(err, &f)
}
