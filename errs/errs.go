// Package errs defines the failure kinds patchmo reports to the user.
//
// Every fatal condition travels as an *Error carrying a message and an
// optional remediation hint. The CLI unwraps it with errors.As to print
// "error: <message>" followed by "(<hint>)".
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is reported for errors that are not *Error values.
	KindUnknown Kind = iota
	// KindMarkerNotFound means a range marker did not resolve to a commit.
	KindMarkerNotFound
	// KindNotRepository means the source path is not a git working copy.
	KindNotRepository
	// KindSpecNotFound means the destination holds no spec file.
	KindSpecNotFound
	// KindSpecAmbiguous means more than one file matched the spec pattern.
	KindSpecAmbiguous
	// KindVCS wraps a failed git invocation.
	KindVCS
	// KindConfig wraps configuration loading and validation failures.
	KindConfig
	// KindIO wraps filesystem failures.
	KindIO
)

// String returns a short identifier for the kind.
func (k Kind) String() string {
	switch k {
	case KindMarkerNotFound:
		return "marker_not_found"
	case KindNotRepository:
		return "not_repository"
	case KindSpecNotFound:
		return "spec_not_found"
	case KindSpecAmbiguous:
		return "spec_ambiguous"
	case KindVCS:
		return "vcs"
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified failure with an optional hint.
type Error struct {
	Kind    Kind
	Message string
	// Hint tells the user how to fix the problem. Empty when there is none.
	Hint string
	// Ref names the marker, file or directory the failure is about.
	Ref string
	Err error
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithHint sets the remediation hint.
func (e *Error) WithHint(format string, args ...any) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// WithRef sets the subject of the failure.
func (e *Error) WithRef(ref string) *Error {
	e.Ref = ref
	return e
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

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HintOf reports the hint of the first *Error in err's chain.
func HintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
