package types

import (
	"errors"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorKind names a failure that callers are expected to tell apart.
type ErrorKind string

const (
	ErrorKindNone                      ErrorKind = ""
	ErrorKindClassNotFound             ErrorKind = "ClassNotFound"
	ErrorKindSlotNotFound              ErrorKind = "SlotNotFound"
	ErrorKindSlotNotDefinedByHierarchy ErrorKind = "SlotNotDefinedByHierarchy"
	ErrorKindPatternParse              ErrorKind = "PatternParseError"
	ErrorKindTypecodeNotFound          ErrorKind = "TypecodeNotFound"
	ErrorKindNoSettingsBlock           ErrorKind = "NoSettingsBlock"
	ErrorKindColumnNotFound            ErrorKind = "ColumnNotFound"
	ErrorKindLoad                      ErrorKind = "LoadError"
	ErrorKindInvalidInput              ErrorKind = "InvalidInput"
)

// Failure tags an errbuilder error with its ErrorKind.  It unwraps to the
// builder, so errbuilder.CodeOf and errors.As keep working.
type Failure struct {
	Kind ErrorKind
	Err  error
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure builds a kinded error.  cause may be nil.
func NewFailure(kind ErrorKind, code errbuilder.ErrCode, msg string, cause error) error {
	builder := errbuilder.New().
		WithCode(code).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &Failure{Kind: kind, Err: builder}
}

// KindOf returns the kind of the outermost Failure in err's chain, or
// ErrorKindNone.
func KindOf(err error) ErrorKind {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return ErrorKindNone
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// ErrorMessage returns the builder message when present, falling back to
// the full error text.
func ErrorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && builder.Msg != "" {
		return builder.Msg
	}
	return err.Error()
}

// ErrorCode returns the errbuilder code carried anywhere in err's chain.
func ErrorCode(err error) errbuilder.ErrCode {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) {
		return errbuilder.CodeOf(builder)
	}
	return errbuilder.CodeOf(err)
}
