// Package apperror defines the error kinds shared by every feature package.
//
// Feature packages declare their own sentinel errors with New (the same way
// they used to declare errors.New values) and handlers render any error through
// response.FromError, which looks the kind up with KindOf.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers: whether it is user-correctable,
// a permission problem, or safe to retry.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindAuthorization   Kind = "AUTHORIZATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindToken           Kind = "TOKEN_ERROR"
	KindTransient       Kind = "TRANSIENT_ERROR"
)

// Kinded is implemented by every classified error, including the typed
// detail errors of the split package.
type Kinded interface {
	error
	Kind() Kind
	Code() string
}

// Error is a classified error with a stable code and a human-readable message.
type Error struct {
	kind    Kind
	code    string
	Message string
	Err     error
}

// New creates a classified error. Two errors with the same code match under errors.Is,
// so a sentinel can be copied with a more specific message and still be matched.
func New(kind Kind, code, message string) *Error {
	return &Error{kind: kind, code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Code() string { return e.code }

// Is matches on the code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{kind: e.kind, code: e.code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// Wrap returns a copy of e that wraps cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{kind: e.kind, code: e.code, Message: e.Message, Err: cause}
}

// ErrStorage is the sentinel for storage and transport failures.
var ErrStorage = New(KindTransient, "STORAGE_UNAVAILABLE", "storage temporarily unavailable")

// Transient wraps a storage-layer failure. A nil error stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	var k Kinded
	if errors.As(err, &k) {
		return err
	}
	return ErrStorage.Wrap(err)
}

// KindOf reports the kind of err. Unclassified errors can only come out of the
// storage layer and are reported as transient.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindTransient
}

// CodeOf reports the stable code of err.
func CodeOf(err error) string {
	var k Kinded
	if errors.As(err, &k) {
		return k.Code()
	}
	return ErrStorage.code
}

// Detailer is implemented by errors that carry structured detail for the caller,
// such as the computed and expected totals of a rejected split.
type Detailer interface {
	Details() map[string]any
}

// DetailsOf returns the structured detail of err, if any.
func DetailsOf(err error) map[string]any {
	var d Detailer
	if errors.As(err, &d) {
		return d.Details()
	}
	return nil
}
