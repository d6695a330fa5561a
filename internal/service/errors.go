package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures; handlers map each kind to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInUse
	KindUnauthorized
	KindForbidden
)

// Error is returned by every service operation that fails for a reason the
// client should see. Err keeps the underlying cause for logs; Fields carries
// per-field validation messages.
type Error struct {
	Kind   Kind
	Code   string
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func conflict(msg string, cause error) error {
	return &Error{Kind: KindConflict, Msg: msg, Err: cause}
}

func inUse(msg string, cause error) error {
	return &Error{Kind: KindInUse, Msg: msg, Err: cause}
}

func unauthorized(code, msg string) error {
	return &Error{Kind: KindUnauthorized, Code: code, Msg: msg}
}

func internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: cause}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
