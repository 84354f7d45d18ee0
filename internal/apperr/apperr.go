// Package apperr tags service failures with the kind of failure so handlers
// can report them consistently.
package apperr

import (
	"errors"
	"fmt"

	"cafeDesk/pkg/validator"
)

type Kind int

const (
	KindGateway Kind = iota
	KindValidation
	KindUpload
	KindNotFound
	KindPermissionDenied
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpload:
		return "upload"
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "gateway"
	}
}

type Error struct {
	Kind   Kind
	Op     string
	Msg    string
	Fields validator.FieldErrors
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the text shown to the user: Msg when set, otherwise the
// underlying error text.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// Validation wraps a validator result. Non field errors are kept as Err.
func Validation(op string, err error) *Error {
	e := &Error{Kind: KindValidation, Op: op, Msg: "validation failed"}
	var fields validator.FieldErrors
	if errors.As(err, &fields) {
		e.Fields = fields
	} else {
		e.Err = err
	}
	return e
}

func Upload(op string, err error) *Error {
	return &Error{Kind: KindUpload, Op: op, Err: err}
}

func Gateway(op string, err error) *Error {
	return &Error{Kind: KindGateway, Op: op, Err: err}
}

func NotFound(op, msg string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg}
}

func PermissionDenied(op, msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Op: op, Msg: msg}
}

func Unauthorized(op, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Op: op, Msg: msg}
}

// KindOf returns the kind of err, KindGateway for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGateway
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
