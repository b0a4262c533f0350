package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindValidationFailed  Kind = "ValidationFailed"
	KindReferenceNotFound Kind = "ReferenceNotFound"
	KindNotFound          Kind = "NotFound"
	KindDuplicateEmail    Kind = "DuplicateEmail"
	KindConflict          Kind = "Conflict"
	KindForbidden         Kind = "Forbidden"
	KindUnexpected        Kind = "Unexpected"
)

// Error is a domain failure reported to the caller. Fields carries per-field
// validation messages keyed by the JSON field name.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidationFailed, Message: message, Fields: fields}
}

func ReferenceNotFound(entity string, id int64) *Error {
	return &Error{
		Kind:    KindReferenceNotFound,
		Message: fmt.Sprintf("%s not found with id: %d", entity, id),
	}
}

func NotFound(entity string, id int64) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found with ID: %d", entity, id),
	}
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "Admin access required"
	}
	return New(KindForbidden, message)
}

func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: "An unexpected error occurred", Err: err}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports Unexpected for anything that is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnexpected
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidationFailed, KindReferenceNotFound:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateEmail, KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
