package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP translation at the handler boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindAlreadyProcessed
	KindAlreadyCancelled
)

// Error is the application error carried between service and handler layers.
// Repositories and services return these; handlers translate them to the
// response envelope exactly once.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the error kind to its response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindAlreadyProcessed, KindAlreadyCancelled:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidation reports a malformed input field.
func NewValidation(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Validation Error",
		Fields:  map[string]string{field: message},
	}
}

// NewUnauthorized reports a missing or unusable credential.
func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewForbidden reports an authenticated but unpermitted caller.
func NewForbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "Forbidden"}
}

// NewNotFound reports an absent entity; entity names the kind for the caller.
func NewNotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// NewItemsNotFound reports unresolvable catalog references, naming the kind.
func NewItemsNotFound(kind string) *Error {
	return &Error{Kind: KindNotFound, Message: "One or More " + kind + " not found"}
}

// NewConflict reports a request that contradicts itself or current state.
func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewAlreadyProcessed reports a transition attempt on a completed or failed order.
func NewAlreadyProcessed() *Error {
	return &Error{Kind: KindAlreadyProcessed, Message: "Order already processed"}
}

// NewAlreadyCancelled reports a transition attempt on a cancelled order.
func NewAlreadyCancelled() *Error {
	return &Error{Kind: KindAlreadyCancelled, Message: "Order already cancelled"}
}

// NewInternal wraps an unexpected failure. The caller-facing message stays
// generic; the cause is for server-side logs only.
func NewInternal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal Server Error", cause: cause}
}

// As extracts an *Error from err, or wraps err as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
