package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindForbidden           Kind = "FORBIDDEN"
	KindBadRequest          Kind = "BAD_REQUEST"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindReferenceResolution Kind = "REFERENCE_RESOLUTION_ERROR"
)

// Sentinels for errors.Is matching; any *AppError of the same kind matches.
var (
	ErrNotFound            = &AppError{Kind: KindNotFound}
	ErrForbidden           = &AppError{Kind: KindForbidden}
	ErrBadRequest          = &AppError{Kind: KindBadRequest}
	ErrValidation          = &AppError{Kind: KindValidation}
	ErrReferenceResolution = &AppError{Kind: KindReferenceResolution}
)

type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, code, message string, details map[string]interface{}) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NotFound(code, message string) *AppError {
	return newError(KindNotFound, code, message, nil)
}

func Forbidden(code, message string) *AppError {
	return newError(KindForbidden, code, message, nil)
}

func BadRequest(code, message string, details map[string]interface{}) *AppError {
	return newError(KindBadRequest, code, message, details)
}

func Validation(message string, details map[string]interface{}) *AppError {
	return newError(KindValidation, "VALIDATION_FAILED", message, details)
}

func ReferenceResolution(message string, details map[string]interface{}) *AppError {
	return newError(KindReferenceResolution, "REFERENCE_UNRESOLVED", message, details)
}

// KindOf returns the kind of the first *AppError in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
