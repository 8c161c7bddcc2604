package serverutils

import (
	"author-be/internal/pkg/validation"
)

type Response[T any] struct {
	Success bool                   `json:"success"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Data    T                      `json:"data"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message, code string, details map[string]interface{}) Response[any] {
	return Response[any]{
		Success: false,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func ValidateRequest(req interface{}) error {
	return validation.Struct(req)
}
