package domain

import "fmt"

type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeModelUnavailable ErrorCode = "MODEL_NOT_LOADED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
)

// ErrorKind is the closed set of values used for the error_type metric label.
// Keeping the set fixed bounds the label cardinality; raw error type names do
// not belong in labels.
type ErrorKind string

const (
	ErrKindModelNotLoaded  ErrorKind = "model_not_loaded"
	ErrKindModelNotTrained ErrorKind = "model_not_trained"
	ErrKindInference       ErrorKind = "inference_failed"
	ErrKindBadInput        ErrorKind = "bad_input"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code    ErrorCode
	Message string
	Fields  []FieldError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewValidationError(fields []FieldError) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "request validation failed",
		Fields:  fields,
	}
}

var (
	ErrModelNotLoaded = NewAppError(ErrCodeModelUnavailable, "model not loaded")
	ErrInvalidBody    = NewAppError(ErrCodeBadRequest, "invalid request body")
)

func NewInferenceError(err error) *AppError {
	return NewAppError(ErrCodeInternal, fmt.Sprintf("prediction failed: %v", err))
}

type ErrorResponse struct {
	Error struct {
		Code    ErrorCode    `json:"code"`
		Message string       `json:"message"`
		Fields  []FieldError `json:"fields,omitempty"`
	} `json:"error"`
}

func NewErrorResponse(err *AppError) ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = err.Code
	resp.Error.Message = err.Message
	resp.Error.Fields = err.Fields
	return resp
}
