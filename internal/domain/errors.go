package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"

	// Quiz specific errors
	CodeQuizNotFound      ErrorCode = "QUIZ_NOT_FOUND"
	CodeDownloadFailed    ErrorCode = "DOWNLOAD_FAILED"
	CodeFilesystem        ErrorCode = "FILESYSTEM_ERROR"
	CodeTranscription     ErrorCode = "TRANSCRIPTION_FAILED"
	CodeLLMServiceError   ErrorCode = "LLM_SERVICE_ERROR"
	CodeInvalidQuizOutput ErrorCode = "INVALID_QUIZ_OUTPUT"
	CodeCancelled         ErrorCode = "GENERATION_CANCELLED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on the code so errors.Is(err, &DomainError{Code: X}) works.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail that is rendered to clients.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &DomainError{Code: code})
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewDownloadError(message string, err error) *DomainError {
	return NewError(CodeDownloadFailed, message, err)
}

func NewFilesystemError(message string, err error) *DomainError {
	return NewError(CodeFilesystem, message, err)
}

func NewTranscriptionError(err error) *DomainError {
	return NewError(CodeTranscription, "Failed to transcribe audio", err)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", err)
}

func NewInvalidQuizOutputError(attempts int, err error) *DomainError {
	return NewError(CodeInvalidQuizOutput,
		fmt.Sprintf("Quiz generator returned no valid quiz after %d attempts", attempts), err).
		WithContext("attempts", attempts)
}

// NewCancelledError reports a generation step stopped by its context.
func NewCancelledError(ctxErr error) *DomainError {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return NewError(CodeCancelled, "Quiz generation timed out", ctxErr)
	}
	return NewError(CodeCancelled, "Quiz generation was cancelled", ctxErr)
}

// FieldError is a single field level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors and renders as a field -> messages map.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields groups messages by field name, preserving order within a field.
func (v ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(v))
	for _, fe := range v {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func NewBlankFieldError(field string) *FieldError {
	return NewFieldError(field, "This field may not be blank.")
}

func NewOutOfRangeError(field string, value, min, max int) *FieldError {
	return NewFieldError(field, fmt.Sprintf("Value %d is out of range [%d, %d]", value, min, max))
}
