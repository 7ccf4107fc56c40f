package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeBadRequest      ErrorCode = "BAD_REQUEST"
	CodePaymentFailed   ErrorCode = "PAYMENT_FAILED"
	CodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	CodeInternal        ErrorCode = "INTERNAL_SERVER_ERROR"
)

// AppError is the typed failure every service operation returns. The
// controller layer turns it into the error envelope.
type AppError struct {
	Code        ErrorCode
	Message     string
	HTTPCode    int
	FieldErrors map[string]string
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches copies produced by Wrap and WithFields against the sentinel
// they were derived from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}

	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap returns a copy of e carrying the underlying cause.
func (e *AppError) Wrap(err error) *AppError {
	c := *e
	c.Err = err

	return &c
}

func (e *AppError) WithFields(fields map[string]string) *AppError {
	c := *e
	c.FieldErrors = fields

	return &c
}

func Validation(message string, fields map[string]string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest).WithFields(fields)
}

func Internal(err error) *AppError {
	return &AppError{
		Code:     CodeInternal,
		Message:  "Internal server error",
		HTTPCode: http.StatusInternalServerError,
		Err:      err,
	}
}

// From converts any error into an AppError. Errors that are not already
// typed become INTERNAL_SERVER_ERROR.
func From(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return Internal(err)
}
