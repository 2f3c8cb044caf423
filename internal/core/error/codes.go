package errx

import (
	"fmt"
	"net/http"
)

// Code is the machine-readable error code returned to callers.
type Code string

const (
	CodeInvalidPhase        Code = "INVALID_PHASE"
	CodeMissingUserText     Code = "MISSING_USER_TEXT"
	CodeMissingActionResult Code = "MISSING_ACTION_RESULT"
	CodeInvalidRequest      Code = "INVALID_REQUEST"
	CodeLLMError            Code = "LLM_ERROR"
	CodeLLMTimeout          Code = "LLM_TIMEOUT"
	CodeInternal            Code = "INTERNAL_ERROR"
)

// maxDetailLen bounds provider error text echoed back to callers.
const maxDetailLen = 80

// BadRequest builds a 400 error for a rejected request shape.
func BadRequest(code Code, message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message, Code: code}
}

// Unprocessable builds a 422 error for a request that failed field validation.
func Unprocessable(err error) *AppError {
	return &AppError{
		Err:     err,
		Status:  http.StatusUnprocessableEntity,
		Message: "invalid request",
		Code:    CodeInvalidRequest,
	}
}

// WrapLLM maps a completion failure to 503 when the provider timed out and to
// 500 otherwise. The provider message is truncated.
func WrapLLM(err error, timeout bool) *AppError {
	if err == nil {
		return nil
	}
	if timeout {
		return &AppError{
			Err:     err,
			Status:  http.StatusServiceUnavailable,
			Message: fmt.Sprintf("LLM timeout: %s", Truncate(err.Error(), maxDetailLen)),
			Code:    CodeLLMTimeout,
		}
	}
	return &AppError{
		Err:     err,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("LLM error: %s", Truncate(err.Error(), maxDetailLen)),
		Code:    CodeLLMError,
	}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
