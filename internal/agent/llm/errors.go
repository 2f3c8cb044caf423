package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Kind classifies a failed completion call.
type Kind string

const (
	KindTimeout Kind = "timeout"
	KindGeneric Kind = "generic"
)

// Error is returned once every attempt of a call failed. Kind describes the
// last failure.
type Error struct {
	Kind     Kind
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v (%s after %d attempt(s))", e.Err, e.Kind, e.Attempts)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a completion failure classified as a timeout.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTimeout
}

func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && isTimeoutStatus(apiErr.HTTPStatusCode) {
		return KindTimeout
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && isTimeoutStatus(reqErr.HTTPStatusCode) {
		return KindTimeout
	}
	return KindGeneric
}

func isTimeoutStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout
}
