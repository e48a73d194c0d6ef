package llmadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
)

// Error is a classified provider failure.
type Error struct {
	StatusCode int
	Message    string
	Provider   string
	Network    bool
	Err        error
}

func NewError(statusCode int, message, provider string, err error) *Error {
	return &Error{StatusCode: statusCode, Message: message, Provider: provider, Err: err}
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether another attempt could succeed.
func (e *Error) IsRetryable() bool {
	if e.Network {
		return true
	}
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

var transientPattern = regexp.MustCompile(`(?i)(timeout|temporarily|try again|overloaded|rate limit)`)

// IsRetryable classifies any error returned by an LLMClient.
// Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.IsRetryable()
	}
	return transientPattern.MatchString(err.Error())
}
