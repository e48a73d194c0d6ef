package llmadapter

import (
	"regexp"
	"strconv"
	"strings"
)

var statusCodePattern = regexp.MustCompile(`(?i)(?:status(?: code)?|http|error)[:\s]+([45]\d\d)\b`)

var networkPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"broken pipe",
	"unexpected eof",
	"i/o timeout",
	"tls handshake timeout",
}

var providerStatusPatterns = map[string]int{
	"rate_limit_exceeded":     429,
	"resource_exhausted":      429,
	"too many requests":       429,
	"overloaded_error":        503,
	"service unavailable":     503,
	"invalid_api_key":         401,
	"authentication_error":    401,
	"permission_denied":       403,
	"model_not_found":         404,
	"context_length_exceeded": 400,
}

// ErrorParser classifies raw provider errors into *Error values.
type ErrorParser struct {
	provider string
}

func NewErrorParser(provider string) *ErrorParser {
	return &ErrorParser{provider: provider}
}

// ParseError returns nil when err carries no recognizable signal.
func (p *ErrorParser) ParseError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if m := statusCodePattern.FindStringSubmatch(msg); len(m) == 2 {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil {
			return NewError(code, msg, p.provider, err)
		}
	}
	for pattern, code := range providerStatusPatterns {
		if strings.Contains(lower, pattern) {
			return NewError(code, msg, p.provider, err)
		}
	}
	for _, pattern := range networkPatterns {
		if strings.Contains(lower, pattern) {
			e := NewError(0, msg, p.provider, err)
			e.Network = true
			return e
		}
	}
	return nil
}
