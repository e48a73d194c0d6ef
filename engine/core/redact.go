package core

import (
	"regexp"
	"strings"
)

var (
	bearerTokenRe = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-\._~\+\/]+=*`)
	kvSecretRe    = regexp.MustCompile(
		`(?i)(api[_-]?key|x-api-key|token|secret|password|access_token)\s*[:=]\s*["']?[^"'\s&]+["']?`,
	)
	providerKeyRe = regexp.MustCompile(
		`\b(sk-[A-Za-z0-9_\-]{16,}|sk-ant-[A-Za-z0-9_\-]{16,}|gsk_[A-Za-z0-9]{16,}|AIza[A-Za-z0-9_\-]{20,})\b`,
	)
	queryKeyRe = regexp.MustCompile(`(?i)([?&]key=)[^&\s]+`)
)

// RedactString trims, scrubs provider credentials and caps the length of s.
func RedactString(s string) string {
	const maxLen = 512
	s = strings.TrimSpace(s)
	s = providerKeyRe.ReplaceAllString(s, "[REDACTED]")
	s = bearerTokenRe.ReplaceAllString(s, "$1[REDACTED]")
	s = queryKeyRe.ReplaceAllString(s, "$1[REDACTED]")
	s = kvSecretRe.ReplaceAllString(s, "$1=[REDACTED]")
	if len(s) > maxLen {
		s = s[:maxLen] + "…"
	}
	return s
}

// RedactError applies RedactString to an error, returning an empty string when nil.
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	return RedactString(err.Error())
}
