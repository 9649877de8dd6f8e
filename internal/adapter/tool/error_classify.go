package tool

import (
	"errors"
	"strings"

	"flashback-query/internal/domain"
)

// retryablePatterns are substrings in error messages that indicate transient
// failures. Checked case-insensitively, and only for errors that carry no
// domain sentinel of their own.
var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"deadline exceeded",
	"temporarily unavailable",
	"service unavailable",
	"try again",
}

// classifyToolError returns true if the error is transient and the tool call
// may succeed on retry. Errors carrying a domain sentinel are classified by
// the sentinel alone; anything else falls back to message matching. Returns
// false for nil, permanent, or unknown errors.
func classifyToolError(err error) bool {
	if err == nil {
		return false
	}

	// A DomainError has already been classified at the source; do not let
	// backend-provided text (e.g. a 503 body) override it.
	var de *domain.DomainError
	if errors.As(err, &de) {
		return domain.IsRetryableError(de)
	}
	if domain.IsRetryableError(err) {
		return true
	}

	lower := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}

	return false
}
