package parser_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"timetabler/internal/parser"
)

func TestRateLimitError_ErrorString(t *testing.T) {
	rlErr := parser.NewRateLimitError("claude", fmt.Errorf("rate limited"), 30)

	assert.Contains(t, rlErr.Error(), "claude")
	assert.Contains(t, rlErr.Error(), "rate limited")
	assert.Contains(t, rlErr.Error(), "30s")
}

func TestRateLimitError_ErrorsAs(t *testing.T) {
	underlying := fmt.Errorf("rate limited")
	wrapped := fmt.Errorf("parse failed: %w", parser.NewRateLimitError("claude", underlying, 30))

	var target *parser.RateLimitError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "claude", target.Provider)
	assert.Equal(t, 30*time.Second, target.RetryAfter)
	assert.Equal(t, underlying, errors.Unwrap(target))
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	rlErr := parser.NewRateLimitError("openai", fmt.Errorf("err"), 0)

	assert.Equal(t, 60*time.Second, rlErr.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, parser.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, parser.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, parser.ParseRetryAfterHeader("invalid"))
}

func TestStatusError_Retryable(t *testing.T) {
	assert.True(t, (&parser.StatusError{StatusCode: 503}).Retryable())
	assert.False(t, (&parser.StatusError{StatusCode: 400}).Retryable())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", parser.Truncate("abc", 5))
	assert.Equal(t, "ab...", parser.Truncate("abcdef", 2))
}
