package parser_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"timetabler/internal/parser"
	"timetabler/internal/port"
	"timetabler/mocks"
)

func fallbackOutput(model string) *port.ParseOutput {
	return &port.ParseOutput{
		RawJSON:    json.RawMessage(`{"days":[]}`),
		ModelUsed:  model,
		PromptUsed: "test prompt",
	}
}

var imageInput = port.ParseInput{FileBytes: []byte("test"), ContentType: "image/png", FileName: "week.png"}

func TestFallbackParser_FirstSucceeds(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	p1.On("Parse", mock.Anything, imageInput).Return(fallbackOutput("claude"), nil)

	fp := parser.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"claude", "gemini"}, zerolog.Nop())

	result, err := fp.Parse(context.Background(), imageInput)

	require.NoError(t, err)
	assert.Equal(t, "claude", result.ModelUsed)
	p2.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestFallbackParser_FirstFails_SecondSucceeds(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	p1.On("Parse", mock.Anything, imageInput).Return(nil, errors.New("generic error"))
	p2.On("Parse", mock.Anything, imageInput).Return(fallbackOutput("gemini"), nil)

	fp := parser.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"claude", "gemini"}, zerolog.Nop())

	result, err := fp.Parse(context.Background(), imageInput)

	require.NoError(t, err)
	assert.Equal(t, "gemini", result.ModelUsed)
}

func TestFallbackParser_RateLimitedProviderSkippedOnNextCall(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	rlErr := parser.NewRateLimitError("claude", errors.New("429"), 60)
	p1.On("Parse", mock.Anything, imageInput).Return(nil, rlErr).Once()
	p2.On("Parse", mock.Anything, imageInput).Return(fallbackOutput("gemini"), nil).Twice()

	fp := parser.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"claude", "gemini"}, zerolog.Nop())

	_, err := fp.Parse(context.Background(), imageInput)
	require.NoError(t, err)

	result, err := fp.Parse(context.Background(), imageInput)
	require.NoError(t, err)
	assert.Equal(t, "gemini", result.ModelUsed)

	p1.AssertNumberOfCalls(t, "Parse", 1)
	p2.AssertNumberOfCalls(t, "Parse", 2)
}

func TestFallbackParser_AllRateLimited(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	p1.On("Parse", mock.Anything, imageInput).Return(nil, parser.NewRateLimitError("claude", errors.New("429"), 30))
	p2.On("Parse", mock.Anything, imageInput).Return(nil, parser.NewRateLimitError("gemini", errors.New("429"), 90))

	fp := parser.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"claude", "gemini"}, zerolog.Nop())

	_, err := fp.Parse(context.Background(), imageInput)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.LessOrEqual(t, rlErr.RetryAfter, 30*time.Second)

	// Both circuits are now open; no provider is called.
	_, err = fp.Parse(context.Background(), imageInput)
	require.True(t, errors.As(err, &rlErr))
	p1.AssertNumberOfCalls(t, "Parse", 1)
	p2.AssertNumberOfCalls(t, "Parse", 1)
}

func TestFallbackParser_AllFail(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	p1.On("Parse", mock.Anything, imageInput).Return(nil, parser.NewRateLimitError("claude", errors.New("429"), 30))
	p2.On("Parse", mock.Anything, imageInput).Return(nil, errors.New("bad gateway"))

	fp := parser.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"claude", "gemini"}, zerolog.Nop())

	_, err := fp.Parse(context.Background(), imageInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all parsers failed")
	assert.Contains(t, err.Error(), "bad gateway")
	var rlErr *parser.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackParser_HardFailureBeforeRateLimit(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	p1.On("Parse", mock.Anything, imageInput).Return(nil, errors.New("bad gateway"))
	p2.On("Parse", mock.Anything, imageInput).Return(nil, parser.NewRateLimitError("gemini", errors.New("429"), 30))

	fp := parser.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"claude", "gemini"}, zerolog.Nop())

	_, err := fp.Parse(context.Background(), imageInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad gateway")
	var rlErr *parser.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackParser_StopsOnCancelledContext(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	ctx, cancel := context.WithCancel(context.Background())
	p1.On("Parse", mock.Anything, imageInput).Run(func(mock.Arguments) { cancel() }).Return(nil, context.Canceled)

	fp := parser.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"claude", "gemini"}, zerolog.Nop())

	_, err := fp.Parse(ctx, imageInput)

	assert.ErrorIs(t, err, context.Canceled)
	p2.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}
