package parser_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetabler/internal/domain"
	"timetabler/internal/parser"
)

func TestPostJSON_RetriesServerErrors(t *testing.T) {
	defer parser.SetRetryBackoff(time.Millisecond)()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := parser.PostJSON(context.Background(), server.Client(), parser.Request{
		Provider:   "test",
		Endpoint:   server.URL,
		Headers:    map[string]string{"X-Key": "secret"},
		Body:       map[string]string{"a": "b"},
		MaxRetries: 2,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostJSON_GivesUpAfterMaxRetries(t *testing.T) {
	defer parser.SetRetryBackoff(time.Millisecond)()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := parser.PostJSON(context.Background(), server.Client(), parser.Request{
		Provider: "test", Endpoint: server.URL, Body: map[string]string{}, MaxRetries: 1,
	})

	var statusErr *parser.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPostJSON_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	}))
	defer server.Close()

	_, err := parser.PostJSON(context.Background(), server.Client(), parser.Request{
		Provider: "test", Endpoint: server.URL, Body: map[string]string{}, MaxRetries: 3,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostJSON_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := parser.PostJSON(context.Background(), server.Client(), parser.Request{
		Provider: "test", Endpoint: server.URL, Body: map[string]string{}, MaxRetries: 3,
	})

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "test", rlErr.Provider)
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)
}

func TestExtractJSON_StripsFences(t *testing.T) {
	raw, err := parser.ExtractJSON("```json\n{\"title\":\"T\"}\n```")

	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T"}`, string(raw))
}

func TestExtractJSON_Invalid(t *testing.T) {
	_, err := parser.ExtractJSON("I could not read this timetable")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedExtraction)
	assert.Contains(t, err.Error(), "I could not read")
}
