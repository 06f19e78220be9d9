package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetabler/internal/config"
	"timetabler/internal/domain"
	"timetabler/internal/parser"
	"timetabler/internal/parser/openai"
	"timetabler/internal/port"
)

func newTestParser(serverURL string) *openai.Parser {
	return openai.NewParserWithEndpoint(&config.ParserProviderConfig{
		Provider:     "openai",
		APIKey:       "test-api-key",
		DefaultModel: "gpt-4o",
		TimeoutSecs:  30,
		MaxTokens:    8000,
		Temperature:  0.1,
	}, serverURL)
}

func chatResponse(content, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]interface{}{"content": content},
				"finish_reason": finishReason,
			},
		},
	}
}

func TestOpenAIParser_Parse_Image(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o", reqBody["model"])
		assert.Equal(t, float64(8000), reqBody["max_tokens"])
		assert.InDelta(t, 0.1, reqBody["temperature"], 0.0001)

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])

		content := messages[1].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 2)
		assert.Equal(t, "text", content[0].(map[string]interface{})["type"])
		imageBlock := content[1].(map[string]interface{})
		assert.Equal(t, "image_url", imageBlock["type"])
		url := imageBlock["image_url"].(map[string]interface{})["url"].(string)
		assert.Contains(t, url, "data:image/png;base64,")

		_ = json.NewEncoder(w).Encode(chatResponse(`{"title":"Week","days":[]}`, "stop"))
	}))
	defer server.Close()

	out, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("\x89PNG"),
		ContentType: "image/png",
		FileName:    "week.png",
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Week","days":[]}`, string(out.RawJSON))
	assert.Equal(t, "gpt-4o", out.ModelUsed)
	assert.NotEmpty(t, out.PromptUsed)
}

func TestOpenAIParser_Parse_Text(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		messages := reqBody["messages"].([]interface{})
		userContent, ok := messages[1].(map[string]interface{})["content"].(string)
		require.True(t, ok)
		assert.Contains(t, userContent, "Monday 09:00 Maths")

		_ = json.NewEncoder(w).Encode(chatResponse("```json\n{\"days\":[]}\n```", "stop"))
	}))
	defer server.Close()

	out, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{Text: "Monday 09:00 Maths"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"days":[]}`, string(out.RawJSON))
}

func TestOpenAIParser_Parse_PDFUsesFilePart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		messages := reqBody["messages"].([]interface{})
		content := messages[1].(map[string]interface{})["content"].([]interface{})
		fileBlock := content[1].(map[string]interface{})
		assert.Equal(t, "file", fileBlock["type"])
		assert.Equal(t, "term.pdf", fileBlock["file"].(map[string]interface{})["filename"])

		_ = json.NewEncoder(w).Encode(chatResponse(`{"days":[]}`, "stop"))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes: []byte("%PDF-1.4"), ContentType: "application/pdf", FileName: "term.pdf",
	})
	require.NoError(t, err)
}

func TestOpenAIParser_Parse_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse(`{"days":[`, "length"))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{Text: "x"})

	assert.ErrorIs(t, err, parser.ErrOutputTruncated)
}

func TestOpenAIParser_Parse_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse("Sorry, I cannot help with that.", "stop"))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{Text: "x"})

	assert.ErrorIs(t, err, domain.ErrMalformedExtraction)
}

func TestOpenAIParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "20")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{Text: "x"})

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
	assert.Equal(t, 20*time.Second, rlErr.RetryAfter)
}

func TestOpenAIParser_Parse_UnsupportedContentType(t *testing.T) {
	_, err := newTestParser("http://unused").Parse(context.Background(), port.ParseInput{
		FileBytes: []byte("x"), ContentType: "application/msword",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestOpenAIParser_Registered(t *testing.T) {
	assert.Contains(t, parser.Providers(), "openai")
}
