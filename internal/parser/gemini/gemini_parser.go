package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"timetabler/internal/config"
	"timetabler/internal/parser"
	"timetabler/internal/port"
)

const (
	apiBaseURL    = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel  = "gemini-2.0-flash"
	defaultTokens = 8000
)

func init() {
	parser.RegisterProvider("gemini", func(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
		return NewParser(cfg), nil
	})
}

// Parser implements port.DocumentParser using Google's Gemini API.
type Parser struct {
	apiKey      string
	model       string
	endpoint    string
	maxRetries  int
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewParser creates a Gemini-based timetable parser.
func NewParser(cfg *config.ParserProviderConfig) *Parser {
	return newParser(cfg, "")
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	return newParser(cfg, endpoint)
}

func newParser(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultTokens
	}
	return &Parser{
		apiKey:      cfg.APIKey,
		model:       model,
		endpoint:    endpoint,
		maxRetries:  cfg.MaxRetries,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: parser.Timeout(cfg.TimeoutSecs)},
	}
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	prompt := parser.BuildPrompt(input)

	var parts []map[string]interface{}
	if !input.IsText() {
		mimeType, err := toGeminiMimeType(input.ContentType)
		if err != nil {
			return nil, err
		}
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(input.FileBytes),
			},
		})
	}
	parts = append(parts, map[string]interface{}{"text": prompt.User})

	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{{"text": prompt.System}},
		},
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  p.maxTokens,
			"temperature":      p.temperature,
		},
	}

	respBody, err := parser.PostJSON(ctx, p.client, parser.Request{
		Provider:   "gemini",
		Endpoint:   p.endpoint,
		Headers:    map[string]string{"x-goog-api-key": p.apiKey},
		Body:       reqBody,
		MaxRetries: p.maxRetries,
	})
	if err != nil {
		return nil, err
	}

	return parseResponse(respBody, p.model, prompt.Combined())
}

func toGeminiMimeType(contentType string) (string, error) {
	switch contentType {
	case "application/pdf", "image/jpeg", "image/png":
		return contentType, nil
	default:
		return "", fmt.Errorf("unsupported content type for parsing: %s", contentType)
	}
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model, prompt string) (*port.ParseOutput, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}

	if resp.Candidates[0].FinishReason == "MAX_TOKENS" {
		return nil, fmt.Errorf("finishReason MAX_TOKENS: %w", parser.ErrOutputTruncated)
	}

	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API: no parts")
	}

	raw, err := parser.ExtractJSON(resp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}

	return &port.ParseOutput{
		RawJSON:    raw,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}
