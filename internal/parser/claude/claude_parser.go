package claude

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"timetabler/internal/config"
	"timetabler/internal/parser"
	"timetabler/internal/port"
)

const (
	apiURL        = "https://api.anthropic.com/v1/messages"
	apiVersion    = "2023-06-01"
	defaultModel  = "claude-sonnet-4-20250514"
	defaultTokens = 8000
)

func init() {
	parser.RegisterProvider("claude", func(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
		return NewParser(cfg), nil
	})
}

// Parser implements port.DocumentParser using the Anthropic Messages API.
type Parser struct {
	apiKey      string
	model       string
	endpoint    string
	maxRetries  int
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewParser creates a Claude-based timetable parser from a provider config.
func NewParser(cfg *config.ParserProviderConfig) *Parser {
	return newParser(cfg, apiURL)
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

	contentBlocks, err := buildContentBlocks(input, prompt.User)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	reqBody := map[string]interface{}{
		"model":       p.model,
		"max_tokens":  p.maxTokens,
		"temperature": p.temperature,
		"system":      prompt.System,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
	}

	respBody, err := parser.PostJSON(ctx, p.client, parser.Request{
		Provider: "claude",
		Endpoint: p.endpoint,
		Headers: map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": apiVersion,
		},
		Body:       reqBody,
		MaxRetries: p.maxRetries,
	})
	if err != nil {
		return nil, err
	}

	return parseResponse(respBody, p.model, prompt.Combined())
}

func buildContentBlocks(input port.ParseInput, prompt string) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	if !input.IsText() {
		encoded := base64.StdEncoding.EncodeToString(input.FileBytes)
		switch input.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "document",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": "application/pdf",
					"data":       encoded,
				},
			})
		case "image/jpeg", "image/png":
			blocks = append(blocks, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": input.ContentType,
					"data":       encoded,
				},
			})
		default:
			return nil, fmt.Errorf("unsupported content type for parsing: %s", input.ContentType)
		}
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})

	return blocks, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model, prompt string) (*port.ParseOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("stop_reason max_tokens: %w", parser.ErrOutputTruncated)
	}

	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	raw, err := parser.ExtractJSON(text.String())
	if err != nil {
		return nil, err
	}

	return &port.ParseOutput{
		RawJSON:    raw,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}
