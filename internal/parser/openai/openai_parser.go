package openai

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
	apiURL        = "https://api.openai.com/v1/chat/completions"
	defaultModel  = "gpt-4o"
	defaultTokens = 8000
)

func init() {
	parser.RegisterProvider("openai", func(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
		return NewParser(cfg), nil
	})
}

// Parser implements port.DocumentParser using the OpenAI Chat Completions API.
type Parser struct {
	apiKey      string
	model       string
	endpoint    string
	maxRetries  int
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewParser creates an OpenAI-based timetable parser from a provider config.
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

	userContent, err := buildUserContent(input, prompt.User)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	reqBody := map[string]interface{}{
		"model":       p.model,
		"max_tokens":  p.maxTokens,
		"temperature": p.temperature,
		"messages": []map[string]interface{}{
			{"role": "system", "content": prompt.System},
			{"role": "user", "content": userContent},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	respBody, err := parser.PostJSON(ctx, p.client, parser.Request{
		Provider:   "openai",
		Endpoint:   p.endpoint,
		Headers:    map[string]string{"Authorization": "Bearer " + p.apiKey},
		Body:       reqBody,
		MaxRetries: p.maxRetries,
	})
	if err != nil {
		return nil, err
	}

	return parseResponse(respBody, p.model, prompt.Combined())
}

// buildUserContent returns a plain string for text sources and a list of
// content parts for images and PDFs.
func buildUserContent(input port.ParseInput, prompt string) (interface{}, error) {
	if input.IsText() {
		return prompt, nil
	}

	encoded := base64.StdEncoding.EncodeToString(input.FileBytes)
	dataURI := fmt.Sprintf("data:%s;base64,%s", input.ContentType, encoded)

	var blocks []map[string]interface{}
	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})

	switch input.ContentType {
	case "application/pdf":
		name := input.FileName
		if name == "" {
			name = "timetable.pdf"
		}
		blocks = append(blocks, map[string]interface{}{
			"type": "file",
			"file": map[string]interface{}{
				"filename":  name,
				"file_data": dataURI,
			},
		})
	case "image/jpeg", "image/png":
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		})
	default:
		return nil, fmt.Errorf("unsupported content type for parsing: %s", input.ContentType)
	}

	return blocks, nil
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.ParseOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("finish_reason length: %w", parser.ErrOutputTruncated)
	}

	raw, err := parser.ExtractJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &port.ParseOutput{
		RawJSON:    raw,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}
