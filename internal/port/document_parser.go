package port

import (
	"context"
	"encoding/json"
)

// ParseInput carries the data needed for timetable extraction. Text is set
// for sources already converted to text; otherwise FileBytes holds the
// original image or PDF.
type ParseInput struct {
	FileBytes   []byte
	ContentType string
	FileName    string
	Text        string
}

// IsText reports whether the input should be sent to the model as text.
func (in ParseInput) IsText() bool {
	return in.Text != ""
}

// ParseOutput contains the raw JSON produced by an LLM parser.
type ParseOutput struct {
	RawJSON         json.RawMessage
	ModelUsed       string
	PromptUsed      string
	FieldProvenance map[string]string // which model provided the result (populated in dual parse mode)
	SecondaryModel  string            // secondary model used (dual parse mode)
}

// DocumentParser abstracts LLM-based timetable extraction.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
