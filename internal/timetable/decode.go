package timetable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"timetabler/internal/domain"
)

var (
	fenceOpenRe  = regexp.MustCompile("```json\\s*")
	fenceCloseRe = regexp.MustCompile("```\\s*")
)

// CleanJSON returns raw as-is when it is valid JSON. Otherwise it trims the
// text and strips markdown code fences, which models add despite being told
// not to, and returns the result if that is valid JSON.
func CleanJSON(raw []byte) ([]byte, error) {
	if json.Valid(raw) {
		return raw, nil
	}
	cleaned := bytes.TrimSpace(raw)
	cleaned = fenceOpenRe.ReplaceAll(cleaned, nil)
	cleaned = fenceCloseRe.ReplaceAll(cleaned, nil)
	if !json.Valid(cleaned) {
		var probe any
		err := json.Unmarshal(cleaned, &probe)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedExtraction, err)
	}
	return cleaned, nil
}

// Decode converts raw model output into a typed schedule document. Output
// that is not a JSON object matching the document shape yields an error
// wrapping domain.ErrMalformedExtraction.
func Decode(raw []byte) (*domain.ScheduleDocument, error) {
	cleaned, err := CleanJSON(raw)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(cleaned), []byte("null")) {
		return nil, fmt.Errorf("%w: empty result", domain.ErrMalformedExtraction)
	}
	var doc domain.ScheduleDocument
	if err := json.Unmarshal(cleaned, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedExtraction, err)
	}
	return &doc, nil
}

// Stats returns the number of days and blocks in doc.
func Stats(doc *domain.ScheduleDocument) (days, blocks int) {
	if doc == nil {
		return 0, 0
	}
	for _, d := range doc.Days {
		blocks += len(d.Blocks)
	}
	return len(doc.Days), blocks
}
