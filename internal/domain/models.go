package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Timetable is a stored extraction: the source upload, the model that read
// it, and the normalized document.
type Timetable struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	Title        string           `db:"title" json:"title"`
	OriginalName string           `db:"original_name" json:"original_name"`
	FileType     FileType         `db:"file_type" json:"file_type"`
	FileSize     int64            `db:"file_size" json:"file_size"`
	S3Bucket     string           `db:"s3_bucket" json:"-"`
	S3Key        string           `db:"s3_key" json:"-"`
	ParserModel  string           `db:"parser_model" json:"parser_model"`
	Status       ExtractionStatus `db:"status" json:"status"`
	ErrorMessage string           `db:"error_message" json:"error_message,omitempty"`
	Document     json.RawMessage  `db:"document" json:"document"`
	Warnings     json.RawMessage  `db:"warnings" json:"warnings"`
	DayCount     int              `db:"day_count" json:"day_count"`
	BlockCount   int              `db:"block_count" json:"block_count"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// Schedule decodes the stored normalized document.
func (t *Timetable) Schedule() (*ScheduleDocument, error) {
	var doc ScheduleDocument
	if len(t.Document) == 0 {
		return &doc, nil
	}
	if err := json.Unmarshal(t.Document, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
