package port

import "context"

// TextExtractor pulls plain text out of word-processing documents.
type TextExtractor interface {
	ExtractText(ctx context.Context, fileName string, data []byte) (string, error)
}
