// Package textextract converts word-processing uploads into plain text for
// the text extraction prompt.
package textextract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tsawler/tabula/docx"

	"timetabler/internal/domain"
	"timetabler/internal/logger"
)

// DocxExtractor reads .docx files with tabula. Uploads are written to a
// temporary file for the reader and removed before returning.
type DocxExtractor struct {
	tempDir string
	log     zerolog.Logger
}

// NewDocxExtractor creates an extractor writing temporary files to tempDir.
func NewDocxExtractor(tempDir string, log zerolog.Logger) *DocxExtractor {
	return &DocxExtractor{
		tempDir: tempDir,
		log:     logger.Component(log, "textextract"),
	}
}

// ExtractText returns the paragraph text of the document followed by the
// contents of its tables, one row per line with tab separated cells.
func (e *DocxExtractor) ExtractText(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(fileName), ".doc") {
		return "", fmt.Errorf("%w: legacy .doc files are not supported, save as .docx", domain.ErrTextExtractionFailed)
	}

	tmp, err := os.CreateTemp(e.tempDir, "timetable-*.docx")
	if err != nil {
		return "", fmt.Errorf("textextract.ExtractText: creating temp file: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			e.log.Warn().Err(rmErr).Str("path", path).Msg("removing temp file")
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("textextract.ExtractText: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("textextract.ExtractText: closing temp file: %w", err)
	}

	r, err := docx.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTextExtractionFailed, err)
	}
	defer func() { _ = r.Close() }()

	paragraphs, err := r.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTextExtractionFailed, err)
	}

	tables, err := tableText(data)
	if err != nil {
		e.log.Debug().Err(err).Str("file", fileName).Msg("reading table text")
	}

	text := strings.TrimSpace(strings.TrimSpace(paragraphs) + "\n\n" + tables)
	if text == "" {
		return "", fmt.Errorf("%w: document contains no text", domain.ErrTextExtractionFailed)
	}

	e.log.Debug().Str("file", fileName).Int("chars", len(text)).Msg("extracted document text")
	return text, nil
}

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// tableText walks word/document.xml and renders every table cell. Nested
// tables are flattened into their parent cell.
func tableText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}
	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	var (
		out      strings.Builder
		depth    int
		row      []string
		cell     strings.Builder
		inText   bool
		cellOpen bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out.String(), err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				depth++
			case "tr":
				if depth == 1 {
					row = row[:0]
				}
			case "tc":
				if depth == 1 {
					cell.Reset()
					cellOpen = true
				}
			case "p":
				if cellOpen && cell.Len() > 0 {
					cell.WriteString(" ")
				}
			case "t":
				inText = cellOpen
			case "tab":
				if cellOpen {
					cell.WriteString(" ")
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				depth--
				if depth == 0 {
					out.WriteString("\n")
				}
			case "tr":
				if depth == 1 {
					out.WriteString(strings.Join(row, "\t"))
					out.WriteString("\n")
				}
			case "tc":
				if depth == 1 {
					row = append(row, strings.TrimSpace(cell.String()))
					cellOpen = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cell.Write(t)
			}
		}
	}
	return strings.TrimRight(out.String(), "\n"), nil
}
