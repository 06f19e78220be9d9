// Package export renders normalized timetables as CSV or XLSX.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"timetabler/internal/domain"
)

// columns defines the header row shared by both formats.
var columns = []string{
	"Day",
	"Start Time",
	"End Time",
	"Duration",
	"Event",
	"Subjects",
	"Teacher",
	"Room",
	"Notes",
	"Recurring",
	"Split",
}

// Columns returns a copy of the header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// Rows flattens doc into one row per block, in day order.
func Rows(doc *domain.ScheduleDocument) [][]string {
	if doc == nil {
		return nil
	}
	var rows [][]string
	for _, day := range doc.Days {
		for i := range day.Blocks {
			rows = append(rows, blockToRow(day.Day, &day.Blocks[i]))
		}
	}
	return rows
}

func blockToRow(day string, b *domain.ScheduleBlock) []string {
	return []string{
		day,
		b.StartTime,
		b.EndTime,
		b.Duration,
		b.Event,
		strings.Join(b.Subjects, ", "),
		b.Teacher,
		b.Room,
		b.Notes,
		formatBool(b.IsRecurring),
		formatBool(b.IsSplit),
	}
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// ParseFormat validates a requested export format. Empty means CSV.
func ParseFormat(s string) (domain.ExportFormat, error) {
	switch f := domain.ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", domain.ExportFormatCSV:
		return domain.ExportFormatCSV, nil
	case domain.ExportFormatXLSX:
		return domain.ExportFormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, s)
	}
}

// ContentType returns the MIME type of an export format.
func ContentType(f domain.ExportFormat) string {
	if f == domain.ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write renders doc to w in the given format.
func Write(w io.Writer, f domain.ExportFormat, doc *domain.ScheduleDocument) error {
	switch f {
	case domain.ExportFormatCSV:
		return WriteCSV(w, doc)
	case domain.ExportFormatXLSX:
		return WriteXLSX(w, doc)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, f)
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a title for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "timetable"
	}
	return s
}

// BuildFilename returns {sanitized_title}_{YYYY-MM-DD}.{format}.
func BuildFilename(title string, f domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(title), now.Format("2006-01-02"), f)
}
