package export

import (
	"encoding/csv"
	"io"

	"timetabler/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first for Excel on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a BOM, the header row, and one row per block.
func WriteCSV(w io.Writer, doc *domain.ScheduleDocument) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	if err := cw.WriteAll(Rows(doc)); err != nil {
		return err
	}
	return cw.Error()
}
