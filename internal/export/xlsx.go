package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"timetabler/internal/domain"
)

const (
	blocksSheet = "Timetable"
	gridSheet   = "Week"
)

// WriteXLSX writes a workbook with two sheets: the flat block list and a
// week view with one column per day.
func WriteXLSX(w io.Writer, doc *domain.ScheduleDocument) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), blocksSheet); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: style: %w", err)
	}

	if err := writeBlocksSheet(f, doc, headerStyle); err != nil {
		return err
	}
	if err := writeGridSheet(f, doc, headerStyle); err != nil {
		return err
	}

	if doc != nil && doc.Title != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: doc.Title, Creator: "timetabler"}); err != nil {
			return fmt.Errorf("export.WriteXLSX: doc props: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export.WriteXLSX: write: %w", err)
	}
	return nil
}

func writeBlocksSheet(f *excelize.File, doc *domain.ScheduleDocument, headerStyle int) error {
	if err := setRow(f, blocksSheet, 1, columns); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(blocksSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("export.WriteXLSX: header style: %w", err)
	}
	for i, row := range Rows(doc) {
		if err := setRow(f, blocksSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(blocksSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("export.WriteXLSX: panes: %w", err)
	}
	return nil
}

// writeGridSheet lays days out as columns with one cell per block, reading
// "HH:MM-HH:MM Event".
func writeGridSheet(f *excelize.File, doc *domain.ScheduleDocument, headerStyle int) error {
	if _, err := f.NewSheet(gridSheet); err != nil {
		return fmt.Errorf("export.WriteXLSX: sheet: %w", err)
	}
	if doc == nil {
		return nil
	}
	for col, day := range doc.Days {
		header, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(gridSheet, header, day.Day); err != nil {
			return fmt.Errorf("export.WriteXLSX: grid: %w", err)
		}
		if err := f.SetCellStyle(gridSheet, header, header, headerStyle); err != nil {
			return fmt.Errorf("export.WriteXLSX: grid style: %w", err)
		}
		for row, b := range day.Blocks {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(gridSheet, cell, gridLabel(&b)); err != nil {
				return fmt.Errorf("export.WriteXLSX: grid: %w", err)
			}
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(gridSheet, colName, colName, 28); err != nil {
			return fmt.Errorf("export.WriteXLSX: grid width: %w", err)
		}
	}
	return nil
}

func gridLabel(b *domain.ScheduleBlock) string {
	switch {
	case b.StartTime != "" && b.EndTime != "":
		return fmt.Sprintf("%s-%s %s", b.StartTime, b.EndTime, b.Event)
	case b.StartTime != "":
		return fmt.Sprintf("%s %s", b.StartTime, b.Event)
	default:
		return b.Event
	}
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("export.WriteXLSX: row %d: %w", row, err)
	}
	return nil
}
