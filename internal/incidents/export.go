package incidents

import (
	"fmt"
	"io"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ExportSheet is the worksheet name used by WriteWorkbook.
const ExportSheet = "Incidents"

// ExportContentType is the MIME type of an XLSX workbook.
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHeader is the first row of an export, one cell per column.
var ExportHeader = []string{
	"ID",
	"Title",
	"Service",
	"Severity",
	"Status",
	"Owner",
	"Summary",
	"Created At",
	"Updated At",
}

var exportColumnWidths = []float64{38, 40, 20, 18, 12, 20, 60, 22, 22}

// WriteWorkbook renders incidents as an XLSX workbook into w.
func WriteWorkbook(w io.Writer, incidents []domain.Incident) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(ExportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, width := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(ExportSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := writeRow(f, 1, toAny(ExportHeader)); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(ExportHeader))
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}
	if err := f.SetCellStyle(ExportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}

	for i, inc := range incidents {
		row := []any{
			inc.ID,
			inc.Title,
			inc.Service,
			inc.Severity.Label(),
			inc.Status.Label(),
			deref(inc.Owner),
			deref(inc.Summary),
			inc.CreatedAt.UTC().Format(time.RFC3339),
			inc.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
