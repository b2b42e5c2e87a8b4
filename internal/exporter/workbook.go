package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ecomcli/pkg/contracts/domain"
)

// FactsSheet is the workbook sheet holding the fact table
const FactsSheet = "Sales Facts"

// WorkbookWriter writes report tables into an XLSX workbook, one sheet per
// table
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write saves tables and the fact table to path
func (w *WorkbookWriter) Write(path string, tables []Table, facts domain.FactTable) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), t.Title)
		} else {
			_, err = f.NewSheet(t.Title)
		}
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Title, err)
		}
		if err := writeSheet(f, t, header); err != nil {
			return err
		}
	}

	if err := writeFactsSheet(f, facts, header); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Debug("Workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(tables)+1),
		slog.Int("fact_rows", facts.Len()))
	return nil
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	if err := f.SetSheetRow(t.Title, "A1", &t.Headers); err != nil {
		return fmt.Errorf("failed to write %s headers: %w", t.Title, err)
	}
	if err := f.SetRowStyle(t.Title, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := cellValues(row)
		if err := f.SetSheetRow(t.Title, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", t.Title, i, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(t.Title, "A", last, 18)
}

// writeFactsSheet streams the fact table, which can be large
func writeFactsSheet(f *excelize.File, facts domain.FactTable, headerStyle int) error {
	if _, err := f.NewSheet(FactsSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(FactsSheet)
	if err != nil {
		return err
	}

	headers := FactHeaders(facts.Columns)
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return err
	}

	for i, r := range facts.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cellValues(FactValues(r, facts.Columns))); err != nil {
			return fmt.Errorf("failed to write fact row %d: %w", i, err)
		}
	}

	return sw.Flush()
}

// cellValues converts table values into types excelize stores natively
func cellValues(row []any) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case decimal.Decimal:
			out[i] = x.InexactFloat64()
		case time.Time:
			out[i] = formatTime(x)
		default:
			out[i] = v
		}
	}
	return out
}
