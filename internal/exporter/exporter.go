package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"ecomcli/internal/config"
	apperrors "ecomcli/internal/errors"
	"ecomcli/pkg/contracts/domain"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FactsFileName is the stem of the exported fact table
const FactsFileName = "sales_facts"

// ParseFormats parses a comma separated format list such as "csv,xlsx".
// Duplicates are collapsed; an empty list selects nothing.
func ParseFormats(s string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)

	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if f == "" || seen[f] {
			continue
		}
		if f != FormatCSV && f != FormatXLSX {
			return nil, apperrors.NewInvalidParameter(fmt.Sprintf("unsupported export format %q, expected csv or xlsx", part)).
				WithContext("format", part)
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// Exporter writes analysis reports below the reports directory
type Exporter struct {
	csv      *CSVWriter
	workbook *WorkbookWriter
	paths    *config.Paths
	logger   *slog.Logger
}

// NewExporter creates an exporter writing into paths.ReportsDir
func NewExporter(paths *config.Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		csv:      NewCSVWriter(paths, logger),
		workbook: NewWorkbookWriter(logger),
		paths:    paths,
		logger:   logger,
	}
}

// Export writes report and facts in every requested format into a
// directory named after the run and returns the files written
func (e *Exporter) Export(ctx context.Context, report *domain.AnalysisReport, facts domain.FactTable, formats []Format) ([]string, error) {
	var written []string

	for _, f := range formats {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		var files []string
		var err error
		switch f {
		case FormatCSV:
			files, err = e.ExportCSV(report, facts)
		case FormatXLSX:
			var path string
			path, err = e.ExportXLSX(report, facts)
			files = []string{path}
		}
		if err != nil {
			return written, fmt.Errorf("%s export failed: %w", f, err)
		}
		written = append(written, files...)
	}

	e.logger.InfoContext(ctx, "report exported",
		slog.String("run_id", report.RunID),
		slog.Int("files", len(written)))
	return written, nil
}

// ExportCSV writes one CSV file per report table plus the fact table
func (e *Exporter) ExportCSV(report *domain.AnalysisReport, facts domain.FactTable) ([]string, error) {
	dir := runDir(report)
	var written []string

	for _, t := range ReportTables(report) {
		records := make([][]string, 0, len(t.Rows))
		for _, row := range t.Rows {
			record := make([]string, len(row))
			for i, v := range row {
				record[i] = formatCell(v)
			}
			records = append(records, record)
		}

		path, err := e.csv.WriteSimpleCSV(filepath.Join(dir, t.Name+".csv"), t.Headers, records)
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", t.Name, err)
		}
		written = append(written, path)
	}

	path, err := e.exportFactsCSV(filepath.Join(dir, FactsFileName+".csv"), facts)
	if err != nil {
		return written, err
	}
	return append(written, path), nil
}

func (e *Exporter) exportFactsCSV(filePath string, facts domain.FactTable) (string, error) {
	stream, err := e.csv.CreateStreamWriter(filePath, FactHeaders(facts.Columns))
	if err != nil {
		return "", err
	}

	for i, r := range facts.Rows {
		values := FactValues(r, facts.Columns)
		record := make([]string, len(values))
		for j, v := range values {
			record[j] = formatCell(v)
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write fact row %d: %w", i, err)
		}
	}

	if err := stream.Close(); err != nil {
		return "", err
	}
	return stream.Path(), nil
}

// ExportXLSX writes the whole report as a single workbook
func (e *Exporter) ExportXLSX(report *domain.AnalysisReport, facts domain.FactTable) (string, error) {
	path := e.csv.resolvePath(filepath.Join(runDir(report), "analysis_report.xlsx"))
	if err := e.workbook.Write(path, ReportTables(report), facts); err != nil {
		return "", err
	}
	return path, nil
}

func runDir(report *domain.AnalysisReport) string {
	return "analysis_" + report.RunID
}
