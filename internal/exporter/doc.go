// Package exporter writes analysis reports to disk.
//
// Every report is flattened into a fixed list of tables (ReportTables):
// summary, comparison, build statistics and, for each period, monthly
// revenue, category and state revenue, review distributions and order
// status. The same tables feed both formats:
//
// CSVWriter: one CSV file per table plus a streamed sales_facts.csv, with a
// UTF-8 BOM for Excel.
//
// WorkbookWriter: a single XLSX workbook with one sheet per table and a
// streamed "Sales Facts" sheet.
//
// Exports of a run are written to analysis_<run id> below the reports
// directory.
//
// Example usage:
//
//	exp := exporter.NewExporter(paths, logger)
//	formats, err := exporter.ParseFormats("csv,xlsx")
//	if err != nil {
//	    return err
//	}
//	files, err := exp.Export(ctx, result.Report, result.Facts, formats)
package exporter
