package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"ecomcli/internal/config"
	apperrors "ecomcli/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawTable is a header-indexed table of string cells
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewRawTable indexes header names. Header cells are trimmed.
func NewRawTable(name string, header []string, rows [][]string) *RawTable {
	t := &RawTable{
		Name:   name,
		Header: make([]string, len(header)),
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t
}

// Col returns the position of a column
func (t *RawTable) Col(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the header contains name
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require checks that every named column is in the header
func (t *RawTable) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewMalformedInput(
			fmt.Sprintf("%s: missing required column(s) %s", t.Name, strings.Join(missing, ", ")), nil).
			WithContext("table", t.Name)
	}
	return nil
}

// Cell returns the trimmed value at (row, col). Short rows read as empty.
func (t *RawTable) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ReadCSV parses a CSV stream whose first record is the header
func ReadCSV(r io.Reader, name string) (*RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", name), err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewMalformedInput(fmt.Sprintf("%s: invalid CSV", name), err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewMalformedInput(fmt.Sprintf("%s: file has no header", name), nil)
	}

	return NewRawTable(name, records[0], records[1:]), nil
}

// ReadXLSX reads the first sheet of a workbook
func ReadXLSX(path, name string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewMalformedInput(fmt.Sprintf("%s: failed to open workbook", name), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewMalformedInput(fmt.Sprintf("%s: workbook has no sheets", name), nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewMalformedInput(fmt.Sprintf("%s: failed to read sheet %q", name, sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewMalformedInput(fmt.Sprintf("%s: sheet has no header", name), nil)
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}
	return NewRawTable(name, header, rows[1:]), nil
}

// ReadTable reads a CSV or XLSX file depending on its extension
func ReadTable(path, name string) (*RawTable, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return ReadXLSX(path, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f, name)
}

// RawDataset holds the five source tables. Reviews is nil when the reviews
// file is not configured or does not exist.
type RawDataset struct {
	Orders     *RawTable
	OrderItems *RawTable
	Products   *RawTable
	Customers  *RawTable
	Reviews    *RawTable
}

// Loader reads the configured dataset files from a directory
type Loader struct {
	files  config.DatasetFiles
	logger *slog.Logger
}

// NewLoader creates a loader for the given file names
func NewLoader(files config.DatasetFiles, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		files:  files,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// LoadRaw reads every table from dir, honoring ctx between files
func (l *Loader) LoadRaw(ctx context.Context, dir string) (*RawDataset, error) {
	raw := &RawDataset{}

	required := []struct {
		name string
		file string
		dst  **RawTable
	}{
		{"orders", l.files.Orders, &raw.Orders},
		{"order_items", l.files.OrderItems, &raw.OrderItems},
		{"products", l.files.Products, &raw.Products},
		{"customers", l.files.Customers, &raw.Customers},
	}

	for _, r := range required {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := l.read(dir, r.file, r.name)
		if err != nil {
			return nil, err
		}
		*r.dst = table
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.files.Reviews == "" {
		l.logger.WarnContext(ctx, "no reviews file configured, review metrics disabled")
		return raw, nil
	}
	reviews, err := l.read(dir, l.files.Reviews, "reviews")
	if apperrors.TypeOf(err) == apperrors.ErrTypeNotFound {
		l.logger.WarnContext(ctx, "reviews file not found, review metrics disabled",
			slog.String("file", l.files.Reviews))
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	raw.Reviews = reviews

	return raw, nil
}

// Load reads and normalizes the dataset in dir
func (l *Loader) Load(ctx context.Context, dir string) (Dataset, error) {
	raw, err := l.LoadRaw(ctx, dir)
	if err != nil {
		return Dataset{}, err
	}
	return Normalize(raw)
}

func (l *Loader) read(dir, file, name string) (*RawTable, error) {
	path := filepath.Join(dir, file)
	table, err := ReadTable(path, name)
	if os.IsNotExist(err) {
		return nil, apperrors.NewAppError(apperrors.ErrTypeNotFound,
			fmt.Sprintf("%s file %s not found", name, path), err).WithContext("table", name)
	}
	if err != nil {
		if apperrors.TypeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}

	l.logger.Debug("table loaded",
		slog.String("table", name),
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// LoadDataset reads and normalizes the dataset in dir with the given file names
func LoadDataset(ctx context.Context, dir string, files config.DatasetFiles) (Dataset, error) {
	return NewLoader(files, nil).Load(ctx, dir)
}
