// Package validation checks the dataset and report directories before an
// analysis reads from or writes to them.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ecomcli/internal/config"
)

// FileValidator provides file checks shared by the CLI and the server
type FileValidator struct {
	logger *slog.Logger
}

// DatasetCheck is the outcome of checking a data directory
type DatasetCheck struct {
	Dir     string
	Missing []string
	// HasReviews is false when the optional reviews file is not configured
	// or not present
	HasReviews bool
}

// Complete reports whether every required table file was found
func (c DatasetCheck) Complete() bool {
	return len(c.Missing) == 0
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory validates that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists, creating it if needed, and
// is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateCSVFile checks that path is a readable regular file with a .csv
// extension
func (v *FileValidator) ValidateCSVFile(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return fmt.Errorf("file %s is not a CSV file (extension: %s)", path, ext)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// CheckDataset looks for every configured table file in dir. Missing
// required files are listed; a missing reviews file only clears HasReviews.
func (v *FileValidator) CheckDataset(dir string, files config.DatasetFiles) (DatasetCheck, error) {
	check := DatasetCheck{Dir: dir}
	if err := v.ValidateInputDirectory(dir); err != nil {
		return check, err
	}

	required := []string{files.Orders, files.OrderItems, files.Products, files.Customers}
	for _, name := range required {
		if err := v.ValidateCSVFile(filepath.Join(dir, name)); err != nil {
			v.logger.Warn("Dataset file unusable",
				slog.String("file", name),
				slog.String("error", err.Error()))
			check.Missing = append(check.Missing, name)
		}
	}

	if files.Reviews != "" {
		check.HasReviews = v.ValidateCSVFile(filepath.Join(dir, files.Reviews)) == nil
	}

	v.logger.Info("Dataset checked",
		slog.String("directory", dir),
		slog.Int("missing", len(check.Missing)),
		slog.Bool("has_reviews", check.HasReviews))
	return check, nil
}
