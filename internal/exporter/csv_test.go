package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, utf8BOM)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths, nil)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, fullPath string)
	}{
		{
			name:     "basic write with headers",
			filePath: "basic.csv",
			options: WriteOptions{
				Headers: []string{"order_id", "price"},
				Records: [][]string{{"A", "10.00"}, {"B", "20.50"}},
			},
			validate: func(t *testing.T, fullPath string) {
				assert.Equal(t, []string{"order_id,price", "A,10.00", "B,20.50"}, readLines(t, fullPath))
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "bom.csv",
			options: WriteOptions{
				Headers:   []string{"state"},
				Records:   [][]string{{"SP"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, fullPath string) {
				content, err := os.ReadFile(fullPath)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(content, utf8BOM))
			},
		},
		{
			name:     "nested directory is created",
			filePath: filepath.Join("run", "nested.csv"),
			options: WriteOptions{
				Headers: []string{"a"},
				Records: [][]string{{"1"}},
			},
			validate: func(t *testing.T, fullPath string) {
				assert.Equal(t, filepath.Join(paths.ReportsDir, "run", "nested.csv"), fullPath)
				assert.Len(t, readLines(t, fullPath), 2)
			},
		},
		{
			name:     "values needing quotes",
			filePath: "quoted.csv",
			options: WriteOptions{
				Headers: []string{"city"},
				Records: [][]string{{"rio de janeiro, rj"}},
			},
			validate: func(t *testing.T, fullPath string) {
				assert.Equal(t, `"rio de janeiro, rj"`, readLines(t, fullPath)[1])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullPath, err := writer.WriteCSV(tt.filePath, tt.options)
			require.NoError(t, err)
			tt.validate(t, fullPath)
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	writer := NewCSVWriter(testPaths(t), nil)

	path, err := writer.WriteSimpleCSV("append.csv", []string{"a", "b"}, [][]string{{"1", "2"}})
	require.NoError(t, err)

	_, err = writer.WriteCSV("append.csv", WriteOptions{
		Headers: []string{"ignored"},
		Records: [][]string{{"3", "4"}},
		Append:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a,b", "1,2", "3,4"}, readLines(t, path))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer := NewCSVWriter(testPaths(t), nil)
	abs := filepath.Join(t.TempDir(), "abs.csv")

	path, err := writer.WriteSimpleCSV(abs, []string{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, abs, path)
}

func TestStreamWriter(t *testing.T) {
	writer := NewCSVWriter(testPaths(t), nil)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"id", "value"})
	require.NoError(t, err)

	for _, rec := range [][]string{{"1", "a"}, {"2", "b"}, {"3", "c"}} {
		require.NoError(t, stream.WriteRecord(rec))
	}
	require.NoError(t, stream.Close())

	lines := readLines(t, stream.Path())
	assert.Equal(t, []string{"id,value", "1,a", "2,b", "3,c"}, lines)
}
