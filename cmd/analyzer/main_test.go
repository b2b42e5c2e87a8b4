package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/internal/config"
	"ecomcli/pkg/contracts/domain"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Period
		wantErr bool
	}{
		{name: "full year", input: "2023-01:2023-12", want: domain.NewPeriod(2023, 1, 2023, 12)},
		{name: "spans years", input: "2022-07:2023-06", want: domain.NewPeriod(2022, 7, 2023, 6)},
		{name: "single month", input: "2023-03", want: domain.NewPeriod(2023, 3, 2023, 3)},
		{name: "surrounding spaces", input: " 2023-01:2023-02 ", want: domain.NewPeriod(2023, 1, 2023, 2)},
		{name: "month out of range", input: "2023-13:2023-12", wantErr: true},
		{name: "zero month", input: "2023-01:2023-00", wantErr: true},
		{name: "missing dash", input: "202301:202312", wantErr: true},
		{name: "short year", input: "23-01:23-12", wantErr: true},
		{name: "not a number", input: "abcd-01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePeriod(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := parseFlags(nil, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, 5, opts.top)
		assert.False(t, opts.statusSet)

		req, err := opts.request()
		require.NoError(t, err)
		assert.Nil(t, req.Current)
		assert.Nil(t, req.Previous)
		assert.Nil(t, req.StatusFilter)
	})

	t.Run("all flags", func(t *testing.T) {
		opts, err := parseFlags([]string{
			"-data", "in", "-out", "out", "-status", " Shipped ",
			"-current", "2023-01:2023-06", "-previous", "2022-01:2022-06",
			"-export", "csv", "-top", "3",
		}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "in", opts.dataDir)
		assert.Equal(t, "out", opts.outDir)
		assert.Equal(t, 3, opts.top)

		req, err := opts.request()
		require.NoError(t, err)
		require.NotNil(t, req.Current)
		assert.Equal(t, domain.NewPeriod(2023, 1, 2023, 6), *req.Current)
		require.NotNil(t, req.Previous)
		assert.Equal(t, domain.NewPeriod(2022, 1, 2022, 6), *req.Previous)
		require.NotNil(t, req.StatusFilter)
		assert.Equal(t, "Shipped", *req.StatusFilter)
	})

	t.Run("empty status keeps every status", func(t *testing.T) {
		opts, err := parseFlags([]string{"-status="}, io.Discard)
		require.NoError(t, err)
		req, err := opts.request()
		require.NoError(t, err)
		require.NotNil(t, req.StatusFilter)
		assert.Empty(t, *req.StatusFilter)
	})

	t.Run("bad period", func(t *testing.T) {
		opts, err := parseFlags([]string{"-current", "2023-1"}, io.Discard)
		require.NoError(t, err)
		_, err = opts.request()
		assert.ErrorContains(t, err, "-current")
	})

	t.Run("bad top", func(t *testing.T) {
		_, err := parseFlags([]string{"-top", "0"}, io.Discard)
		assert.Error(t, err)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := parseFlags([]string{"-nope"}, io.Discard)
		assert.Error(t, err)
	})
}

const (
	ordersCSV = `order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2023-01-10 09:00:00,2023-01-12 10:00:00,2023-01-20 00:00:00
o2,c2,delivered,2023-02-05 09:00:00,2023-02-15 10:00:00,2023-02-20 00:00:00
p1,c2,delivered,2022-01-20 09:00:00,2022-01-24 10:00:00,2022-01-30 00:00:00
`
	itemsCSV = `order_id,order_item_id,product_id,price,freight_value
o1,1,pA,10.00,1.00
o1,2,pB,20.00,1.00
o2,1,pA,50.00,2.00
p1,1,pB,40.00,2.00
`
	productsCSV = `product_id,product_category_name
pA,toys
pB,books
`
	customersCSV = `customer_id,customer_state,customer_city
c1,SP,sao paulo
c2,RJ,rio de janeiro
`
)

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := config.Default().Analysis.Files
	for name, content := range map[string]string{
		files.Orders:     ordersCSV,
		files.OrderItems: itemsCSV,
		files.Products:   productsCSV,
		files.Customers:  customersCSV,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestRun(t *testing.T) {
	dataDir := writeDataset(t)
	outDir := t.TempDir()

	opts, err := parseFlags([]string{
		"-data", dataDir,
		"-out", outDir,
		"-current", "2023-01:2023-12",
		"-previous", "2022-01:2022-12",
		"-export", "csv",
	}, io.Discard)
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "Total Revenue: $80.00")
	assert.Contains(t, out, "Exported ")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{
			name: "unknown export format",
			args: func(t *testing.T) []string { return []string{"-data", writeDataset(t), "-export", "pdf"} },
		},
		{
			name: "invalid period",
			args: func(t *testing.T) []string { return []string{"-data", writeDataset(t), "-current", "2023-00:2023-12"} },
		},
		{
			name: "missing dataset",
			args: func(t *testing.T) []string { return []string{"-data", filepath.Join(t.TempDir(), "missing")} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args(t), io.Discard)
			require.NoError(t, err)

			var stdout bytes.Buffer
			assert.Error(t, run(context.Background(), opts, &stdout))
			assert.Empty(t, stdout.String())
		})
	}
}
