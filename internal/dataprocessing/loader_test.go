package dataprocessing

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ecomcli/internal/config"
	apperrors "ecomcli/internal/errors"
	"ecomcli/pkg/contracts/domain"
)

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("\xEF\xBB\xBForder_id, price\no1,10\no2\n"), "items")
	require.NoError(t, err)

	assert.Equal(t, []string{"order_id", "price"}, table.Header)
	require.Len(t, table.Rows, 2)

	col, ok := table.Col("order_id")
	require.True(t, ok)
	assert.Equal(t, "o1", table.Cell(table.Rows[0], col))

	priceCol, _ := table.Col("price")
	assert.Equal(t, "", table.Cell(table.Rows[1], priceCol), "short rows read as empty")
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "orders")
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

func TestRequire(t *testing.T) {
	table := NewRawTable("orders", []string{"order_id", "customer_id"}, nil)

	assert.NoError(t, table.Require("order_id"))

	err := table.Require("order_id", "order_status", "order_purchase_timestamp")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)
	assert.Contains(t, err.Error(), "order_status, order_purchase_timestamp")
}

func TestLoaderLoad(t *testing.T) {
	dir := writeDataset(t, true)

	ds, err := NewLoader(config.Default().Analysis.Files, nil).Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, ds.Orders, 3)
	assert.Len(t, ds.Items, 5)
	assert.Len(t, ds.Products, 2)
	assert.Len(t, ds.Customers, 2)
	assert.Len(t, ds.Reviews, 2)
	assert.True(t, ds.HasReviews)
	assert.True(t, ds.HasDelivery)
}

func TestLoaderMissingReviewsTolerated(t *testing.T) {
	dir := writeDataset(t, false)

	ds, err := LoadDataset(context.Background(), dir, config.Default().Analysis.Files)
	require.NoError(t, err)

	assert.False(t, ds.HasReviews)
	assert.Empty(t, ds.Reviews)
	assert.False(t, ds.Columns().Has(domain.ColumnReviewScore))
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantType apperrors.ErrorType
	}{
		{
			name: "missing orders file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "order_items_dataset.csv", itemsCSV)
				return dir
			},
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "missing required column",
			setup: func(t *testing.T) string {
				dir := writeDataset(t, false)
				writeFile(t, dir, "orders_dataset.csv", "order_id,customer_id\no1,c1\n")
				return dir
			},
			wantType: apperrors.ErrTypeMalformedInput,
		},
		{
			name: "bad price",
			setup: func(t *testing.T) string {
				dir := writeDataset(t, false)
				writeFile(t, dir, "order_items_dataset.csv", "order_id,order_item_id,product_id,price,freight_value\no1,1,p1,abc,1\n")
				return dir
			},
			wantType: apperrors.ErrTypeMalformedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDataset(context.Background(), tt.setup(t), config.Default().Analysis.Files)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestLoaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadDataset(ctx, writeDataset(t, true), config.Default().Analysis.Files)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoaderXLSX(t *testing.T) {
	dir := writeDataset(t, true)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"order_id", "customer_id", "order_status", "order_purchase_timestamp", "order_delivered_customer_date"},
		{"o1", "c1", "delivered", "2023-01-10 10:00:00", "2023-01-13 10:00:00"},
		{"o2", "c2", "delivered", "2023-02-05 08:30:00", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, "orders.xlsx")))
	require.NoError(t, f.Close())

	files := config.Default().Analysis.Files
	files.Orders = "orders.xlsx"

	ds, err := LoadDataset(context.Background(), dir, files)
	require.NoError(t, err)
	require.Len(t, ds.Orders, 2)
	assert.Equal(t, "o1", ds.Orders[0].OrderID)
	assert.Equal(t, 2023, ds.Orders[1].Year)
	assert.Equal(t, 2, ds.Orders[1].Month)
	assert.NotNil(t, ds.Orders[0].DeliveredAt)
	assert.Nil(t, ds.Orders[1].DeliveredAt)
}
