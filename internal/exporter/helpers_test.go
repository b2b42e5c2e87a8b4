package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ecomcli/internal/config"
	"ecomcli/internal/metrics"
	"ecomcli/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	dir := t.TempDir()
	return &config.Paths{
		DataDir:    filepath.Join(dir, "data"),
		ReportsDir: filepath.Join(dir, "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}
}

func factRow(orderID string, line int, price float64, month int, category string, score int, days int) domain.SalesFactRow {
	purchased := time.Date(2023, time.Month(month), 3, 8, 30, 0, 0, time.UTC)
	delivered := purchased.AddDate(0, 0, days)
	cat := domain.CategorizeDelivery(days)
	state := "SP"
	r := domain.SalesFactRow{
		OrderID:          orderID,
		LineItemID:       line,
		ProductID:        "p-" + category,
		CustomerID:       "c-" + orderID,
		Price:            decimal.NewFromFloat(price),
		FreightValue:     decimal.RequireFromString("1.50"),
		OrderStatus:      domain.OrderStatusDelivered,
		PurchasedAt:      purchased,
		DeliveredAt:      &delivered,
		Year:             2023,
		Month:            month,
		CustomerState:    &state,
		ReviewScore:      &score,
		DeliveryDays:     &days,
		DeliveryCategory: &cat,
	}
	if category != "" {
		r.Category = &category
	}
	return r
}

func sampleFacts() domain.FactTable {
	return domain.FactTable{
		Rows: []domain.SalesFactRow{
			factRow("A", 1, 10, 1, "toys", 5, 2),
			factRow("A", 2, 30, 1, "books", 5, 2),
			factRow("B", 1, 40, 2, "", 3, 9),
		},
		Columns: domain.ColumnReviewScore | domain.ColumnDelivery,
	}
}

func sampleReport(facts domain.FactTable) *domain.AnalysisReport {
	current := domain.NewPeriod(2023, 1, 2023, 12)
	previous := current.Previous()
	orders := []domain.Order{
		{OrderID: "A", Status: domain.OrderStatusDelivered},
		{OrderID: "B", Status: domain.OrderStatusDelivered},
	}
	empty := facts.WithRows(nil)

	return &domain.AnalysisReport{
		RunID:        "01HZX3TESTRUN0000000000000",
		GeneratedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		StatusFilter: "delivered",
		BuildStats:   domain.FactBuildStats{ItemsIn: 3, RowsOut: 3},
		Current:      metrics.BuildBundle(current, facts, orders),
		Previous:     metrics.BuildBundle(previous, empty, nil),
		Comparison:   metrics.ComparePeriods(facts.Rows, nil),
	}
}
