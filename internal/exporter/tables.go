package exporter

import (
	"github.com/shopspring/decimal"

	"ecomcli/internal/metrics"
	"ecomcli/pkg/contracts/domain"
)

// Table is one exported result table. Name is the CSV file stem and Title
// the workbook sheet name (at most 31 characters).
type Table struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]any
}

// ReportTables flattens a report into the tables written by every export
// format, in a stable order
func ReportTables(report *domain.AnalysisReport) []Table {
	tables := []Table{
		summaryTable(report),
		comparisonTable(report.Comparison),
		buildStatsTable(report.BuildStats),
	}
	tables = append(tables, bundleTables("current", "Current", report.Current)...)
	tables = append(tables, bundleTables("previous", "Previous", report.Previous)...)
	return tables
}

func summaryTable(report *domain.AnalysisReport) Table {
	cur, prev := report.Current.Summary, report.Previous.Summary
	t := Table{
		Name:    "summary",
		Title:   "Summary",
		Headers: []string{"metric", "current", "previous"},
		Rows: [][]any{
			{"period", report.Current.Period.String(), report.Previous.Period.String()},
			{"total_revenue", cur.TotalRevenue, prev.TotalRevenue},
			{"total_orders", cur.TotalOrders, prev.TotalOrders},
			{"average_order_value", optFloat(cur.AverageOrderValue), optFloat(prev.AverageOrderValue)},
			{"average_items_per_order", optFloat(cur.AverageItemsPerOrder), optFloat(prev.AverageItemsPerOrder)},
		},
	}
	if cur.HasReviewScore() {
		t.Rows = append(t.Rows, []any{"average_review_score", optFloat(cur.AverageReviewScore), optFloat(prev.AverageReviewScore)})
	}
	if cur.HasDeliveryDays() {
		t.Rows = append(t.Rows, []any{"average_delivery_days", optFloat(cur.AverageDeliveryDays), optFloat(prev.AverageDeliveryDays)})
	}
	return t
}

func comparisonTable(c domain.Comparison) Table {
	return Table{
		Name:    "comparison",
		Title:   "Comparison",
		Headers: []string{"metric", "current", "previous", "change", "growth_rate"},
		Rows: [][]any{
			{"revenue", c.CurrentRevenue, c.PreviousRevenue, c.RevenueChange, c.RevenueGrowthRate},
			{"average_order_value", optFloat(c.CurrentAOV), optFloat(c.PreviousAOV), optFloat(c.AOVChange), optFloat(c.AOVGrowthRate)},
			{"orders", c.CurrentOrders, c.PreviousOrders, c.OrdersChange, c.OrdersGrowthRate},
		},
	}
}

func buildStatsTable(s domain.FactBuildStats) Table {
	return Table{
		Name:    "build_stats",
		Title:   "Build Stats",
		Headers: []string{"statistic", "value"},
		Rows: [][]any{
			{"items_in", s.ItemsIn},
			{"rows_out", s.RowsOut},
			{"dropped_no_order", s.DroppedNoOrder},
			{"dropped_by_status", s.DroppedByStatus},
			{"unmatched_products", s.UnmatchedProducts},
			{"unmatched_customers", s.UnmatchedCustomers},
			{"unmatched_reviews", s.UnmatchedReviews},
			{"discarded_duplicate_reviews", s.DiscardedReviews},
			{"undelivered_rows", s.UndeliveredRows},
		},
	}
}

// bundleTables returns the per-period tables. Review tables are left out
// when the period was computed without review data.
func bundleTables(name, title string, b domain.MetricBundle) []Table {
	monthly := Table{
		Name:    name + "_revenue_by_month",
		Title:   title + " Monthly",
		Headers: []string{"year", "month", "revenue", "mom_growth"},
	}
	for _, m := range b.MoMGrowth {
		monthly.Rows = append(monthly.Rows, []any{m.Year, m.Month, m.Revenue, optFloat(m.Growth)})
	}

	tables := []Table{
		monthly,
		groupTable(name+"_revenue_by_category", title+" Categories", "product_category_name", b.RevenueByCategory, b.Summary.TotalRevenue),
		groupTable(name+"_revenue_by_state", title+" States", "customer_state", b.RevenueByState, b.Summary.TotalRevenue),
	}

	if b.ReviewDistribution != nil {
		t := Table{
			Name:    name + "_review_score_distribution",
			Title:   title + " Review Scores",
			Headers: []string{"review_score", "count", "percentage"},
		}
		for _, s := range b.ReviewDistribution {
			t.Rows = append(t.Rows, []any{s.Score, s.Count, s.Percentage})
		}
		tables = append(tables, t)
	}

	if b.ReviewByDelivery != nil {
		t := Table{
			Name:    name + "_review_by_delivery_speed",
			Title:   title + " Delivery Reviews",
			Headers: []string{"delivery_category", "avg_review_score", "orders"},
		}
		for _, d := range b.ReviewByDelivery {
			t.Rows = append(t.Rows, []any{string(d.Category), d.AvgReviewScore, d.Orders})
		}
		tables = append(tables, t)
	}

	status := Table{
		Name:    name + "_order_status_distribution",
		Title:   title + " Order Status",
		Headers: []string{"order_status", "count", "percentage"},
	}
	for _, s := range b.StatusDistribution {
		status.Rows = append(status.Rows, []any{string(s.Status), s.Count, s.Percentage})
	}

	return append(tables, status)
}

func groupTable(name, title, keyHeader string, groups []domain.GroupRevenue, total decimal.Decimal) Table {
	t := Table{
		Name:    name,
		Title:   title,
		Headers: []string{keyHeader, "revenue", "share_pct"},
	}
	for _, g := range groups {
		t.Rows = append(t.Rows, []any{optString(g.Key), g.Revenue, metrics.Share(g.Revenue, total)})
	}
	return t
}

// FactHeaders returns the fact table columns. Review and delivery columns
// are only present when the table carries them.
func FactHeaders(columns domain.ColumnSet) []string {
	headers := []string{
		"order_id", "order_item_id", "product_id", "customer_id",
		"price", "freight_value", "order_status", "order_purchase_timestamp",
		"year", "month", "product_category_name", "customer_state", "customer_city",
	}
	if columns.Has(domain.ColumnReviewScore) {
		headers = append(headers, "review_score")
	}
	if columns.Has(domain.ColumnDelivery) {
		headers = append(headers, "order_delivered_customer_date", "delivery_speed_days", "delivery_category")
	}
	return headers
}

// FactValues returns one fact row in FactHeaders order
func FactValues(r domain.SalesFactRow, columns domain.ColumnSet) []any {
	values := []any{
		r.OrderID, r.LineItemID, r.ProductID, r.CustomerID,
		r.Price, r.FreightValue, string(r.OrderStatus), r.PurchasedAt.UTC(),
		r.Year, r.Month, optString(r.Category), optString(r.CustomerState), optString(r.CustomerCity),
	}
	if columns.Has(domain.ColumnReviewScore) {
		values = append(values, optInt(r.ReviewScore))
	}
	if columns.Has(domain.ColumnDelivery) {
		var category any
		if r.DeliveryCategory != nil {
			category = string(*r.DeliveryCategory)
		}
		values = append(values, optTime(r.DeliveredAt), optInt(r.DeliveryDays), category)
	}
	return values
}
