package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts are JSON numbers, written with their exact decimal digits
	decimal.MarshalJSONWithoutQuotes = true
}

// RevenueGrouping selects the calendar key revenue is grouped by
type RevenueGrouping string

const (
	GroupByYear      RevenueGrouping = "year"
	GroupByMonth     RevenueGrouping = "month"
	GroupByYearMonth RevenueGrouping = "year-month"
)

// PeriodRevenue is revenue for one calendar key. Year is zero when grouping
// by month only and Month is zero when grouping by year only.
type PeriodRevenue struct {
	Year    int             `json:"year,omitempty"`
	Month   int             `json:"month,omitempty"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthGrowth is a month's revenue with its change against the prior row.
// Growth is nil for the first month.
type MonthGrowth struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Growth  *float64        `json:"mom_growth"`
}

// GroupRevenue is revenue for one category or state. Key is nil for the
// group of rows whose category or state is unknown.
type GroupRevenue struct {
	Key     *string         `json:"key"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Label returns the key or a placeholder for the unknown group
func (g GroupRevenue) Label() string {
	if g.Key == nil {
		return "(unknown)"
	}
	return *g.Key
}

// ScoreShare is the number and percentage of orders with a review score
type ScoreShare struct {
	Score      int     `json:"review_score"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatusShare is the number and percentage of orders in a status
type StatusShare struct {
	Status     OrderStatus `json:"order_status"`
	Count      int         `json:"count"`
	Percentage float64     `json:"percentage"`
}

// DeliveryReview is the mean review score of orders in a delivery bucket
type DeliveryReview struct {
	Category       DeliveryCategory `json:"delivery_category"`
	AvgReviewScore float64          `json:"avg_review_score"`
	Orders         int              `json:"orders"`
}

// Comparison holds period-over-period values. Revenue amounts are exact;
// AOV values and rates are floats. AOV fields are nil when either period
// has no orders.
type Comparison struct {
	CurrentRevenue    decimal.Decimal `json:"current_revenue"`
	PreviousRevenue   decimal.Decimal `json:"previous_revenue"`
	RevenueChange     decimal.Decimal `json:"revenue_change"`
	RevenueGrowthRate float64         `json:"revenue_growth_rate"`
	CurrentAOV        *float64        `json:"current_aov"`
	PreviousAOV       *float64        `json:"previous_aov"`
	AOVChange         *float64        `json:"aov_change"`
	AOVGrowthRate     *float64        `json:"aov_growth_rate"`
	CurrentOrders     int             `json:"current_orders"`
	PreviousOrders    int             `json:"previous_orders"`
	OrdersChange      int             `json:"orders_change"`
	OrdersGrowthRate  float64         `json:"orders_growth_rate"`
}

// Summary holds headline statistics for one period. Review and delivery
// averages are only reported when their source columns were present.
type Summary struct {
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalOrders          int             `json:"total_orders"`
	AverageOrderValue    *float64        `json:"average_order_value"`
	AverageItemsPerOrder *float64        `json:"average_items_per_order"`
	AverageReviewScore   *float64        `json:"average_review_score,omitempty"`
	AverageDeliveryDays  *float64        `json:"average_delivery_days,omitempty"`
	Columns              ColumnSet       `json:"-"`
}

// HasReviewScore reports whether the review average is part of the summary
func (s Summary) HasReviewScore() bool {
	return s.Columns.Has(ColumnReviewScore)
}

// HasDeliveryDays reports whether the delivery average is part of the summary
func (s Summary) HasDeliveryDays() bool {
	return s.Columns.Has(ColumnDelivery)
}

// MarshalJSON omits a field only when its column is absent; a present
// column without data is written as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"total_revenue":           s.TotalRevenue,
		"total_orders":            s.TotalOrders,
		"average_order_value":     s.AverageOrderValue,
		"average_items_per_order": s.AverageItemsPerOrder,
	}
	if s.HasReviewScore() {
		out["average_review_score"] = s.AverageReviewScore
	}
	if s.HasDeliveryDays() {
		out["average_delivery_days"] = s.AverageDeliveryDays
	}
	return json.Marshal(out)
}

// FactBuildStats counts what happened to line items while building facts
type FactBuildStats struct {
	ItemsIn            int `json:"items_in"`
	RowsOut            int `json:"rows_out"`
	DroppedNoOrder     int `json:"dropped_no_order"`
	DroppedByStatus    int `json:"dropped_by_status"`
	UnmatchedProducts  int `json:"unmatched_products"`
	UnmatchedCustomers int `json:"unmatched_customers"`
	UnmatchedReviews   int `json:"unmatched_reviews"`
	DiscardedReviews   int `json:"discarded_duplicate_reviews"`
	UndeliveredRows    int `json:"undelivered_rows"`
}

// MetricBundle is every metric computed for one period
type MetricBundle struct {
	Period             Period           `json:"period"`
	FactRows           int              `json:"fact_rows"`
	Summary            Summary          `json:"summary"`
	RevenueByMonth     []PeriodRevenue  `json:"revenue_by_month"`
	MoMGrowth          []MonthGrowth    `json:"mom_growth"`
	AverageMoMGrowth   *float64         `json:"average_mom_growth"`
	RevenueByCategory  []GroupRevenue   `json:"revenue_by_category"`
	RevenueByState     []GroupRevenue   `json:"revenue_by_state"`
	ReviewDistribution []ScoreShare     `json:"review_score_distribution"`
	ReviewByDelivery   []DeliveryReview `json:"review_by_delivery_speed"`
	StatusDistribution []StatusShare    `json:"order_status_distribution"`
}

// AnalysisReport is the outcome of one analysis run
type AnalysisReport struct {
	RunID        string         `json:"run_id"`
	GeneratedAt  time.Time      `json:"generated_at"`
	StatusFilter string         `json:"status_filter"`
	BuildStats   FactBuildStats `json:"build_stats"`
	Current      MetricBundle   `json:"current"`
	Previous     MetricBundle   `json:"previous"`
	Comparison   Comparison     `json:"comparison"`
}
