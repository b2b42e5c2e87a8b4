package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryCategory buckets delivery duration in whole days
type DeliveryCategory string

const (
	DeliveryFast     DeliveryCategory = "1-3 days"
	DeliveryStandard DeliveryCategory = "4-7 days"
	DeliverySlow     DeliveryCategory = "8+ days"
)

// DeliveryCategories lists the buckets from fastest to slowest. Outputs
// grouped by delivery category always follow this order.
var DeliveryCategories = []DeliveryCategory{DeliveryFast, DeliveryStandard, DeliverySlow}

// CategorizeDelivery maps a delivery duration to its bucket
func CategorizeDelivery(days int) DeliveryCategory {
	switch {
	case days <= 3:
		return DeliveryFast
	case days <= 7:
		return DeliveryStandard
	default:
		return DeliverySlow
	}
}

// Rank returns the position of the category in DeliveryCategories, or -1
func (c DeliveryCategory) Rank() int {
	for i, dc := range DeliveryCategories {
		if dc == c {
			return i
		}
	}
	return -1
}

// SalesFactRow is one enriched line item. Nil pointer fields mean the
// enrichment had no match (or the source value was missing).
type SalesFactRow struct {
	OrderID          string            `json:"order_id"`
	LineItemID       int               `json:"order_item_id"`
	ProductID        string            `json:"product_id"`
	CustomerID       string            `json:"customer_id"`
	Price            decimal.Decimal   `json:"price"`
	FreightValue     decimal.Decimal   `json:"freight_value"`
	OrderStatus      OrderStatus       `json:"order_status"`
	PurchasedAt      time.Time         `json:"order_purchase_timestamp"`
	DeliveredAt      *time.Time        `json:"order_delivered_customer_date,omitempty"`
	Year             int               `json:"year"`
	Month            int               `json:"month"`
	Category         *string           `json:"product_category_name"`
	CustomerState    *string           `json:"customer_state"`
	CustomerCity     *string           `json:"customer_city"`
	ReviewScore      *int              `json:"review_score"`
	DeliveryDays     *int              `json:"delivery_speed_days"`
	DeliveryCategory *DeliveryCategory `json:"delivery_category"`
}

// PurchaseTime returns the purchase timestamp used by period filtering
func (r SalesFactRow) PurchaseTime() time.Time {
	return r.PurchasedAt
}

// ColumnSet records which optional source columns fed a fact table
type ColumnSet uint8

const (
	// ColumnReviewScore is set when a review table was joined
	ColumnReviewScore ColumnSet = 1 << iota
	// ColumnDelivery is set when orders carried a delivered timestamp column
	ColumnDelivery
)

// Has reports whether every column in c is present
func (s ColumnSet) Has(c ColumnSet) bool {
	return s&c == c
}

// FactTable is the sales fact table together with its column presence
type FactTable struct {
	Rows    []SalesFactRow `json:"rows"`
	Columns ColumnSet      `json:"-"`
}

// Len returns the number of line-item rows
func (t FactTable) Len() int {
	return len(t.Rows)
}

// WithRows returns a table with the same column presence and new rows
func (t FactTable) WithRows(rows []SalesFactRow) FactTable {
	return FactTable{Rows: rows, Columns: t.Columns}
}
