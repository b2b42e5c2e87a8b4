package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"ecomcli/pkg/contracts/domain"
)

// fact builds a fact row; optional fields are set through the options
func fact(orderID string, line int, price float64, opts ...func(*domain.SalesFactRow)) domain.SalesFactRow {
	r := domain.SalesFactRow{
		OrderID:     orderID,
		LineItemID:  line,
		Price:       decimal.NewFromFloat(price),
		OrderStatus: domain.OrderStatusDelivered,
		PurchasedAt: time.Date(2023, 1, 15, 10, 0, 0, 0, time.UTC),
		Year:        2023,
		Month:       1,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func withMonth(year, month int) func(*domain.SalesFactRow) {
	return func(r *domain.SalesFactRow) {
		r.Year = year
		r.Month = month
		r.PurchasedAt = time.Date(year, time.Month(month), 10, 0, 0, 0, 0, time.UTC)
	}
}

func withCategory(c string) func(*domain.SalesFactRow) {
	return func(r *domain.SalesFactRow) { r.Category = &c }
}

func withState(s string) func(*domain.SalesFactRow) {
	return func(r *domain.SalesFactRow) { r.CustomerState = &s }
}

func withScore(s int) func(*domain.SalesFactRow) {
	return func(r *domain.SalesFactRow) { r.ReviewScore = &s }
}

func withDelivery(days int) func(*domain.SalesFactRow) {
	return func(r *domain.SalesFactRow) {
		cat := domain.CategorizeDelivery(days)
		r.DeliveryDays = &days
		r.DeliveryCategory = &cat
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// assertAmount compares amounts by value, so 80 equals 80.00
func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}
