package metrics

import (
	"github.com/shopspring/decimal"

	"ecomcli/pkg/contracts/domain"
)

// OrderRow is one order: its first fact row plus order totals
type OrderRow struct {
	domain.SalesFactRow
	Revenue decimal.Decimal `json:"order_revenue"`
	Items   int             `json:"items"`
}

// OrderProjection collapses fact rows to one row per order_id. The first
// row seen for an order is its representative; orders keep the order of
// their first appearance.
func OrderProjection(rows []domain.SalesFactRow) []OrderRow {
	index := make(map[string]int, len(rows))
	out := make([]OrderRow, 0, len(rows))

	for _, r := range rows {
		if i, ok := index[r.OrderID]; ok {
			out[i].Revenue = out[i].Revenue.Add(r.Price)
			out[i].Items++
			continue
		}
		index[r.OrderID] = len(out)
		out = append(out, OrderRow{SalesFactRow: r, Revenue: r.Price, Items: 1})
	}

	return out
}

// TotalRevenue is the exact sum of line item prices
func TotalRevenue(rows []domain.SalesFactRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Price)
	}
	return total
}

// TotalOrders counts distinct order ids
func TotalOrders(rows []domain.SalesFactRow) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[r.OrderID] = struct{}{}
	}
	return len(seen)
}

// AverageOrderValue is the mean of per-order revenue, nil without orders
func AverageOrderValue(rows []domain.SalesFactRow) *float64 {
	aov, ok := averageOrderValue(rows)
	if !ok {
		return nil
	}
	return ptr(aov.InexactFloat64())
}

func averageOrderValue(rows []domain.SalesFactRow) (decimal.Decimal, bool) {
	orders := OrderProjection(rows)
	if len(orders) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(o.Revenue)
	}
	return sum.Div(decimal.NewFromInt(int64(len(orders)))), true
}

// ItemsPerOrder is the mean line item count per order, nil without orders
func ItemsPerOrder(rows []domain.SalesFactRow) *float64 {
	orders := TotalOrders(rows)
	if orders == 0 {
		return nil
	}
	return ptr(float64(len(rows)) / float64(orders))
}

func ptr(v float64) *float64 {
	return &v
}
