package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"ecomcli/pkg/contracts/domain"
)

// RevenueByCategory sums revenue per product category, highest first.
// Rows without a category form their own group with a nil key.
func RevenueByCategory(rows []domain.SalesFactRow) []domain.GroupRevenue {
	return groupRevenue(rows, func(r domain.SalesFactRow) *string { return r.Category })
}

// RevenueByState sums revenue per customer state, highest first.
// Rows without a state form their own group with a nil key.
func RevenueByState(rows []domain.SalesFactRow) []domain.GroupRevenue {
	return groupRevenue(rows, func(r domain.SalesFactRow) *string { return r.CustomerState })
}

func groupRevenue(rows []domain.SalesFactRow, key func(domain.SalesFactRow) *string) []domain.GroupRevenue {
	totals := make(map[string]decimal.Decimal)
	unknown := decimal.Zero
	hasUnknown := false

	for _, r := range rows {
		k := key(r)
		if k == nil {
			unknown = unknown.Add(r.Price)
			hasUnknown = true
			continue
		}
		totals[*k] = totals[*k].Add(r.Price)
	}

	out := make([]domain.GroupRevenue, 0, len(totals)+1)
	for k, revenue := range totals {
		out = append(out, domain.GroupRevenue{Key: &k, Revenue: revenue})
	}
	if hasUnknown {
		out = append(out, domain.GroupRevenue{Revenue: unknown})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		// ties: by key, the unknown group last
		if out[i].Key == nil || out[j].Key == nil {
			return out[j].Key == nil && out[i].Key != nil
		}
		return *out[i].Key < *out[j].Key
	})

	return out
}

// TopN returns the first n groups. n <= 0 returns all of them.
func TopN(groups []domain.GroupRevenue, n int) []domain.GroupRevenue {
	if n <= 0 || n > len(groups) {
		n = len(groups)
	}
	out := make([]domain.GroupRevenue, n)
	copy(out, groups[:n])
	return out
}

// Share returns part as a percentage of total, 0 when total is 0
func Share(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Mul(hundred).Div(total).InexactFloat64()
}

var hundred = decimal.NewFromInt(100)

// percentOf returns count as a percentage of total, 0 when total is 0
func percentOf(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
