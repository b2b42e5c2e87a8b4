package metrics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	apperrors "ecomcli/internal/errors"
	"ecomcli/pkg/contracts/domain"
)

// RevenueByPeriod sums revenue per calendar key, ascending by key
func RevenueByPeriod(rows []domain.SalesFactRow, grouping domain.RevenueGrouping) ([]domain.PeriodRevenue, error) {
	var key func(r domain.SalesFactRow) domain.PeriodRevenue
	switch grouping {
	case domain.GroupByYear:
		key = func(r domain.SalesFactRow) domain.PeriodRevenue { return domain.PeriodRevenue{Year: r.Year} }
	case domain.GroupByMonth:
		key = func(r domain.SalesFactRow) domain.PeriodRevenue { return domain.PeriodRevenue{Month: r.Month} }
	case domain.GroupByYearMonth:
		key = func(r domain.SalesFactRow) domain.PeriodRevenue {
			return domain.PeriodRevenue{Year: r.Year, Month: r.Month}
		}
	default:
		return nil, apperrors.NewInvalidParameter(
			fmt.Sprintf("unsupported revenue grouping %q, expected year, month or year-month", grouping))
	}

	totals := make(map[[2]int]decimal.Decimal)
	for _, r := range rows {
		k := key(r)
		ym := [2]int{k.Year, k.Month}
		totals[ym] = totals[ym].Add(r.Price)
	}

	out := make([]domain.PeriodRevenue, 0, len(totals))
	for k, revenue := range totals {
		out = append(out, domain.PeriodRevenue{Year: k[0], Month: k[1], Revenue: revenue})
	}
	sortByYearMonth(out)

	return out, nil
}

// RevenueGrowth is (current - previous) / previous. A zero previous value
// yields 0 rather than an infinite or undefined rate.
func RevenueGrowth(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).InexactFloat64()
}

// MoMGrowth computes the growth of each month against the one before it.
// The input is sorted by (year, month) first, so callers may pass rows in
// any order; the first month has no growth.
func MoMGrowth(monthly []domain.PeriodRevenue) []domain.MonthGrowth {
	sorted := make([]domain.PeriodRevenue, len(monthly))
	copy(sorted, monthly)
	sortByYearMonth(sorted)

	out := make([]domain.MonthGrowth, 0, len(sorted))
	for i, m := range sorted {
		g := domain.MonthGrowth{Year: m.Year, Month: m.Month, Revenue: m.Revenue}
		if i > 0 {
			g.Growth = ptr(RevenueGrowth(m.Revenue, sorted[i-1].Revenue))
		}
		out = append(out, g)
	}
	return out
}

// AverageMoMGrowth is the mean of the defined growth values, nil when none
func AverageMoMGrowth(growth []domain.MonthGrowth) *float64 {
	var sum float64
	var n int
	for _, g := range growth {
		if g.Growth == nil {
			continue
		}
		sum += *g.Growth
		n++
	}
	if n == 0 {
		return nil
	}
	return ptr(sum / float64(n))
}

func sortByYearMonth(rows []domain.PeriodRevenue) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
}
