package dataprocessing

import (
	"time"

	"ecomcli/pkg/contracts/domain"
)

// Timestamped is any row that can be placed in a period by its purchase time
type Timestamped interface {
	PurchaseTime() time.Time
}

// FilterRange returns the rows purchased within p, both ends inclusive.
// The result never shares a backing array with rows. An invalid or
// reversed period selects nothing.
func FilterRange[T Timestamped](rows []T, p domain.Period) []T {
	out := make([]T, 0)
	if !p.IsValid() || !p.IsOrdered() {
		return out
	}

	start, end := p.Start(), p.End()
	for _, r := range rows {
		t := r.PurchaseTime()
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterTable filters a fact table, keeping its column presence
func FilterTable(table domain.FactTable, p domain.Period) domain.FactTable {
	return table.WithRows(FilterRange(table.Rows, p))
}
