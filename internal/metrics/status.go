package metrics

import (
	"sort"

	"ecomcli/pkg/contracts/domain"
)

// OrderStatusDistribution counts orders per status over the order table,
// most frequent first with ties broken by status name.
func OrderStatusDistribution(orders []domain.Order) []domain.StatusShare {
	counts := make(map[domain.OrderStatus]int)
	for _, o := range orders {
		counts[o.Status]++
	}

	out := make([]domain.StatusShare, 0, len(counts))
	for status, count := range counts {
		out = append(out, domain.StatusShare{
			Status:     status,
			Count:      count,
			Percentage: percentOf(count, len(orders)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})

	return out
}
