package metrics

import (
	"sort"

	"ecomcli/pkg/contracts/domain"
)

// AverageReviewScore is the mean score over orders, ignoring orders
// without a review. Nil when no order has one.
func AverageReviewScore(rows []domain.SalesFactRow) *float64 {
	var sum, n int
	for _, o := range OrderProjection(rows) {
		if o.ReviewScore == nil {
			continue
		}
		sum += *o.ReviewScore
		n++
	}
	if n == 0 {
		return nil
	}
	return ptr(float64(sum) / float64(n))
}

// ReviewScoreDistribution counts orders per review score, scores ascending.
// Percentages are of reviewed orders and sum to 100.
func ReviewScoreDistribution(rows []domain.SalesFactRow) []domain.ScoreShare {
	counts := make(map[int]int)
	total := 0
	for _, o := range OrderProjection(rows) {
		if o.ReviewScore == nil {
			continue
		}
		counts[*o.ReviewScore]++
		total++
	}

	out := make([]domain.ScoreShare, 0, len(counts))
	for score, count := range counts {
		out = append(out, domain.ScoreShare{
			Score:      score,
			Count:      count,
			Percentage: percentOf(count, total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })

	return out
}

// AverageDeliveryTime is the mean delivery duration in days over delivered
// orders. Nil when no order was delivered.
func AverageDeliveryTime(rows []domain.SalesFactRow) *float64 {
	var sum, n int
	for _, o := range OrderProjection(rows) {
		if o.DeliveryDays == nil {
			continue
		}
		sum += *o.DeliveryDays
		n++
	}
	if n == 0 {
		return nil
	}
	return ptr(float64(sum) / float64(n))
}

// ReviewByDeliverySpeed is the mean review score per delivery bucket,
// fastest bucket first. Orders missing a score or a bucket are skipped and
// buckets without orders are omitted.
func ReviewByDeliverySpeed(rows []domain.SalesFactRow) []domain.DeliveryReview {
	sums := make(map[domain.DeliveryCategory]int)
	counts := make(map[domain.DeliveryCategory]int)

	for _, o := range OrderProjection(rows) {
		if o.ReviewScore == nil || o.DeliveryCategory == nil {
			continue
		}
		sums[*o.DeliveryCategory] += *o.ReviewScore
		counts[*o.DeliveryCategory]++
	}

	out := make([]domain.DeliveryReview, 0, len(counts))
	for _, cat := range domain.DeliveryCategories {
		n := counts[cat]
		if n == 0 {
			continue
		}
		out = append(out, domain.DeliveryReview{
			Category:       cat,
			AvgReviewScore: float64(sums[cat]) / float64(n),
			Orders:         n,
		})
	}

	return out
}
