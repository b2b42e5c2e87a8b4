package metrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/pkg/contracts/domain"
)

func TestComparePeriods(t *testing.T) {
	current := []domain.SalesFactRow{
		fact("A", 1, 10),
		fact("A", 2, 20),
		fact("B", 1, 50),
		fact("C", 1, 40),
	}
	previous := []domain.SalesFactRow{
		fact("X", 1, 60),
		fact("Y", 1, 20),
	}

	c := ComparePeriods(current, previous)

	assertAmount(t, "120", c.CurrentRevenue)
	assertAmount(t, "80", c.PreviousRevenue)
	assertAmount(t, "40", c.RevenueChange)
	assert.InDelta(t, 0.5, c.RevenueGrowthRate, 1e-9)

	require.NotNil(t, c.CurrentAOV)
	require.NotNil(t, c.PreviousAOV)
	assert.InDelta(t, 40.0, *c.CurrentAOV, 1e-9)
	assert.InDelta(t, 40.0, *c.PreviousAOV, 1e-9)
	require.NotNil(t, c.AOVChange)
	assert.InDelta(t, 0.0, *c.AOVChange, 1e-9)
	assert.InDelta(t, 0.0, *c.AOVGrowthRate, 1e-9)

	assert.Equal(t, 3, c.CurrentOrders)
	assert.Equal(t, 2, c.PreviousOrders)
	assert.Equal(t, 1, c.OrdersChange)
	assert.InDelta(t, 0.5, c.OrdersGrowthRate, 1e-9)
}

func TestComparePeriodsEmptyPrevious(t *testing.T) {
	c := ComparePeriods([]domain.SalesFactRow{fact("A", 1, 10)}, nil)

	assertAmount(t, "10", c.RevenueChange)
	assert.Equal(t, 0.0, c.RevenueGrowthRate)
	assert.NotNil(t, c.CurrentAOV)
	assert.Nil(t, c.PreviousAOV)
	assert.Nil(t, c.AOVChange)
	assert.Nil(t, c.AOVGrowthRate)
	assert.Equal(t, 0.0, c.OrdersGrowthRate)

	_, err := json.Marshal(c)
	assert.NoError(t, err)
}

func TestSummaryStatistics(t *testing.T) {
	rows := []domain.SalesFactRow{
		fact("A", 1, 10, withScore(4), withDelivery(3)),
		fact("A", 2, 20, withScore(4), withDelivery(3)),
		fact("B", 1, 50, withScore(2)),
	}

	tests := []struct {
		name         string
		columns      domain.ColumnSet
		wantReview   bool
		wantDelivery bool
	}{
		{"all columns", domain.ColumnReviewScore | domain.ColumnDelivery, true, true},
		{"no reviews", domain.ColumnDelivery, false, true},
		{"no delivery", domain.ColumnReviewScore, true, false},
		{"neither", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SummaryStatistics(domain.FactTable{Rows: rows, Columns: tt.columns})

			assertAmount(t, "80", s.TotalRevenue)
			assert.Equal(t, 2, s.TotalOrders)
			assert.InDelta(t, 40.0, *s.AverageOrderValue, 1e-9)
			assert.InDelta(t, 1.5, *s.AverageItemsPerOrder, 1e-9)

			data, err := json.Marshal(s)
			require.NoError(t, err)
			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &decoded))

			_, hasReview := decoded["average_review_score"]
			_, hasDelivery := decoded["average_delivery_days"]
			assert.Equal(t, tt.wantReview, hasReview)
			assert.Equal(t, tt.wantDelivery, hasDelivery)

			if tt.wantReview {
				assert.InDelta(t, 3.0, *s.AverageReviewScore, 1e-9)
			} else {
				assert.Nil(t, s.AverageReviewScore)
			}
			if tt.wantDelivery {
				assert.InDelta(t, 3.0, *s.AverageDeliveryDays, 1e-9)
			}
		})
	}
}

func TestSummaryStatisticsEmpty(t *testing.T) {
	s := SummaryStatistics(domain.FactTable{Columns: domain.ColumnReviewScore})

	assert.True(t, s.TotalRevenue.IsZero())
	assert.Nil(t, s.AverageOrderValue)
	assert.Nil(t, s.AverageReviewScore)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"average_review_score":null`)
}

func TestBuildBundle(t *testing.T) {
	table := domain.FactTable{
		Rows: []domain.SalesFactRow{
			fact("A", 1, 10, withMonth(2023, 1), withCategory("toys"), withState("SP"), withScore(5), withDelivery(2)),
			fact("A", 2, 20, withMonth(2023, 1), withCategory("books"), withState("SP"), withScore(5), withDelivery(2)),
			fact("B", 1, 60, withMonth(2023, 2), withCategory("toys"), withState("RJ"), withScore(3), withDelivery(9)),
		},
		Columns: domain.ColumnReviewScore | domain.ColumnDelivery,
	}
	orders := []domain.Order{
		{OrderID: "A", Status: domain.OrderStatusDelivered},
		{OrderID: "B", Status: domain.OrderStatusDelivered},
		{OrderID: "C", Status: domain.OrderStatusCanceled},
	}
	period := domain.NewPeriod(2023, 1, 2023, 12)

	b := BuildBundle(period, table, orders)

	assert.Equal(t, period, b.Period)
	assert.Equal(t, 3, b.FactRows)
	assertAmount(t, "90", b.Summary.TotalRevenue)
	require.Len(t, b.RevenueByMonth, 2)
	require.Len(t, b.MoMGrowth, 2)
	assert.InDelta(t, 1.0, *b.MoMGrowth[1].Growth, 1e-9)
	assert.InDelta(t, 1.0, *b.AverageMoMGrowth, 1e-9)
	assert.Equal(t, "toys", b.RevenueByCategory[0].Label())
	assert.Equal(t, "RJ", b.RevenueByState[0].Label())
	assert.Len(t, b.ReviewDistribution, 2)
	assert.Len(t, b.ReviewByDelivery, 2)
	require.Len(t, b.StatusDistribution, 2)
	assert.Equal(t, 2, b.StatusDistribution[0].Count)
}

func TestBuildBundleWithoutReviews(t *testing.T) {
	table := domain.FactTable{
		Rows:    []domain.SalesFactRow{fact("A", 1, 10, withDelivery(2))},
		Columns: domain.ColumnDelivery,
	}

	b := BuildBundle(domain.NewPeriod(2023, 1, 2023, 1), table, nil)
	assert.Nil(t, b.ReviewDistribution)
	assert.Nil(t, b.ReviewByDelivery)
	assert.Empty(t, b.StatusDistribution)
}
