package metrics

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/pkg/contracts/domain"
)

func TestTwoOrderScenario(t *testing.T) {
	rows := []domain.SalesFactRow{
		fact("A", 1, 10),
		fact("A", 2, 20),
		fact("B", 1, 50),
	}

	assertAmount(t, "80", TotalRevenue(rows))
	assert.Equal(t, 2, TotalOrders(rows))
	require.NotNil(t, AverageOrderValue(rows))
	assert.InDelta(t, 40.0, *AverageOrderValue(rows), 1e-9)
	require.NotNil(t, ItemsPerOrder(rows))
	assert.InDelta(t, 1.5, *ItemsPerOrder(rows), 1e-9)
}

func TestEmptyRows(t *testing.T) {
	assert.True(t, TotalRevenue(nil).IsZero())
	assert.Equal(t, 0, TotalOrders(nil))
	assert.Nil(t, AverageOrderValue(nil))
	assert.Nil(t, ItemsPerOrder(nil))
	assert.Empty(t, OrderProjection(nil))
}

func TestTotalRevenueIsSumOfPrices(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   string
	}{
		{"single", []float64{12.5}, "12.5"},
		{"many", []float64{10, 20.25, 0, 199.99, 3.01}, "233.25"},
		{"refund line", []float64{100, -15}, "85"},
		{"binary fractions", []float64{0.1, 0.2}, "0.3"},
		{"many cents", []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []domain.SalesFactRow
			for i, p := range tt.prices {
				rows = append(rows, fact("o", i+1, p))
			}
			assertAmount(t, tt.want, TotalRevenue(rows))
		})
	}
}

func TestAmountsAreExact(t *testing.T) {
	rows := []domain.SalesFactRow{fact("A", 1, 0.1), fact("A", 2, 0.2)}

	assert.Equal(t, "0.30", TotalRevenue(rows).StringFixed(2))
	assert.True(t, TotalRevenue(rows).Equal(decimal.NewFromFloat(0.3)))
	assert.Equal(t, 0.3, *AverageOrderValue(rows))

	data, err := json.Marshal(SummaryStatistics(domain.FactTable{Rows: rows}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"total_revenue": 0.3,
		"total_orders": 1,
		"average_order_value": 0.3,
		"average_items_per_order": 2
	}`, string(data))
}

func TestOrderProjection(t *testing.T) {
	rows := []domain.SalesFactRow{
		fact("B", 1, 50, withScore(2)),
		fact("A", 1, 10, withScore(4)),
		fact("A", 2, 20, withScore(1)),
		fact("B", 2, 5, withScore(5)),
		fact("A", 3, 30, withScore(3)),
	}

	orders := OrderProjection(rows)
	require.Len(t, orders, 2)

	assert.Equal(t, "B", orders[0].OrderID, "orders keep first-appearance order")
	assertAmount(t, "55", orders[0].Revenue)
	assert.Equal(t, 2, orders[0].Items)
	assert.Equal(t, 2, *orders[0].ReviewScore, "first row represents the order")

	assert.Equal(t, "A", orders[1].OrderID)
	assertAmount(t, "60", orders[1].Revenue)
	assert.Equal(t, 3, orders[1].Items)
	assert.Equal(t, 1, orders[1].LineItemID)
	assert.Equal(t, 4, *orders[1].ReviewScore)
}
