package metrics

import (
	"github.com/shopspring/decimal"

	"ecomcli/pkg/contracts/domain"
)

// ComparePeriods compares revenue, order value and order count between two
// periods. AOV change and growth are nil when either side has no orders.
func ComparePeriods(current, previous []domain.SalesFactRow) domain.Comparison {
	c := domain.Comparison{
		CurrentRevenue:  TotalRevenue(current),
		PreviousRevenue: TotalRevenue(previous),
		CurrentAOV:      AverageOrderValue(current),
		PreviousAOV:     AverageOrderValue(previous),
		CurrentOrders:   TotalOrders(current),
		PreviousOrders:  TotalOrders(previous),
	}

	c.RevenueChange = c.CurrentRevenue.Sub(c.PreviousRevenue)
	c.RevenueGrowthRate = RevenueGrowth(c.CurrentRevenue, c.PreviousRevenue)

	curAOV, curOK := averageOrderValue(current)
	prevAOV, prevOK := averageOrderValue(previous)
	if curOK && prevOK {
		c.AOVChange = ptr(curAOV.Sub(prevAOV).InexactFloat64())
		c.AOVGrowthRate = ptr(RevenueGrowth(curAOV, prevAOV))
	}

	c.OrdersChange = c.CurrentOrders - c.PreviousOrders
	c.OrdersGrowthRate = RevenueGrowth(decimal.NewFromInt(int64(c.CurrentOrders)), decimal.NewFromInt(int64(c.PreviousOrders)))

	return c
}

// SummaryStatistics reports headline figures for one period. Review and
// delivery averages are only part of the summary when the table carries
// those columns.
func SummaryStatistics(table domain.FactTable) domain.Summary {
	s := domain.Summary{
		TotalRevenue:         TotalRevenue(table.Rows),
		TotalOrders:          TotalOrders(table.Rows),
		AverageOrderValue:    AverageOrderValue(table.Rows),
		AverageItemsPerOrder: ItemsPerOrder(table.Rows),
		Columns:              table.Columns,
	}

	if table.Columns.Has(domain.ColumnReviewScore) {
		s.AverageReviewScore = AverageReviewScore(table.Rows)
	}
	if table.Columns.Has(domain.ColumnDelivery) {
		s.AverageDeliveryDays = AverageDeliveryTime(table.Rows)
	}

	return s
}

// BuildBundle computes every metric for one period. orders is the order
// table already restricted to the same period and feeds the status
// distribution.
func BuildBundle(period domain.Period, table domain.FactTable, orders []domain.Order) domain.MetricBundle {
	monthly, _ := RevenueByPeriod(table.Rows, domain.GroupByYearMonth)
	growth := MoMGrowth(monthly)

	b := domain.MetricBundle{
		Period:             period,
		FactRows:           table.Len(),
		Summary:            SummaryStatistics(table),
		RevenueByMonth:     monthly,
		MoMGrowth:          growth,
		AverageMoMGrowth:   AverageMoMGrowth(growth),
		RevenueByCategory:  RevenueByCategory(table.Rows),
		RevenueByState:     RevenueByState(table.Rows),
		StatusDistribution: OrderStatusDistribution(orders),
	}

	if table.Columns.Has(domain.ColumnReviewScore) {
		b.ReviewDistribution = ReviewScoreDistribution(table.Rows)
	}
	if table.Columns.Has(domain.ColumnReviewScore | domain.ColumnDelivery) {
		b.ReviewByDelivery = ReviewByDeliverySpeed(table.Rows)
	}

	return b
}
