package dataprocessing

import (
	"log/slog"
	"math"
	"time"

	"ecomcli/internal/config"
	"ecomcli/pkg/contracts/domain"
)

// FactOptions controls how the sales fact table is built
type FactOptions struct {
	// StatusFilter keeps only orders whose status equals it exactly.
	// Empty keeps every status.
	StatusFilter     string
	DuplicateReviews ReviewPolicy
}

// FactOptionsFrom derives build options from the analysis configuration
func FactOptionsFrom(cfg config.AnalysisConfig) (FactOptions, error) {
	policy, err := ParseReviewPolicy(cfg.ReviewPolicy)
	if err != nil {
		return FactOptions{}, err
	}
	return FactOptions{
		StatusFilter:     cfg.StatusFilter,
		DuplicateReviews: policy,
	}, nil
}

// FactBuilder joins the normalized tables into the sales fact table
type FactBuilder struct {
	logger *slog.Logger
}

// NewFactBuilder creates a builder that reports data quality issues to logger
func NewFactBuilder(logger *slog.Logger) *FactBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &FactBuilder{logger: logger.With(slog.String("component", "fact_builder"))}
}

// Build produces one fact row per line item whose order exists and passes
// the status filter, enriched with category, customer geography, review
// score and delivery speed.
func (b *FactBuilder) Build(ds Dataset, opts FactOptions) (domain.FactTable, domain.FactBuildStats, error) {
	stats := domain.FactBuildStats{ItemsIn: len(ds.Items)}

	orderKey := func(o domain.Order) string { return o.OrderID }
	orders, err := uniqueLookup("orders", ds.Orders, orderKey)
	if err != nil {
		return domain.FactTable{}, stats, err
	}
	products, err := uniqueLookup("products", ds.Products, func(p domain.Product) string { return p.ProductID })
	if err != nil {
		return domain.FactTable{}, stats, err
	}
	customers, err := uniqueLookup("customers", ds.Customers, func(c domain.Customer) string { return c.CustomerID })
	if err != nil {
		return domain.FactTable{}, stats, err
	}

	reviewKey := func(r domain.Review) string { return r.OrderID }
	var reviews lookup[domain.Review]
	if opts.DuplicateReviews == ReviewsKeepFirst {
		reviews, stats.DiscardedReviews = firstLookup("reviews", ds.Reviews, reviewKey)
	} else if reviews, err = uniqueLookup("reviews", ds.Reviews, reviewKey); err != nil {
		return domain.FactTable{}, stats, err
	}

	rows := make([]domain.SalesFactRow, 0, len(ds.Items))
	for _, item := range ds.Items {
		order, ok := orders.get(item.OrderID)
		if !ok {
			stats.DroppedNoOrder++
			continue
		}
		if opts.StatusFilter != "" && string(order.Status) != opts.StatusFilter {
			stats.DroppedByStatus++
			continue
		}

		row := domain.SalesFactRow{
			OrderID:      item.OrderID,
			LineItemID:   item.LineItemID,
			ProductID:    item.ProductID,
			CustomerID:   order.CustomerID,
			Price:        item.Price,
			FreightValue: item.FreightValue,
			OrderStatus:  order.Status,
			PurchasedAt:  order.PurchasedAt,
			DeliveredAt:  order.DeliveredAt,
			Year:         order.Year,
			Month:        order.Month,
		}

		if p, ok := products.get(item.ProductID); ok {
			row.Category = p.Category
		} else {
			stats.UnmatchedProducts++
		}

		if c, ok := customers.get(order.CustomerID); ok {
			row.CustomerState = nonEmpty(c.State)
			row.CustomerCity = nonEmpty(c.City)
		} else {
			stats.UnmatchedCustomers++
		}

		if r, ok := reviews.get(item.OrderID); ok {
			score := r.Score
			row.ReviewScore = &score
		} else if ds.HasReviews {
			stats.UnmatchedReviews++
		}

		row.DeliveryDays = DeliveryDays(order.PurchasedAt, order.DeliveredAt)
		if row.DeliveryDays != nil {
			cat := domain.CategorizeDelivery(*row.DeliveryDays)
			row.DeliveryCategory = &cat
		} else {
			stats.UndeliveredRows++
		}

		rows = append(rows, row)
	}
	stats.RowsOut = len(rows)

	if stats.DroppedNoOrder > 0 {
		b.logger.Warn("line items without a matching order were dropped",
			slog.Int("dropped", stats.DroppedNoOrder),
			slog.Int("items", stats.ItemsIn))
	}
	if stats.DiscardedReviews > 0 {
		b.logger.Warn("duplicate reviews discarded, keeping the first per order",
			slog.Int("discarded", stats.DiscardedReviews),
			slog.Int("orders_with_review", reviews.len()))
	}
	b.logger.Info("sales fact table built",
		slog.Int("rows", stats.RowsOut),
		slog.String("status_filter", opts.StatusFilter),
		slog.Int("dropped_by_status", stats.DroppedByStatus),
		slog.Int("unmatched_products", stats.UnmatchedProducts),
		slog.Int("unmatched_customers", stats.UnmatchedCustomers))

	return domain.FactTable{Rows: rows, Columns: ds.Columns()}, stats, nil
}

// BuildFactTable builds the fact table with the default logger
func BuildFactTable(ds Dataset, opts FactOptions) (domain.FactTable, error) {
	table, _, err := NewFactBuilder(nil).Build(ds, opts)
	return table, err
}

// DeliveryDays is the number of whole days between purchase and delivery,
// rounded down. Nil when the order was not delivered.
func DeliveryDays(purchased time.Time, delivered *time.Time) *int {
	if delivered == nil {
		return nil
	}
	days := int(math.Floor(delivered.Sub(purchased).Hours() / 24))
	return &days
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
