package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	apperrors "ecomcli/internal/errors"
	"ecomcli/pkg/contracts/domain"
)

// Source column names
const (
	ColOrderID               = "order_id"
	ColCustomerID            = "customer_id"
	ColOrderStatus           = "order_status"
	ColPurchaseTimestamp     = "order_purchase_timestamp"
	ColApprovedAt            = "order_approved_at"
	ColDeliveredCarrier      = "order_delivered_carrier_date"
	ColDeliveredCustomer     = "order_delivered_customer_date"
	ColEstimatedDelivery     = "order_estimated_delivery_date"
	ColOrderItemID           = "order_item_id"
	ColProductID             = "product_id"
	ColPrice                 = "price"
	ColFreightValue          = "freight_value"
	ColProductCategory       = "product_category_name"
	ColCustomerState         = "customer_state"
	ColCustomerCity          = "customer_city"
	ColReviewID              = "review_id"
	ColReviewScore           = "review_score"
	ColReviewCreationDate    = "review_creation_date"
	ColReviewAnswerTimestamp = "review_answer_timestamp"
)

// timestampLayouts are tried in order
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Dataset is the typed, normalized form of the five source tables
type Dataset struct {
	Orders    []domain.Order
	Items     []domain.OrderItem
	Products  []domain.Product
	Customers []domain.Customer
	Reviews   []domain.Review

	// HasReviews is false when no review table was available
	HasReviews bool
	// HasDelivery is false when orders carried no delivered timestamp column
	HasDelivery bool
}

// Columns reports which optional columns the dataset provides
func (d Dataset) Columns() domain.ColumnSet {
	var cols domain.ColumnSet
	if d.HasReviews {
		cols |= domain.ColumnReviewScore
	}
	if d.HasDelivery {
		cols |= domain.ColumnDelivery
	}
	return cols
}

// ParseTimestamp parses the timestamp formats found in shop exports.
// Values without a zone are UTC; an explicit offset is kept so the
// calendar year and month stay those written in the file.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// cellError reports an unparseable cell. Rows are numbered as in the file,
// the header being line 1.
func cellError(t *RawTable, i int, column, value string, cause error) error {
	return apperrors.NewMalformedInput(
		fmt.Sprintf("%s: row %d, column %s: cannot parse %q", t.Name, i+2, column, value), cause).
		WithContext("table", t.Name).
		WithContext("row", i+2).
		WithContext("column", column)
}

func optionalTimestamp(t *RawTable, row []string, i int, column string) (*time.Time, error) {
	col, ok := t.Col(column)
	if !ok {
		return nil, nil
	}
	v := t.Cell(row, col)
	if v == "" {
		return nil, nil
	}
	ts, err := ParseTimestamp(v)
	if err != nil {
		return nil, cellError(t, i, column, v, err)
	}
	return &ts, nil
}

// parseAmount reads a money cell exactly, so 0.1 stays 0.1
func parseAmount(t *RawTable, row []string, i int, column string) (decimal.Decimal, error) {
	col, _ := t.Col(column)
	v := t.Cell(row, col)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, cellError(t, i, column, v, err)
	}
	return d, nil
}

func parseInt(t *RawTable, row []string, i int, column string) (int, error) {
	col, _ := t.Col(column)
	v := t.Cell(row, col)
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	// spreadsheets write integers as 3.0
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, cellError(t, i, column, v, err)
	}
	return int(f), nil
}

// NormalizeOrders converts the orders table. The second result reports
// whether the delivered timestamp column was present.
func NormalizeOrders(t *RawTable) ([]domain.Order, bool, error) {
	if err := t.Require(ColOrderID, ColCustomerID, ColOrderStatus, ColPurchaseTimestamp); err != nil {
		return nil, false, err
	}

	idCol, _ := t.Col(ColOrderID)
	custCol, _ := t.Col(ColCustomerID)
	statusCol, _ := t.Col(ColOrderStatus)
	purchaseCol, _ := t.Col(ColPurchaseTimestamp)

	orders := make([]domain.Order, 0, len(t.Rows))
	for i, row := range t.Rows {
		raw := t.Cell(row, purchaseCol)
		purchased, err := ParseTimestamp(raw)
		if err != nil {
			return nil, false, cellError(t, i, ColPurchaseTimestamp, raw, err)
		}

		o := domain.Order{
			OrderID:     t.Cell(row, idCol),
			CustomerID:  t.Cell(row, custCol),
			Status:      domain.OrderStatus(t.Cell(row, statusCol)),
			PurchasedAt: purchased,
			Year:        purchased.Year(),
			Month:       int(purchased.Month()),
		}

		if o.ApprovedAt, err = optionalTimestamp(t, row, i, ColApprovedAt); err != nil {
			return nil, false, err
		}
		if o.DeliveredCarrierAt, err = optionalTimestamp(t, row, i, ColDeliveredCarrier); err != nil {
			return nil, false, err
		}
		if o.DeliveredAt, err = optionalTimestamp(t, row, i, ColDeliveredCustomer); err != nil {
			return nil, false, err
		}
		if o.EstimatedDeliveryAt, err = optionalTimestamp(t, row, i, ColEstimatedDelivery); err != nil {
			return nil, false, err
		}

		orders = append(orders, o)
	}

	return orders, t.HasColumn(ColDeliveredCustomer), nil
}

// NormalizeItems converts the order items table
func NormalizeItems(t *RawTable) ([]domain.OrderItem, error) {
	if err := t.Require(ColOrderID, ColOrderItemID, ColProductID, ColPrice, ColFreightValue); err != nil {
		return nil, err
	}

	idCol, _ := t.Col(ColOrderID)
	productCol, _ := t.Col(ColProductID)

	items := make([]domain.OrderItem, 0, len(t.Rows))
	for i, row := range t.Rows {
		lineID, err := parseInt(t, row, i, ColOrderItemID)
		if err != nil {
			return nil, err
		}
		price, err := parseAmount(t, row, i, ColPrice)
		if err != nil {
			return nil, err
		}
		freight, err := parseAmount(t, row, i, ColFreightValue)
		if err != nil {
			return nil, err
		}

		items = append(items, domain.OrderItem{
			OrderID:      t.Cell(row, idCol),
			LineItemID:   lineID,
			ProductID:    t.Cell(row, productCol),
			Price:        price,
			FreightValue: freight,
		})
	}

	return items, nil
}

// NormalizeProducts converts the products table. A blank category is nil.
func NormalizeProducts(t *RawTable) ([]domain.Product, error) {
	if err := t.Require(ColProductID, ColProductCategory); err != nil {
		return nil, err
	}

	idCol, _ := t.Col(ColProductID)
	catCol, _ := t.Col(ColProductCategory)

	products := make([]domain.Product, 0, len(t.Rows))
	for _, row := range t.Rows {
		p := domain.Product{ProductID: t.Cell(row, idCol)}
		if c := t.Cell(row, catCol); c != "" {
			p.Category = &c
		}
		products = append(products, p)
	}

	return products, nil
}

// NormalizeCustomers converts the customers table
func NormalizeCustomers(t *RawTable) ([]domain.Customer, error) {
	if err := t.Require(ColCustomerID, ColCustomerState, ColCustomerCity); err != nil {
		return nil, err
	}

	idCol, _ := t.Col(ColCustomerID)
	stateCol, _ := t.Col(ColCustomerState)
	cityCol, _ := t.Col(ColCustomerCity)

	customers := make([]domain.Customer, 0, len(t.Rows))
	for _, row := range t.Rows {
		customers = append(customers, domain.Customer{
			CustomerID: t.Cell(row, idCol),
			State:      t.Cell(row, stateCol),
			City:       t.Cell(row, cityCol),
		})
	}

	return customers, nil
}

// NormalizeReviews converts the reviews table. Scores must be within 1..5.
func NormalizeReviews(t *RawTable) ([]domain.Review, error) {
	if err := t.Require(ColOrderID, ColReviewScore); err != nil {
		return nil, err
	}

	idCol, _ := t.Col(ColOrderID)
	reviewIDCol, hasReviewID := t.Col(ColReviewID)
	scoreCol, _ := t.Col(ColReviewScore)

	reviews := make([]domain.Review, 0, len(t.Rows))
	for i, row := range t.Rows {
		score, err := parseInt(t, row, i, ColReviewScore)
		if err != nil {
			return nil, err
		}
		if score < 1 || score > 5 {
			return nil, cellError(t, i, ColReviewScore, t.Cell(row, scoreCol),
				fmt.Errorf("score %d outside 1..5", score))
		}

		r := domain.Review{
			OrderID: t.Cell(row, idCol),
			Score:   score,
		}
		if hasReviewID {
			r.ReviewID = t.Cell(row, reviewIDCol)
		}
		if r.CreatedAt, err = optionalTimestamp(t, row, i, ColReviewCreationDate); err != nil {
			return nil, err
		}
		if r.AnsweredAt, err = optionalTimestamp(t, row, i, ColReviewAnswerTimestamp); err != nil {
			return nil, err
		}

		reviews = append(reviews, r)
	}

	return reviews, nil
}

// Normalize converts every raw table into typed records
func Normalize(raw *RawDataset) (Dataset, error) {
	var ds Dataset
	var err error

	if ds.Orders, ds.HasDelivery, err = NormalizeOrders(raw.Orders); err != nil {
		return Dataset{}, err
	}
	if ds.Items, err = NormalizeItems(raw.OrderItems); err != nil {
		return Dataset{}, err
	}
	if ds.Products, err = NormalizeProducts(raw.Products); err != nil {
		return Dataset{}, err
	}
	if ds.Customers, err = NormalizeCustomers(raw.Customers); err != nil {
		return Dataset{}, err
	}
	if raw.Reviews != nil {
		if ds.Reviews, err = NormalizeReviews(raw.Reviews); err != nil {
			return Dataset{}, err
		}
		ds.HasReviews = true
	}

	return ds, nil
}
