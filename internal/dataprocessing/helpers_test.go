package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ecomcli/internal/config"
	"ecomcli/pkg/contracts/domain"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := ParseTimestamp(s)
	require.NoError(t, err)
	return v
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tsPtr(t *testing.T, s string) *time.Time {
	v := ts(t, s)
	return &v
}

func strPtr(s string) *string { return &s }

func order(t *testing.T, id, customer string, status domain.OrderStatus, purchased string, delivered string) domain.Order {
	p := ts(t, purchased)
	o := domain.Order{
		OrderID:     id,
		CustomerID:  customer,
		Status:      status,
		PurchasedAt: p,
		Year:        p.Year(),
		Month:       int(p.Month()),
	}
	if delivered != "" {
		o.DeliveredAt = tsPtr(t, delivered)
	}
	return o
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

const (
	ordersCSV = `order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2023-01-10 10:00:00,2023-01-10 11:00:00,2023-01-11 09:00:00,2023-01-13 10:00:00,2023-01-20 00:00:00
o2,c2,delivered,2023-02-05 08:30:00,,,2023-02-15 08:00:00,2023-02-20 00:00:00
o3,c1,canceled,2023-02-07 12:00:00,,,,2023-02-25 00:00:00
`
	itemsCSV = `order_id,order_item_id,product_id,price,freight_value
o1,1,p1,50.00,5.10
o1,2,p2,30.00,5.10
o2,1,p1,40.00,7.00
o3,1,p2,99.90,3.00
ghost,1,p1,10.00,1.00
`
	productsCSV = `product_id,product_category_name,product_weight_g
p1,beleza_saude,500
p2,,250
`
	customersCSV = `customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state
c1,u1,01001,sao paulo,SP
c2,u2,20001,rio de janeiro,RJ
`
	reviewsCSV = `review_id,order_id,review_score,review_comment_title,review_creation_date,review_answer_timestamp
r1,o1,5,,2023-01-14 00:00:00,2023-01-15 10:00:00
r2,o2,3,,2023-02-16 00:00:00,2023-02-17 12:00:00
`
)

// writeDataset writes the sample CSV dataset into a new temp dir
func writeDataset(t *testing.T, withReviews bool) string {
	t.Helper()
	dir := t.TempDir()
	files := config.Default().Analysis.Files
	writeFile(t, dir, files.Orders, ordersCSV)
	writeFile(t, dir, files.OrderItems, itemsCSV)
	writeFile(t, dir, files.Products, productsCSV)
	writeFile(t, dir, files.Customers, customersCSV)
	if withReviews {
		writeFile(t, dir, files.Reviews, reviewsCSV)
	}
	return dir
}
