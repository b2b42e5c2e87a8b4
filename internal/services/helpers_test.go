package services

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ecomcli/internal/config"
	"ecomcli/internal/dataprocessing"
	"ecomcli/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

func atPtr(s string) *time.Time {
	t := at(s)
	return &t
}

func str(s string) *string { return &s }

func testConfig() config.AnalysisConfig {
	return config.Default().Analysis
}

func newTestService(t *testing.T, dataDir string) *AnalysisService {
	t.Helper()
	svc := NewAnalysisService(testConfig(), dataDir, nil, discardLogger())
	svc.now = func() time.Time { return at("2024-03-01 12:00:00") }
	return svc
}

func newOrder(id, customer string, status domain.OrderStatus, purchased string, delivered *time.Time) domain.Order {
	p := at(purchased)
	return domain.Order{
		OrderID:     id,
		CustomerID:  customer,
		Status:      status,
		PurchasedAt: p,
		DeliveredAt: delivered,
		Year:        p.Year(),
		Month:       int(p.Month()),
	}
}

// sampleDataset has two delivered orders and one canceled order in 2023
// and one delivered order in 2022
func sampleDataset() dataprocessing.Dataset {
	return dataprocessing.Dataset{
		Orders: []domain.Order{
			newOrder("o1", "c1", domain.OrderStatusDelivered, "2023-01-10 09:00:00", atPtr("2023-01-12 10:00:00")),
			newOrder("o2", "c2", domain.OrderStatusDelivered, "2023-02-05 09:00:00", atPtr("2023-02-15 10:00:00")),
			newOrder("o3", "c1", domain.OrderStatusCanceled, "2023-02-07 09:00:00", nil),
			newOrder("p1", "c2", domain.OrderStatusDelivered, "2022-01-20 09:00:00", atPtr("2022-01-24 10:00:00")),
		},
		Items: []domain.OrderItem{
			{OrderID: "o1", LineItemID: 1, ProductID: "pA", Price: decimal.NewFromInt(10)},
			{OrderID: "o1", LineItemID: 2, ProductID: "pB", Price: decimal.NewFromInt(20)},
			{OrderID: "o2", LineItemID: 1, ProductID: "pA", Price: decimal.NewFromInt(50)},
			{OrderID: "o3", LineItemID: 1, ProductID: "pA", Price: decimal.NewFromInt(5)},
			{OrderID: "p1", LineItemID: 1, ProductID: "pB", Price: decimal.NewFromInt(40)},
		},
		Products: []domain.Product{
			{ProductID: "pA", Category: str("toys")},
			{ProductID: "pB", Category: str("books")},
		},
		Customers: []domain.Customer{
			{CustomerID: "c1", State: "SP", City: "sao paulo"},
			{CustomerID: "c2", State: "RJ", City: "rio de janeiro"},
		},
		Reviews: []domain.Review{
			{OrderID: "o1", Score: 5},
			{OrderID: "o2", Score: 3},
			{OrderID: "p1", Score: 4},
		},
		HasReviews:  true,
		HasDelivery: true,
	}
}

const (
	ordersCSV = `order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2023-01-10 09:00:00,2023-01-12 10:00:00,2023-01-20 00:00:00
o2,c2,delivered,2023-02-05 09:00:00,2023-02-15 10:00:00,2023-02-20 00:00:00
p1,c2,delivered,2022-01-20 09:00:00,2022-01-24 10:00:00,2022-01-30 00:00:00
`
	itemsCSV = `order_id,order_item_id,product_id,price,freight_value
o1,1,pA,10.00,1.00
o1,2,pB,20.00,1.00
o2,1,pA,50.00,2.00
p1,1,pB,40.00,2.00
`
	productsCSV = `product_id,product_category_name
pA,toys
pB,books
`
	customersCSV = `customer_id,customer_state,customer_city
c1,SP,sao paulo
c2,RJ,rio de janeiro
`
)

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := config.Default().Analysis.Files
	for name, content := range map[string]string{
		files.Orders:     ordersCSV,
		files.OrderItems: itemsCSV,
		files.Products:   productsCSV,
		files.Customers:  customersCSV,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}
