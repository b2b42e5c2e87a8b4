package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle status of an order as exported by the shop
type OrderStatus string

const (
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusCanceled    OrderStatus = "canceled"
	OrderStatusUnavailable OrderStatus = "unavailable"
	OrderStatusInvoiced    OrderStatus = "invoiced"
	OrderStatusProcessing  OrderStatus = "processing"
	OrderStatusCreated     OrderStatus = "created"
	OrderStatusApproved    OrderStatus = "approved"
)

// OrderItem is one line item of an order
type OrderItem struct {
	OrderID      string          `json:"order_id" validate:"required"`
	LineItemID   int             `json:"order_item_id" validate:"min=1"`
	ProductID    string          `json:"product_id" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	FreightValue decimal.Decimal `json:"freight_value"`
}

// Order is an order header. Year and Month are derived from PurchasedAt
// by the normalizer.
type Order struct {
	OrderID             string      `json:"order_id" validate:"required"`
	CustomerID          string      `json:"customer_id" validate:"required"`
	Status              OrderStatus `json:"order_status" validate:"required"`
	PurchasedAt         time.Time   `json:"order_purchase_timestamp"`
	ApprovedAt          *time.Time  `json:"order_approved_at,omitempty"`
	DeliveredCarrierAt  *time.Time  `json:"order_delivered_carrier_date,omitempty"`
	DeliveredAt         *time.Time  `json:"order_delivered_customer_date,omitempty"`
	EstimatedDeliveryAt *time.Time  `json:"order_estimated_delivery_date,omitempty"`
	Year                int         `json:"year"`
	Month               int         `json:"month" validate:"min=1,max=12"`
}

// PurchaseTime returns the purchase timestamp used by period filtering
func (o Order) PurchaseTime() time.Time {
	return o.PurchasedAt
}

// Product is a catalog entry; Category is nil when the export left it blank
type Product struct {
	ProductID string  `json:"product_id" validate:"required"`
	Category  *string `json:"product_category_name"`
}

// Customer carries the geography of the customer placing an order
type Customer struct {
	CustomerID string `json:"customer_id" validate:"required"`
	State      string `json:"customer_state"`
	City       string `json:"customer_city"`
}

// Review is a customer review of a whole order
type Review struct {
	ReviewID   string     `json:"review_id,omitempty"`
	OrderID    string     `json:"order_id" validate:"required"`
	Score      int        `json:"review_score" validate:"min=1,max=5"`
	CreatedAt  *time.Time `json:"review_creation_date,omitempty"`
	AnsweredAt *time.Time `json:"review_answer_timestamp,omitempty"`
}
