package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Any value from this set may be assigned regardless of the
// current status; transitions are not constrained.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
)

// OrderStatuses lists every accepted order status.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCanceled,
	OrderStatusDelivered,
	OrderStatusShipped,
}

// ValidOrderStatus reports whether the value is an accepted status.
func ValidOrderStatus(value string) bool {
	for _, s := range OrderStatuses {
		if s == value {
			return true
		}
	}
	return false
}

// Payment statuses.
var PaymentStatuses = []string{"paid", "unpaid", "pending"}

// ValidPaymentStatus reports whether the value is an accepted payment status.
func ValidPaymentStatus(value string) bool {
	for _, s := range PaymentStatuses {
		if s == value {
			return true
		}
	}
	return false
}

// ShippingAddress is the delivery destination embedded in an order.
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode int    `json:"postal_code"`
}

// PaymentInfo records how an order was paid.
type PaymentInfo struct {
	PaymentMethod     string `json:"payment_method"`
	TransactionID     int64  `json:"transaction_id"`
	BillingPostalCode int    `json:"billing_postal_code"`
	PaymentStatus     string `gorm:"default:paid" json:"payment_status"`
}

// Order is addressed externally by its numeric OrderID. TotalPrice is always
// recomputed from product prices, never taken from the caller.
type Order struct {
	BaseModel
	OrderID         int             `gorm:"uniqueIndex" json:"order_id"`
	Status          string          `gorm:"default:pending" json:"status"`
	OrderDate       time.Time       `json:"order_date"`
	TotalPrice      float64         `json:"total_price"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;index" json:"customer_id"`
	Customer        *Customer       `json:"customer,omitempty"`
	UserID          *uuid.UUID      `gorm:"type:uuid" json:"user_id"`
	User            *User           `json:"user,omitempty"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentInfo     PaymentInfo     `gorm:"embedded;embeddedPrefix:payment_" json:"payment_info"`
	Products        []OrderProduct  `json:"products,omitempty"`
}

// OrderProduct is a line item referencing a catalog product.
type OrderProduct struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
}
