// Package order manages customer orders and their fulfilment lifecycle.
package order

import (
	"time"
)

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is known.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Order represents a customer order.
type Order struct {
	ID              uint   `gorm:"primaryKey"`
	OrderID         string `gorm:"column:order_id;uniqueIndex;size:50;not null"`
	CustomerID      string `gorm:"size:50;not null;index"`
	CustomerName    string `gorm:"not null"`
	CustomerEmail   string `gorm:"not null"`
	CustomerPhone   *string
	ShippingAddress string      `gorm:"not null"`
	Subtotal        float64     `gorm:"not null;default:0"`
	Tax             float64     `gorm:"not null;default:0"`
	ShippingCost    float64     `gorm:"not null;default:0"`
	TotalAmount     float64     `gorm:"not null;default:0"`
	Status          OrderStatus `gorm:"not null;default:pending;index"`
	Notes           *string
	PaymentID       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Relations
	Items []OrderItem `gorm:"foreignKey:OrderRef;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsPending returns true if the order has not been confirmed yet.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey"`
	OrderRef    uint    `gorm:"column:order_ref;not null;index"`
	ProductID   string  `gorm:"not null"`
	ProductName string  `gorm:"not null"`
	Quantity    int     `gorm:"not null"`
	UnitPrice   float64 `gorm:"not null"`
	TotalPrice  float64 `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the database table name.
func (OrderItem) TableName() string {
	return "order_items"
}

// ToResponse converts the order to its API representation.
func (o *Order) ToResponse() *OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		}
	}
	return &OrderResponse{
		ID:              o.OrderID,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingCost:    o.ShippingCost,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
		Notes:           o.Notes,
		PaymentID:       o.PaymentID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
