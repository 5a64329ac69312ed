package order

import "time"

// ItemRequest is one line of a create or update request.
type ItemRequest struct {
	ProductID   string  `json:"product_id" binding:"required"`
	ProductName string  `json:"product_name" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

// CreateOrderRequest represents an order placement.
type CreateOrderRequest struct {
	CustomerID      string        `json:"customer_id" binding:"required"`
	CustomerName    string        `json:"customer_name" binding:"required"`
	CustomerEmail   string        `json:"customer_email" binding:"required,email"`
	CustomerPhone   *string       `json:"customer_phone" binding:"omitempty,max=20"`
	ShippingAddress string        `json:"shipping_address" binding:"required"`
	Items           []ItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes           *string       `json:"notes"`
	PaymentID       *string       `json:"payment_id"`
}

// UpdateOrderRequest carries a partial update. Items may only change while
// the order is pending; a status change goes through the state machine.
type UpdateOrderRequest struct {
	Status          *OrderStatus  `json:"status" binding:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	ShippingAddress *string       `json:"shipping_address" binding:"omitempty,min=1"`
	Notes           *string       `json:"notes"`
	PaymentID       *string       `json:"payment_id"`
	Items           []ItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

// UpdateStatusRequest changes only the status.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

// OrderFilter represents filters for listing orders.
type OrderFilter struct {
	Status     *OrderStatus
	CustomerID string
}

// ItemResponse is a line item in API responses.
type ItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID              string         `json:"id"`
	CustomerID      string         `json:"customer_id"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerPhone   *string        `json:"customer_phone"`
	ShippingAddress string         `json:"shipping_address"`
	Items           []ItemResponse `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	Tax             float64        `json:"tax"`
	ShippingCost    float64        `json:"shipping_cost"`
	TotalAmount     float64        `json:"total_amount"`
	Status          OrderStatus    `json:"status"`
	Notes           *string        `json:"notes"`
	PaymentID       *string        `json:"payment_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ListResponse is a page of orders.
type ListResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}
