package events

// Event type names.
const (
	TypePaymentCreated     = "payment.created"
	TypePaymentCompleted   = "payment.completed"
	TypePaymentRefunded    = "payment.refunded"
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// PaymentCreatedEvent is published when a payment record is created.
type PaymentCreatedEvent struct {
	BaseEvent
	OrderID    string  `json:"order_id"`
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

// NewPaymentCreatedEvent creates a PaymentCreatedEvent.
func NewPaymentCreatedEvent(paymentID, orderID, customerID string, amount float64, currency string) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseEvent:  NewBaseEvent(TypePaymentCreated, paymentID, "payment"),
		OrderID:    orderID,
		CustomerID: customerID,
		Amount:     amount,
		Currency:   currency,
	}
}

// PaymentCompletedEvent is published when a payment reaches completed.
type PaymentCompletedEvent struct {
	BaseEvent
	OrderID           string  `json:"order_id"`
	Amount            float64 `json:"amount"`
	NetAmount         float64 `json:"net_amount"`
	Currency          string  `json:"currency"`
	ProviderPaymentID string  `json:"provider_payment_id,omitempty"`
}

// NewPaymentCompletedEvent creates a PaymentCompletedEvent.
func NewPaymentCompletedEvent(paymentID, orderID string, amount, netAmount float64, currency, providerPaymentID string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent:         NewBaseEvent(TypePaymentCompleted, paymentID, "payment"),
		OrderID:           orderID,
		Amount:            amount,
		NetAmount:         netAmount,
		Currency:          currency,
		ProviderPaymentID: providerPaymentID,
	}
}

// PaymentRefundedEvent is published for every refund.
type PaymentRefundedEvent struct {
	BaseEvent
	RefundID      string  `json:"refund_id"`
	OrderID       string  `json:"order_id"`
	Amount        float64 `json:"amount"`
	TotalRefunded float64 `json:"total_refunded"`
	Currency      string  `json:"currency"`
	PaymentStatus string  `json:"payment_status"`
}

// NewPaymentRefundedEvent creates a PaymentRefundedEvent.
func NewPaymentRefundedEvent(paymentID, refundID, orderID string, amount, totalRefunded float64, currency, paymentStatus string) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseEvent:     NewBaseEvent(TypePaymentRefunded, paymentID, "payment"),
		RefundID:      refundID,
		OrderID:       orderID,
		Amount:        amount,
		TotalRefunded: totalRefunded,
		Currency:      currency,
		PaymentStatus: paymentStatus,
	}
}

// OrderCreatedEvent is published when an order is placed.
type OrderCreatedEvent struct {
	BaseEvent
	CustomerID  string  `json:"customer_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

// NewOrderCreatedEvent creates an OrderCreatedEvent.
func NewOrderCreatedEvent(orderID, customerID string, total float64, itemCount int) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseEvent:   NewBaseEvent(TypeOrderCreated, orderID, "order"),
		CustomerID:  customerID,
		TotalAmount: total,
		ItemCount:   itemCount,
	}
}

// OrderStatusChangedEvent is published on every order transition.
type OrderStatusChangedEvent struct {
	BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent.
func NewOrderStatusChangedEvent(orderID, from, to string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: NewBaseEvent(TypeOrderStatusChanged, orderID, "order"),
		From:      from,
		To:        to,
	}
}
