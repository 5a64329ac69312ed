package payment

import "time"

// CreatePaymentRequest is the body of POST /payments.
type CreatePaymentRequest struct {
	OrderID              string         `json:"order_id" binding:"required"`
	CustomerID           string         `json:"customer_id" binding:"required"`
	Amount               float64        `json:"amount" binding:"required,gt=0"`
	Currency             string         `json:"currency" binding:"required,oneof=USD EUR GBP CAD AUD JPY INR CNY BRL MXN"`
	PaymentMethod        MethodDetails  `json:"payment_method" binding:"required"`
	Description          string         `json:"description" binding:"max=500"`
	Metadata             map[string]any `json:"metadata"`
	CaptureMethod        string         `json:"capture_method" binding:"omitempty,oneof=automatic manual"`
	StatementDescriptor  string         `json:"statement_descriptor" binding:"max=22"`
	ReceiptEmail         string         `json:"receipt_email" binding:"omitempty,email"`
	ApplicationFeeAmount float64        `json:"application_fee_amount" binding:"gte=0"`
}

// UpdatePaymentRequest is the body of PUT /payments/:id.
type UpdatePaymentRequest struct {
	Description          *string        `json:"description" binding:"omitempty,max=500"`
	Metadata             map[string]any `json:"metadata"`
	StatementDescriptor  *string        `json:"statement_descriptor" binding:"omitempty,max=22"`
	ReceiptEmail         *string        `json:"receipt_email" binding:"omitempty,email"`
	ApplicationFeeAmount *float64       `json:"application_fee_amount" binding:"omitempty,gte=0"`
}

// StatusUpdate carries PATCH /payments/:id/status query parameters.
type StatusUpdate struct {
	Status            Status `form:"status" binding:"required"`
	ProviderPaymentID string `form:"provider_payment_id"`
	FailureReason     string `form:"failure_reason"`
	FailureCode       string `form:"failure_code"`
}

// ProcessRequest is the body of POST /payments/:id/process.
type ProcessRequest struct {
	ProviderPaymentID string   `json:"provider_payment_id" binding:"required"`
	ProviderFeeAmount *float64 `json:"provider_fee_amount" binding:"omitempty,gte=0"`
}

// CaptureRequest is the body of POST /payments/:id/capture.
type CaptureRequest struct {
	Amount              *float64       `json:"amount" binding:"omitempty,gt=0"`
	StatementDescriptor string         `json:"statement_descriptor" binding:"max=22"`
	ReceiptEmail        string         `json:"receipt_email" binding:"omitempty,email"`
	Metadata            map[string]any `json:"metadata"`
}

// SearchRequest is the body of POST /payments/search.
type SearchRequest struct {
	OrderID    string     `json:"order_id"`
	CustomerID string     `json:"customer_id"`
	Status     Status     `json:"status"`
	MethodType MethodType `json:"payment_method"`
	Provider   Provider   `json:"provider"`
	MinAmount  *float64   `json:"min_amount" binding:"omitempty,gte=0"`
	MaxAmount  *float64   `json:"max_amount" binding:"omitempty,gte=0"`
	Currency   string     `json:"currency" binding:"omitempty,oneof=USD EUR GBP CAD AUD JPY INR CNY BRL MXN"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	SortBy     string     `json:"sort_by"`
	SortOrder  string     `json:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// Filter narrows payment listings.
type Filter struct {
	OrderID           string
	CustomerID        string
	ProviderPaymentID string
	Status            Status
	MethodType        MethodType
	Provider          Provider
	Currency          string
	MinAmount         *float64
	MaxAmount         *float64
	StartDate         *time.Time
	EndDate           *time.Time
	SortBy            string
	SortDesc          bool
}

// ListResponse is a page of payments.
type ListResponse struct {
	Payments []*Payment `json:"payments"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	Size     int        `json:"size"`
}

// CreateRefundRequest is the body of POST /payments/refunds.
type CreateRefundRequest struct {
	PaymentID string         `json:"payment_id" binding:"required"`
	Amount    *float64       `json:"amount" binding:"omitempty,gt=0"`
	Reason    string         `json:"reason" binding:"max=500"`
	Metadata  map[string]any `json:"metadata"`
}

// RefundListResponse lists the refunds of one payment.
type RefundListResponse struct {
	Refunds []*Refund `json:"refunds"`
	Total   int       `json:"total"`
}

// CreateMethodRequest is the body of POST /payments/methods.
type CreateMethodRequest struct {
	CustomerID    string         `json:"customer_id" binding:"required"`
	PaymentMethod MethodDetails  `json:"payment_method" binding:"required"`
	IsDefault     bool           `json:"is_default"`
	Metadata      map[string]any `json:"metadata"`
}

// UpdateMethodRequest is the body of PUT /payments/methods/:id.
type UpdateMethodRequest struct {
	IsDefault *bool          `json:"is_default"`
	Metadata  map[string]any `json:"metadata"`
}

// MethodListResponse lists a customer's payment methods.
type MethodListResponse struct {
	PaymentMethods []*PaymentMethod `json:"payment_methods"`
	Total          int              `json:"total"`
}

// CreateIntentRequest is the body of POST /payments/intents.
type CreateIntentRequest struct {
	Amount               float64        `json:"amount" binding:"required,gt=0"`
	Currency             string         `json:"currency" binding:"required,oneof=USD EUR GBP CAD AUD JPY INR CNY BRL MXN"`
	CustomerID           string         `json:"customer_id" binding:"required"`
	PaymentMethod        string         `json:"payment_method"`
	Description          string         `json:"description" binding:"max=500"`
	Metadata             map[string]any `json:"metadata"`
	CaptureMethod        string         `json:"capture_method" binding:"omitempty,oneof=automatic manual"`
	StatementDescriptor  string         `json:"statement_descriptor" binding:"max=22"`
	ReceiptEmail         string         `json:"receipt_email" binding:"omitempty,email"`
	ApplicationFeeAmount float64        `json:"application_fee_amount" binding:"gte=0"`
	// Provider selects a configured gateway. Empty keeps the intent local.
	Provider string `json:"provider" binding:"omitempty,oneof=stripe paypal"`
}

// IntentStatusRequest is the optional body of PATCH /payments/intents/:id/status.
type IntentStatusRequest struct {
	NextAction map[string]any `json:"next_action"`
}

// CreateWebhookEventRequest is the body of POST /payments/webhooks/events.
type CreateWebhookEventRequest struct {
	Provider        Provider       `json:"provider" binding:"required,oneof=stripe paypal square braintree adyen razorpay custom"`
	ProviderEventID string         `json:"provider_event_id"`
	EventType       string         `json:"event_type" binding:"required"`
	PaymentID       string         `json:"payment_id"`
	Data            map[string]any `json:"data" binding:"required"`
}

// WebhookEventListResponse lists webhook events.
type WebhookEventListResponse struct {
	Events []*WebhookEvent `json:"events"`
	Total  int             `json:"total"`
}

// Distribution is one bucket of a statistics breakdown.
type Distribution struct {
	Key   string  `json:"key"`
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

// Statistics summarises payments over a date range.
type Statistics struct {
	TotalPayments        int64          `json:"total_payments"`
	TotalAmount          float64        `json:"total_amount"`
	SuccessfulPayments   int64          `json:"successful_payments"`
	FailedPayments       int64          `json:"failed_payments"`
	PendingPayments      int64          `json:"pending_payments"`
	RefundedAmount       float64        `json:"refunded_amount"`
	NetRevenue           float64        `json:"net_revenue"`
	AveragePaymentAmount float64        `json:"average_payment_amount"`
	CurrencyDistribution []Distribution `json:"currency_distribution"`
	MethodDistribution   []Distribution `json:"method_distribution"`
	ProviderDistribution []Distribution `json:"provider_distribution"`
}
