package payment

import (
	"time"

	"github.com/datalake/server/internal/shared/money"
)

// Status represents the lifecycle state of a payment.
type Status string

const (
	StatusPending           Status = "pending"
	StatusProcessing        Status = "processing"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusCancelled         Status = "cancelled"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
	StatusDisputed          Status = "disputed"
)

// AllStatuses lists every payment status.
var AllStatuses = []Status{
	StatusPending, StatusProcessing, StatusCompleted, StatusFailed,
	StatusCancelled, StatusRefunded, StatusPartiallyRefunded, StatusDisputed,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// MethodType is the kind of instrument used to pay.
type MethodType string

const (
	MethodCreditCard    MethodType = "credit_card"
	MethodDebitCard     MethodType = "debit_card"
	MethodBankTransfer  MethodType = "bank_transfer"
	MethodDigitalWallet MethodType = "digital_wallet"
	MethodCrypto        MethodType = "cryptocurrency"
	MethodCash          MethodType = "cash"
	MethodCheck         MethodType = "check"
	MethodOther         MethodType = "other"
)

// AllMethodTypes lists every method type.
var AllMethodTypes = []MethodType{
	MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodDigitalWallet,
	MethodCrypto, MethodCash, MethodCheck, MethodOther,
}

// Provider names a payment processor.
type Provider string

const (
	ProviderStripe    Provider = "stripe"
	ProviderPayPal    Provider = "paypal"
	ProviderSquare    Provider = "square"
	ProviderBraintree Provider = "braintree"
	ProviderAdyen     Provider = "adyen"
	ProviderRazorpay  Provider = "razorpay"
	ProviderCustom    Provider = "custom"
)

// AllProviders lists every provider.
var AllProviders = []Provider{
	ProviderStripe, ProviderPayPal, ProviderSquare, ProviderBraintree,
	ProviderAdyen, ProviderRazorpay, ProviderCustom,
}

// AllCurrencies lists the accepted ISO 4217 codes.
var AllCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "INR", "CNY", "BRL", "MXN"}

// Capture methods.
const (
	CaptureAutomatic = "automatic"
	CaptureManual    = "manual"
)

// Intent statuses.
const (
	IntentRequiresPaymentMethod = "requires_payment_method"
	IntentRequiresConfirmation  = "requires_confirmation"
	IntentRequiresAction        = "requires_action"
	IntentProcessing            = "processing"
	IntentRequiresCapture       = "requires_capture"
	IntentCanceled              = "canceled"
	IntentSucceeded             = "succeeded"
)

// AllIntentStatuses lists every intent status.
var AllIntentStatuses = []string{
	IntentRequiresPaymentMethod, IntentRequiresConfirmation, IntentRequiresAction,
	IntentProcessing, IntentRequiresCapture, IntentCanceled, IntentSucceeded,
}

// RefundStatusCompleted is the status of a recorded refund.
const RefundStatusCompleted = "completed"

// MethodDetails describes the instrument behind a payment or stored method.
type MethodDetails struct {
	MethodType    MethodType `json:"method_type" binding:"required,oneof=credit_card debit_card bank_transfer digital_wallet cryptocurrency cash check other"`
	Provider      Provider   `json:"provider" binding:"required,oneof=stripe paypal square braintree adyen razorpay custom"`
	AccountID     string     `json:"account_id,omitempty"`
	LastFour      string     `json:"last_four,omitempty" binding:"omitempty,len=4,numeric"`
	ExpiryMonth   int        `json:"expiry_month,omitempty" binding:"omitempty,min=1,max=12"`
	ExpiryYear    int        `json:"expiry_year,omitempty" binding:"omitempty,min=2020"`
	CardBrand     string     `json:"card_brand,omitempty"`
	BankName      string     `json:"bank_name,omitempty"`
	WalletType    string     `json:"wallet_type,omitempty"`
	CryptoAddress string     `json:"crypto_address,omitempty"`
}

// Payment is a charge against an order.
type Payment struct {
	ID                   uint           `gorm:"primaryKey" json:"-"`
	PaymentID            string         `gorm:"uniqueIndex;size:32" json:"payment_id"`
	OrderID              string         `gorm:"index;size:64" json:"order_id"`
	CustomerID           string         `gorm:"index;size:64" json:"customer_id"`
	Amount               float64        `json:"amount"`
	Currency             string         `gorm:"size:3" json:"currency"`
	MethodDetails        MethodDetails  `gorm:"column:payment_method;serializer:json;type:jsonb" json:"payment_method"`
	Status               Status         `gorm:"index;size:32" json:"status"`
	Description          string         `json:"description,omitempty"`
	Metadata             map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata"`
	CaptureMethod        string         `gorm:"size:16" json:"capture_method"`
	StatementDescriptor  string         `gorm:"size:22" json:"statement_descriptor,omitempty"`
	ReceiptEmail         string         `json:"receipt_email,omitempty"`
	ApplicationFeeAmount float64        `json:"application_fee_amount"`
	ProviderPaymentID    string         `gorm:"index" json:"provider_payment_id,omitempty"`
	ProviderFeeAmount    float64        `json:"provider_fee_amount"`
	NetAmount            float64        `json:"net_amount"`
	RefundedAmount       float64        `json:"refunded_amount"`
	FailureReason        string         `json:"failure_reason,omitempty"`
	FailureCode          string         `json:"failure_code,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	ProcessedAt          *time.Time     `json:"processed_at,omitempty"`
}

// RecalculateNet sets NetAmount from the amount and both fees.
func (p *Payment) RecalculateNet() {
	p.NetAmount = money.Round(p.Amount - p.ApplicationFeeAmount - p.ProviderFeeAmount)
}

// RemainingRefundable is the amount not yet refunded.
func (p *Payment) RemainingRefundable() float64 {
	return money.Round(p.Amount - p.RefundedAmount)
}

// Provider returns the processor named in the method details.
func (p *Payment) Provider() Provider {
	return p.MethodDetails.Provider
}

// Refund returns money from a payment.
type Refund struct {
	ID               uint           `gorm:"primaryKey" json:"-"`
	RefundID         string         `gorm:"uniqueIndex;size:32" json:"refund_id"`
	PaymentID        string         `gorm:"index;size:32" json:"payment_id"`
	Amount           float64        `json:"amount"`
	Currency         string         `gorm:"size:3" json:"currency"`
	Status           string         `gorm:"size:32" json:"status"`
	Reason           string         `json:"reason,omitempty"`
	Metadata         map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata"`
	ProviderRefundID string         `json:"provider_refund_id,omitempty"`
	FailureReason    string         `json:"failure_reason,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`
}

// PaymentMethod is an instrument stored for a customer.
type PaymentMethod struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	MethodID   string         `gorm:"uniqueIndex;size:32" json:"method_id"`
	CustomerID string         `gorm:"index;size:64" json:"customer_id"`
	Type       MethodType     `gorm:"column:payment_type;size:32" json:"payment_type"`
	Provider   Provider       `gorm:"column:payment_provider;size:32" json:"payment_provider"`
	IsDefault  bool           `json:"is_default"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	Details    MethodDetails  `gorm:"column:payment_method_details;serializer:json;type:jsonb" json:"payment_method_details"`
	Metadata   map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PaymentIntent prepares a future charge.
type PaymentIntent struct {
	ID                   uint           `gorm:"primaryKey" json:"-"`
	IntentID             string         `gorm:"uniqueIndex;size:32" json:"intent_id"`
	Amount               float64        `json:"amount"`
	Currency             string         `gorm:"size:3" json:"currency"`
	CustomerID           string         `gorm:"index;size:64" json:"customer_id"`
	Status               string         `gorm:"size:32" json:"status"`
	PaymentMethod        string         `json:"payment_method,omitempty"`
	Description          string         `json:"description,omitempty"`
	Metadata             map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata"`
	CaptureMethod        string         `gorm:"size:16" json:"capture_method"`
	StatementDescriptor  string         `gorm:"size:22" json:"statement_descriptor,omitempty"`
	ReceiptEmail         string         `json:"receipt_email,omitempty"`
	ApplicationFeeAmount float64        `json:"application_fee_amount"`
	ClientSecret         string         `json:"client_secret"`
	Provider             string         `gorm:"size:32" json:"provider,omitempty"`
	ProviderIntentID     string         `json:"provider_intent_id,omitempty"`
	NextAction           map[string]any `gorm:"serializer:json;type:jsonb" json:"next_action,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// WebhookEvent is a notification received from a provider.
type WebhookEvent struct {
	ID              uint           `gorm:"primaryKey" json:"-"`
	EventID         string         `gorm:"uniqueIndex;size:32" json:"event_id"`
	Provider        string         `gorm:"uniqueIndex:idx_webhook_provider_event;size:32" json:"provider"`
	ProviderEventID *string        `gorm:"uniqueIndex:idx_webhook_provider_event" json:"provider_event_id,omitempty"`
	EventType       string         `json:"event_type"`
	PaymentID       string         `gorm:"index;size:32" json:"payment_id,omitempty"`
	Data            map[string]any `gorm:"serializer:json;type:jsonb" json:"data"`
	Processed       bool           `gorm:"index" json:"processed"`
	CreatedAt       time.Time      `json:"created_at"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
}
