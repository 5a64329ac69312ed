// Package provider adapts external payment gateways to the operations the
// payment module needs: creating intents, refunding charges and verifying
// webhook signatures.
package provider

import (
	"context"
	"errors"
	"math"
	"strings"
)

// Gateway names.
const (
	NameStripe = "stripe"
	NamePayPal = "paypal"
)

var (
	// ErrInvalidSignature is returned when a webhook payload fails verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrUnavailable is returned while a gateway's circuit is open.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// IntentParams describes a charge to prepare at the gateway.
type IntentParams struct {
	Reference           string
	Amount              float64
	Currency            string
	Description         string
	CaptureMethod       string
	StatementDescriptor string
	ReceiptEmail        string
	Metadata            map[string]string
}

// Intent is the gateway's view of a prepared charge.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	// NextAction carries what the client must do next, e.g. a redirect URL.
	NextAction map[string]any
}

// RefundParams describes a refund against a gateway charge.
type RefundParams struct {
	ProviderPaymentID string
	Amount            float64
	Currency          string
	Reason            string
	Metadata          map[string]string
}

// Refund is the gateway's view of a refund.
type Refund struct {
	ID     string
	Status string
}

// Event is a verified webhook event.
type Event struct {
	ID   string
	Type string
	// ObjectID is the id of the gateway object the event is about.
	ObjectID string
	Data     map[string]any
}

// Gateway is an external payment processor.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, params *IntentParams) (*Intent, error)
	Refund(ctx context.Context, params *RefundParams) (*Refund, error)
}

// WebhookVerifier verifies and decodes signed webhook payloads.
type WebhookVerifier interface {
	ConstructEvent(payload []byte, signature string) (*Event, error)
}

var zeroDecimal = map[string]bool{"JPY": true}

// ToMinorUnits converts a decimal amount to the currency's smallest unit.
func ToMinorUnits(amount float64, currency string) int64 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}
