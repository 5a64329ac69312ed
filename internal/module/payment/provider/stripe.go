package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// StripeProvider implements Gateway and WebhookVerifier for Stripe.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider creates a new Stripe provider.
func NewStripeProvider(config *StripeConfig) *StripeProvider {
	stripe.Key = config.APIKey
	return &StripeProvider{webhookSecret: config.WebhookSecret}
}

// Name returns the provider name.
func (p *StripeProvider) Name() string {
	return NameStripe
}

func (p *StripeProvider) CreateIntent(ctx context.Context, in *IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToMinorUnits(in.Amount, in.Currency)),
		Currency: stripe.String(strings.ToLower(in.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	if in.CaptureMethod != "" {
		params.CaptureMethod = stripe.String(in.CaptureMethod)
	}
	if in.StatementDescriptor != "" {
		params.StatementDescriptor = stripe.String(in.StatementDescriptor)
	}
	if in.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(in.ReceiptEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	if in.Reference != "" {
		params.AddMetadata("reference", in.Reference)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	intent := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}
	if pi.NextAction != nil {
		intent.NextAction = map[string]any{"type": string(pi.NextAction.Type)}
		if pi.NextAction.RedirectToURL != nil {
			intent.NextAction["redirect_url"] = pi.NextAction.RedirectToURL.URL
		}
	}
	return intent, nil
}

func (p *StripeProvider) Refund(ctx context.Context, in *RefundParams) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(in.ProviderPaymentID),
		Amount:        stripe.Int64(ToMinorUnits(in.Amount, in.Currency)),
	}
	params.Context = ctx
	switch stripe.RefundReason(in.Reason) {
	case stripe.RefundReasonDuplicate, stripe.RefundReasonFraudulent, stripe.RefundReasonRequestedByCustomer:
		params.Reason = stripe.String(in.Reason)
	default:
		if in.Reason != "" {
			params.AddMetadata("reason", in.Reason)
		}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	r, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}
	return &Refund{ID: r.ID, Status: string(r.Status)}, nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
func (p *StripeProvider) ConstructEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil && len(ev.Data.Raw) > 0 {
		if err := json.Unmarshal(ev.Data.Raw, &out.Data); err != nil {
			return nil, fmt.Errorf("decode event object: %w", err)
		}
		if id, ok := out.Data["id"].(string); ok {
			out.ObjectID = id
		}
	}
	return out, nil
}
