package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/paypal"
)

// PayPalConfig holds PayPal REST credentials.
type PayPalConfig struct {
	ClientID   string
	Secret     string
	Production bool
}

// PayPalProvider implements Gateway on PayPal orders.
type PayPalProvider struct {
	client *paypal.Client
}

// NewPayPalProvider creates a PayPal client and fetches its access token.
func NewPayPalProvider(config *PayPalConfig) (*PayPalProvider, error) {
	client, err := paypal.NewClient(config.ClientID, config.Secret, config.Production)
	if err != nil {
		return nil, fmt.Errorf("create paypal client: %w", err)
	}
	return &PayPalProvider{client: client}, nil
}

// Name returns the provider name.
func (p *PayPalProvider) Name() string {
	return NamePayPal
}

// CreateIntent creates a PayPal order. The approval link is returned as the
// intent's redirect next action.
func (p *PayPalProvider) CreateIntent(ctx context.Context, in *IntentParams) (*Intent, error) {
	units := []*paypal.PurchaseUnit{{
		ReferenceId: in.Reference,
		Description: in.Description,
		Amount: &paypal.Amount{
			CurrencyCode: strings.ToUpper(in.Currency),
			Value:        formatAmount(in.Amount, in.Currency),
		},
	}}

	intent := "CAPTURE"
	if in.CaptureMethod == "manual" {
		intent = "AUTHORIZE"
	}

	bm := make(gopay.BodyMap)
	bm.Set("intent", intent).
		Set("purchase_units", units)

	rsp, err := p.client.CreateOrder(ctx, bm)
	if err != nil {
		return nil, fmt.Errorf("create paypal order: %w", err)
	}
	if rsp.Code != paypal.Success || rsp.Response == nil {
		return nil, fmt.Errorf("create paypal order: status %d: %s", rsp.Code, rsp.Error)
	}

	out := &Intent{ID: rsp.Response.Id, Status: rsp.Response.Status}
	for _, link := range rsp.Response.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			out.NextAction = map[string]any{
				"type":         "redirect_to_url",
				"redirect_url": link.Href,
			}
			break
		}
	}
	return out, nil
}

// Refund refunds a captured PayPal payment.
func (p *PayPalProvider) Refund(ctx context.Context, in *RefundParams) (*Refund, error) {
	bm := make(gopay.BodyMap)
	bm.SetBodyMap("amount", func(b gopay.BodyMap) {
		b.Set("currency_code", strings.ToUpper(in.Currency)).
			Set("value", formatAmount(in.Amount, in.Currency))
	})
	if in.Reason != "" {
		bm.Set("note_to_payer", in.Reason)
	}

	rsp, err := p.client.PaymentCaptureRefund(ctx, in.ProviderPaymentID, bm)
	if err != nil {
		return nil, fmt.Errorf("refund paypal capture: %w", err)
	}
	if rsp.Code != paypal.Success || rsp.Response == nil {
		return nil, fmt.Errorf("refund paypal capture: status %d: %s", rsp.Code, rsp.Error)
	}
	return &Refund{ID: rsp.Response.Id, Status: rsp.Response.Status}, nil
}

func formatAmount(amount float64, currency string) string {
	if zeroDecimal[strings.ToUpper(currency)] {
		return strconv.FormatInt(ToMinorUnits(amount, currency), 10)
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
