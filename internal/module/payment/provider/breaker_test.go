package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyGateway struct {
	err   error
	calls int
}

func (g *flakyGateway) Name() string { return "flaky" }

func (g *flakyGateway) CreateIntent(context.Context, *IntentParams) (*Intent, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &Intent{ID: "pi_1", Status: "requires_payment_method"}, nil
}

func (g *flakyGateway) Refund(context.Context, *RefundParams) (*Refund, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &Refund{ID: "re_1", Status: "succeeded"}, nil
}

type callLog struct {
	ops  []string
	errs []error
}

func (l *callLog) RecordGatewayCall(_, op string, err error) {
	l.ops = append(l.ops, op)
	l.errs = append(l.errs, err)
}

func TestBreaker_PassesThrough(t *testing.T) {
	gw := &flakyGateway{}
	log := &callLog{}
	b := NewBreaker(gw, BreakerConfig{}, log)

	intent, err := b.CreateIntent(context.Background(), &IntentParams{Amount: 10, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)

	r, err := b.Refund(context.Background(), &RefundParams{Amount: 5, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "re_1", r.ID)

	assert.Equal(t, []string{"create_intent", "refund"}, log.ops)
	assert.Equal(t, "flaky", b.Name())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	gw := &flakyGateway{err: errors.New("gateway down")}
	b := NewBreaker(gw, BreakerConfig{FailureThreshold: 2, Timeout: time.Minute}, nil)

	for i := 0; i < 2; i++ {
		_, err := b.Refund(context.Background(), &RefundParams{})
		assert.EqualError(t, err, "gateway down")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Refund(context.Background(), &RefundParams{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, gw.calls)
}

func TestBreaker_ConstructEventWithoutVerifier(t *testing.T) {
	b := NewBreaker(&flakyGateway{}, BreakerConfig{}, nil)
	_, err := b.ConstructEvent([]byte(`{}`), "sig")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		expected int64
	}{
		{10.5, "USD", 1050},
		{19.99, "eur", 1999},
		{500, "JPY", 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ToMinorUnits(tt.amount, tt.currency))
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.50", formatAmount(12.5, "USD"))
	assert.Equal(t, "1200", formatAmount(1200, "JPY"))
}

func TestStripeProvider_ConstructEvent_BadSignature(t *testing.T) {
	p := NewStripeProvider(&StripeConfig{WebhookSecret: "whsec_test"})
	_, err := p.ConstructEvent([]byte(`{"id":"evt_1"}`), "t=1,v1=bad")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
