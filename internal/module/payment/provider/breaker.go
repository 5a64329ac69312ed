package provider

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CallRecorder observes gateway calls.
type CallRecorder interface {
	RecordGatewayCall(provider, operation string, err error)
}

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

// Breaker wraps a Gateway with a circuit breaker. Calls fail fast with
// ErrUnavailable while the circuit is open.
type Breaker struct {
	next     Gateway
	breaker  *gobreaker.CircuitBreaker[any]
	recorder CallRecorder
}

// NewBreaker wraps next. recorder may be nil.
func NewBreaker(next Gateway, config BreakerConfig, recorder CallRecorder) *Breaker {
	threshold := config.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	return &Breaker{
		next:     next,
		breaker:  gobreaker.NewCircuitBreaker[any](settings),
		recorder: recorder,
	}
}

// Name returns the wrapped gateway's name.
func (b *Breaker) Name() string {
	return b.next.Name()
}

// State reports the circuit state.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

func (b *Breaker) CreateIntent(ctx context.Context, params *IntentParams) (*Intent, error) {
	res, err := b.execute("create_intent", func() (any, error) {
		return b.next.CreateIntent(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Intent), nil
}

func (b *Breaker) Refund(ctx context.Context, params *RefundParams) (*Refund, error) {
	res, err := b.execute("refund", func() (any, error) {
		return b.next.Refund(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Refund), nil
}

func (b *Breaker) execute(op string, fn func() (any, error)) (any, error) {
	res, err := b.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = ErrUnavailable
	}
	if b.recorder != nil {
		b.recorder.RecordGatewayCall(b.next.Name(), op, err)
	}
	return res, err
}

// ConstructEvent delegates to the wrapped gateway when it verifies webhooks.
func (b *Breaker) ConstructEvent(payload []byte, signature string) (*Event, error) {
	v, ok := b.next.(WebhookVerifier)
	if !ok {
		return nil, ErrInvalidSignature
	}
	return v.ConstructEvent(payload, signature)
}

var (
	_ Gateway         = (*Breaker)(nil)
	_ WebhookVerifier = (*Breaker)(nil)
	_ Gateway         = (*StripeProvider)(nil)
	_ WebhookVerifier = (*StripeProvider)(nil)
	_ Gateway         = (*PayPalProvider)(nil)
)
