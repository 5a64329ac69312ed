package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/datalake/server/internal/module/payment/provider"
	"github.com/datalake/server/internal/shared/idgen"
	"go.uber.org/zap"
)

// Stripe event types applied to payments.
const (
	stripeIntentSucceeded = "payment_intent.succeeded"
	stripeIntentFailed    = "payment_intent.payment_failed"
	stripeIntentCanceled  = "payment_intent.canceled"
)

// CreateWebhookEvent records a provider notification. A repeated provider
// event id returns the stored event with created=false.
func (s *Service) CreateWebhookEvent(ctx context.Context, req *CreateWebhookEventRequest) (*WebhookEvent, bool, error) {
	event := &WebhookEvent{
		EventID:   idgen.Short(idgen.PrefixWebhook),
		Provider:  string(req.Provider),
		EventType: req.EventType,
		PaymentID: req.PaymentID,
		Data:      nonNilMap(req.Data),
	}
	if req.ProviderEventID != "" {
		id := req.ProviderEventID
		event.ProviderEventID = &id
	}

	stored, created, err := s.repo.CreateWebhookEvent(ctx, event)
	if err != nil {
		return nil, false, err
	}
	if !created {
		s.logger.Info("duplicate webhook event",
			zap.String("provider", stored.Provider),
			zap.String("event_id", stored.EventID),
		)
	}
	return stored, created, nil
}

// ListUnprocessedEvents returns unprocessed webhook events, oldest first.
func (s *Service) ListUnprocessedEvents(ctx context.Context, providerName string) (*WebhookEventListResponse, error) {
	evs, err := s.repo.ListUnprocessedEvents(ctx, providerName)
	if err != nil {
		return nil, err
	}
	return &WebhookEventListResponse{Events: evs, Total: len(evs)}, nil
}

// MarkEventProcessed flags a webhook event as handled.
func (s *Service) MarkEventProcessed(ctx context.Context, eventID string) (*WebhookEvent, error) {
	return s.repo.MarkEventProcessed(ctx, eventID, s.now())
}

// HandleGatewayEvent records a verified gateway event and applies it to the
// matching payment. The bool is false when an earlier delivery of the same
// event was already processed. A delivery whose earlier attempt failed
// before it was marked processed is applied again.
func (s *Service) HandleGatewayEvent(ctx context.Context, providerName string, ev *provider.Event) (*WebhookEvent, bool, error) {
	payment, err := s.paymentForGatewayObject(ctx, ev.ObjectID)
	if err != nil {
		return nil, false, err
	}

	req := &CreateWebhookEventRequest{
		Provider:        Provider(providerName),
		ProviderEventID: ev.ID,
		EventType:       ev.Type,
		Data:            ev.Data,
	}
	if payment != nil {
		req.PaymentID = payment.PaymentID
	}
	stored, created, err := s.CreateWebhookEvent(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if !created && stored.Processed {
		return stored, false, nil
	}
	if !created {
		s.logger.Info("reapplying unprocessed webhook event",
			zap.String("event_id", stored.EventID),
			zap.String("provider_event_id", ev.ID),
		)
	}

	if payment != nil {
		if err := s.applyGatewayEvent(ctx, payment.PaymentID, ev); err != nil {
			return stored, false, err
		}
	}

	marked, err := s.MarkEventProcessed(ctx, stored.EventID)
	if err != nil {
		return stored, false, err
	}
	return marked, true, nil
}

// paymentForGatewayObject finds the payment a gateway object belongs to.
// It returns nil without error when no payment matches.
func (s *Service) paymentForGatewayObject(ctx context.Context, objectID string) (*Payment, error) {
	if objectID == "" {
		return nil, nil
	}
	payments, _, err := s.repo.ListPayments(ctx, &Filter{ProviderPaymentID: objectID}, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("lookup payment for %s: %w", objectID, err)
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return payments[0], nil
}

func (s *Service) applyGatewayEvent(ctx context.Context, paymentID string, ev *provider.Event) error {
	var to Status
	var mutate func(*Payment) error
	switch ev.Type {
	case stripeIntentSucceeded:
		to = StatusCompleted
	case stripeIntentFailed:
		to = StatusFailed
		mutate = func(p *Payment) error {
			if lastErr, ok := ev.Data["last_payment_error"].(map[string]any); ok {
				if msg, ok := lastErr["message"].(string); ok {
					p.FailureReason = msg
				}
				if code, ok := lastErr["code"].(string); ok {
					p.FailureCode = code
				}
			}
			return nil
		}
	case stripeIntentCanceled:
		to = StatusCancelled
	default:
		return nil
	}

	_, err := s.transition(ctx, paymentID, to, mutate)
	if errors.Is(err, ErrInvalidTransition) {
		s.logger.Info("webhook event does not apply to payment",
			zap.String("payment_id", paymentID),
			zap.String("event_type", ev.Type),
			zap.Error(err),
		)
		return nil
	}
	return err
}
