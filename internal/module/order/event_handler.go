package order

import (
	"context"
	"errors"

	"github.com/datalake/server/internal/shared/events"
	"go.uber.org/zap"
)

// EventHandler confirms pending orders once their payment completes.
type EventHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewEventHandler creates a new order event handler.
func NewEventHandler(service *Service, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

// Handles returns the list of event types this handler can process.
func (h *EventHandler) Handles() []string {
	return []string{events.TypePaymentCompleted}
}

// Handle processes the given event.
func (h *EventHandler) Handle(event events.Event) error {
	switch e := event.(type) {
	case *events.PaymentCompletedEvent:
		return h.handlePaymentCompleted(e)
	default:
		h.logger.Warn("unhandled event type",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}
}

// handlePaymentCompleted moves a pending order to confirmed.
// Payments reference orders by a free-form id, so unknown orders are skipped.
func (h *EventHandler) handlePaymentCompleted(event *events.PaymentCompletedEvent) error {
	ctx := context.Background()

	order, err := h.service.GetOrder(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			h.logger.Debug("payment completed for unknown order",
				zap.String("order_id", event.OrderID),
				zap.String("payment_id", event.AggregateID()),
			)
			return nil
		}
		return err
	}

	// Idempotency check: only pending orders are confirmed
	if !order.IsPending() {
		h.logger.Info("order not pending, skipping confirmation",
			zap.String("order_id", order.OrderID),
			zap.String("status", string(order.Status)),
		)
		return nil
	}

	if _, err := h.service.UpdateStatus(ctx, order.OrderID, OrderStatusConfirmed); err != nil {
		h.logger.Error("failed to confirm order",
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("order confirmed by payment",
		zap.String("order_id", order.OrderID),
		zap.String("payment_id", event.AggregateID()),
	)
	return nil
}

// Compile-time check that EventHandler implements events.Handler.
var _ events.Handler = (*EventHandler)(nil)
