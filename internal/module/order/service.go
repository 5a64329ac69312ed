package order

import (
	"context"
	"fmt"

	"github.com/datalake/server/internal/shared/events"
	"github.com/datalake/server/internal/shared/idgen"
	"github.com/datalake/server/internal/shared/pagination"
	"go.uber.org/zap"
)

// MetricsRecorder receives order lifecycle counts.
type MetricsRecorder interface {
	RecordOrderStatus(status string)
}

type nopMetrics struct{}

func (nopMetrics) RecordOrderStatus(string) {}

// Service implements order operations.
type Service struct {
	repo      Repository
	sm        *StateMachine
	publisher events.Publisher
	metrics   MetricsRecorder
	logger    *zap.Logger
}

// NewService creates a new order service. publisher and metrics may be nil.
func NewService(repo Repository, publisher events.Publisher, metrics MetricsRecorder, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		sm:        NewStateMachine(),
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateOrder prices the items and stores a pending order.
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	items := BuildItems(req.Items)
	order := &Order{
		OrderID:         idgen.Order(),
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Status:          OrderStatusPending,
		Notes:           req.Notes,
		PaymentID:       req.PaymentID,
		Items:           items,
	}
	order.applyTotals(CalculateTotals(items))

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.metrics.RecordOrderStatus(string(order.Status))
	s.publisher.Publish(events.NewOrderCreatedEvent(order.OrderID, order.CustomerID, order.TotalAmount, len(order.Items)))
	s.logger.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.String("customer_id", order.CustomerID),
		zap.Float64("total_amount", order.TotalAmount),
	)
	return order, nil
}

// GetOrder returns an order by its public id.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

// ListOrders returns a page of orders.
func (s *Service) ListOrders(ctx context.Context, filter *OrderFilter, p *pagination.Pagination) (*ListResponse, error) {
	if filter != nil && filter.Status != nil && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	orders, total, err := s.repo.ListOrders(ctx, filter, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = o.ToResponse()
	}
	return &ListResponse{Orders: out, Total: total, Page: p.Page(), Size: p.Limit}, nil
}

// UpdateOrder applies a partial update.
func (s *Service) UpdateOrder(ctx context.Context, orderID string, req *UpdateOrderRequest) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	replaceItems := req.Items != nil
	if replaceItems {
		if !order.IsPending() {
			return nil, ErrOrderNotPending
		}
		order.Items = BuildItems(req.Items)
		order.applyTotals(CalculateTotals(order.Items))
	}
	if req.ShippingAddress != nil {
		order.ShippingAddress = *req.ShippingAddress
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}
	if req.PaymentID != nil {
		order.PaymentID = req.PaymentID
	}

	from := order.Status
	if req.Status != nil && *req.Status != order.Status {
		if err := s.sm.Transition(order, *req.Status); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateOrder(ctx, order, replaceItems); err != nil {
		return nil, err
	}
	s.statusChanged(order, from)
	return order, nil
}

// UpdateStatus moves the order to a new status.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, to OrderStatus) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := s.sm.Transition(order, to); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOrder(ctx, order, false); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	s.statusChanged(order, from)
	return order, nil
}

func (s *Service) statusChanged(order *Order, from OrderStatus) {
	if order.Status == from {
		return
	}
	s.metrics.RecordOrderStatus(string(order.Status))
	s.publisher.Publish(events.NewOrderStatusChangedEvent(order.OrderID, string(from), string(order.Status)))
	s.logger.Info("order status changed",
		zap.String("order_id", order.OrderID),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)),
	)
}

// DeleteOrder removes an order and its items.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.String("order_id", orderID))
	return nil
}

// AllowedTransitions lists the statuses the order may move to next.
func (s *Service) AllowedTransitions(status OrderStatus) []OrderStatus {
	return s.sm.GetAllowedTransitions(status)
}
