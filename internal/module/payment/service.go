package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datalake/server/internal/module/payment/provider"
	"github.com/datalake/server/internal/shared/events"
	"github.com/datalake/server/internal/shared/idgen"
	"github.com/datalake/server/internal/shared/money"
	"github.com/datalake/server/internal/shared/pagination"
	"go.uber.org/zap"
)

// ErrGatewayFailed wraps errors returned by a payment gateway.
var ErrGatewayFailed = errors.New("payment gateway request failed")

// MetricsRecorder receives payment counters.
type MetricsRecorder interface {
	RecordPaymentStatus(status, provider string)
	RecordPaymentCompleted(currency string, amount float64)
	RecordRefund(currency string, amount float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordPaymentStatus(string, string)     {}
func (nopMetrics) RecordPaymentCompleted(string, float64) {}
func (nopMetrics) RecordRefund(string, float64)           {}

// Service implements payment operations.
type Service struct {
	repo      Repository
	gateways  *GatewayRegistry
	publisher events.Publisher
	metrics   MetricsRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new payment service. gateways, publisher and metrics
// may be nil.
func NewService(repo Repository, gateways *GatewayRegistry, publisher events.Publisher, metrics MetricsRecorder, logger *zap.Logger) *Service {
	if gateways == nil {
		gateways = NewGatewayRegistry()
	}
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
		gateways:  gateways,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ========== Payments ==========

// CreatePayment records a pending payment.
func (s *Service) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error) {
	if req.ApplicationFeeAmount > req.Amount {
		return nil, ErrInvalidFee
	}

	payment := &Payment{
		PaymentID:            idgen.Short(idgen.PrefixPayment),
		OrderID:              req.OrderID,
		CustomerID:           req.CustomerID,
		Amount:               money.Round(req.Amount),
		Currency:             req.Currency,
		MethodDetails:        req.PaymentMethod,
		Status:               StatusPending,
		Description:          req.Description,
		Metadata:             nonNilMap(req.Metadata),
		CaptureMethod:        defaultString(req.CaptureMethod, CaptureAutomatic),
		StatementDescriptor:  req.StatementDescriptor,
		ReceiptEmail:         req.ReceiptEmail,
		ApplicationFeeAmount: money.Round(req.ApplicationFeeAmount),
	}
	payment.RecalculateNet()

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	s.metrics.RecordPaymentStatus(string(payment.Status), string(payment.Provider()))
	s.publisher.Publish(events.NewPaymentCreatedEvent(
		payment.PaymentID, payment.OrderID, payment.CustomerID, payment.Amount, payment.Currency,
	))
	s.logger.Info("payment created",
		zap.String("payment_id", payment.PaymentID),
		zap.String("order_id", payment.OrderID),
		zap.Float64("amount", payment.Amount),
		zap.String("currency", payment.Currency),
	)
	return payment, nil
}

// GetPayment returns a payment by its public id.
func (s *Service) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	return s.repo.GetPayment(ctx, paymentID)
}

// ListByOrder returns every payment of an order.
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]*Payment, error) {
	payments, _, err := s.repo.ListPayments(ctx, &Filter{OrderID: orderID}, 0, -1)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// ListPayments returns a page of payments matching filter.
func (s *Service) ListPayments(ctx context.Context, filter *Filter, p *pagination.Pagination) (*ListResponse, error) {
	if filter != nil && filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	payments, total, err := s.repo.ListPayments(ctx, filter, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Payments: payments, Total: total, Page: p.Page(), Size: p.Limit}, nil
}

// Search lists payments with range filters and sorting.
func (s *Service) Search(ctx context.Context, req *SearchRequest, p *pagination.Pagination) (*ListResponse, error) {
	if req.SortBy != "" {
		if _, ok := sortColumns[req.SortBy]; !ok {
			return nil, ErrInvalidSortField
		}
	}
	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		return nil, ErrInvalidDateRange
	}

	filter := &Filter{
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Status:     req.Status,
		MethodType: req.MethodType,
		Provider:   req.Provider,
		Currency:   req.Currency,
		MinAmount:  req.MinAmount,
		MaxAmount:  req.MaxAmount,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		SortBy:     req.SortBy,
		SortDesc:   req.SortOrder != "asc",
	}
	return s.ListPayments(ctx, filter, p)
}

// UpdatePayment applies a partial update. Metadata keys are merged into the
// existing metadata.
func (s *Service) UpdatePayment(ctx context.Context, paymentID string, req *UpdatePaymentRequest) (*Payment, error) {
	return s.repo.UpdatePayment(ctx, paymentID, func(p *Payment) error {
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.StatementDescriptor != nil {
			p.StatementDescriptor = *req.StatementDescriptor
		}
		if req.ReceiptEmail != nil {
			p.ReceiptEmail = *req.ReceiptEmail
		}
		p.Metadata = mergeMetadata(p.Metadata, req.Metadata)
		if req.ApplicationFeeAmount != nil {
			p.ApplicationFeeAmount = money.Round(*req.ApplicationFeeAmount)
			if err := checkFees(p); err != nil {
				return err
			}
			p.RecalculateNet()
		}
		return nil
	})
}

// UpdateStatus moves a payment through its lifecycle. Refund statuses are
// reached only by recording refunds.
func (s *Service) UpdateStatus(ctx context.Context, paymentID string, upd *StatusUpdate) (*Payment, error) {
	if !upd.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if upd.Status == StatusRefunded || upd.Status == StatusPartiallyRefunded {
		return nil, fmt.Errorf("%w: refund statuses are set by refunds", ErrInvalidTransition)
	}

	return s.transition(ctx, paymentID, upd.Status, func(p *Payment) error {
		if upd.ProviderPaymentID != "" {
			p.ProviderPaymentID = upd.ProviderPaymentID
		}
		if upd.FailureReason != "" {
			p.FailureReason = upd.FailureReason
		}
		if upd.FailureCode != "" {
			p.FailureCode = upd.FailureCode
		}
		return nil
	})
}

// ProcessPayment marks a payment completed after the provider confirmed it.
func (s *Service) ProcessPayment(ctx context.Context, paymentID string, req *ProcessRequest) (*Payment, error) {
	return s.transition(ctx, paymentID, StatusCompleted, func(p *Payment) error {
		p.ProviderPaymentID = req.ProviderPaymentID
		if req.ProviderFeeAmount != nil {
			p.ProviderFeeAmount = money.Round(*req.ProviderFeeAmount)
		}
		if err := checkFees(p); err != nil {
			return err
		}
		p.RecalculateNet()
		return nil
	})
}

// CapturePayment completes an authorised payment, optionally for less than
// the authorised amount.
func (s *Service) CapturePayment(ctx context.Context, paymentID string, req *CaptureRequest) (*Payment, error) {
	return s.transition(ctx, paymentID, StatusCompleted, func(p *Payment) error {
		if p.Status != StatusPending && p.Status != StatusProcessing {
			return fmt.Errorf("%w: cannot capture a %s payment", ErrInvalidTransition, p.Status)
		}

		if req.Amount != nil {
			amount := money.Round(*req.Amount)
			if !money.LessOrEqual(amount, p.Amount) {
				return ErrCaptureExceedsAmount
			}
			p.Amount = amount
			if err := checkFees(p); err != nil {
				return err
			}
			p.RecalculateNet()
		}
		if req.StatementDescriptor != "" {
			p.StatementDescriptor = req.StatementDescriptor
		}
		if req.ReceiptEmail != "" {
			p.ReceiptEmail = req.ReceiptEmail
		}
		p.Metadata = mergeMetadata(p.Metadata, req.Metadata)
		return nil
	})
}

// transition moves the locked payment to status to after mutate ran on it,
// then emits the matching metrics and events. A move the transition table
// does not allow fails with ErrInvalidTransition and stores nothing.
func (s *Service) transition(ctx context.Context, paymentID string, to Status, mutate func(*Payment) error) (*Payment, error) {
	var from Status
	payment, err := s.repo.UpdatePayment(ctx, paymentID, func(p *Payment) error {
		if err := checkTransition(p.Status, to); err != nil {
			return err
		}
		if mutate != nil {
			if err := mutate(p); err != nil {
				return err
			}
		}
		from = p.Status
		p.Status = to
		if to == StatusCompleted {
			now := s.now()
			p.ProcessedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPaymentStatus(string(to), string(payment.Provider()))
	if to == StatusCompleted {
		s.metrics.RecordPaymentCompleted(payment.Currency, payment.Amount)
		s.publisher.Publish(events.NewPaymentCompletedEvent(
			payment.PaymentID, payment.OrderID, payment.Amount, payment.NetAmount,
			payment.Currency, payment.ProviderPaymentID,
		))
	}
	s.logger.Info("payment status changed",
		zap.String("payment_id", payment.PaymentID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return payment, nil
}

func checkFees(p *Payment) error {
	if !money.LessOrEqual(p.ApplicationFeeAmount+p.ProviderFeeAmount, p.Amount) {
		return ErrInvalidFee
	}
	return nil
}

// ========== Refunds ==========

// CreateRefund refunds part or all of a payment. The amount defaults to the
// remaining refundable balance. When the payment went through a configured
// gateway the refund is issued there before it is recorded.
func (s *Service) CreateRefund(ctx context.Context, req *CreateRefundRequest) (*Refund, error) {
	payment, refund, err := s.repo.RefundPayment(ctx, req.PaymentID, func(p *Payment) (*Refund, error) {
		if !CanTransition(p.Status, StatusRefunded) {
			return nil, fmt.Errorf("%w: cannot refund a %s payment", ErrInvalidTransition, p.Status)
		}

		remaining := p.RemainingRefundable()
		amount := remaining
		if req.Amount != nil {
			amount = money.Round(*req.Amount)
		}
		if amount <= 0 {
			return nil, ErrInvalidRefundAmount
		}
		if !money.LessOrEqual(amount, remaining) {
			return nil, ErrRefundExceedsAmount
		}

		target := StatusPartiallyRefunded
		if money.Equal(amount, remaining) {
			target = StatusRefunded
		}
		if err := checkTransition(p.Status, target); err != nil {
			return nil, err
		}

		now := s.now()
		refund := &Refund{
			RefundID:    idgen.Short(idgen.PrefixRefund),
			PaymentID:   p.PaymentID,
			Amount:      amount,
			Currency:    p.Currency,
			Status:      RefundStatusCompleted,
			Reason:      req.Reason,
			Metadata:    nonNilMap(req.Metadata),
			ProcessedAt: &now,
		}

		if gw, err := s.gateways.Get(string(p.Provider())); err == nil && p.ProviderPaymentID != "" {
			res, err := gw.Refund(ctx, &provider.RefundParams{
				ProviderPaymentID: p.ProviderPaymentID,
				Amount:            amount,
				Currency:          p.Currency,
				Reason:            req.Reason,
				Metadata:          map[string]string{"refund_id": refund.RefundID},
			})
			if err != nil {
				return nil, gatewayError(err)
			}
			refund.ProviderRefundID = res.ID
		}

		p.RefundedAmount = money.Sum(p.RefundedAmount, amount)
		p.Status = target
		return refund, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRefund(refund.Currency, refund.Amount)
	s.metrics.RecordPaymentStatus(string(payment.Status), string(payment.Provider()))
	s.publisher.Publish(events.NewPaymentRefundedEvent(
		payment.PaymentID, refund.RefundID, payment.OrderID, refund.Amount,
		payment.RefundedAmount, payment.Currency, string(payment.Status),
	))
	s.logger.Info("payment refunded",
		zap.String("payment_id", payment.PaymentID),
		zap.String("refund_id", refund.RefundID),
		zap.Float64("amount", refund.Amount),
		zap.Float64("total_refunded", payment.RefundedAmount),
	)
	return refund, nil
}

// GetRefund returns a refund by its public id.
func (s *Service) GetRefund(ctx context.Context, refundID string) (*Refund, error) {
	return s.repo.GetRefund(ctx, refundID)
}

// ListRefunds returns the refunds of a payment, oldest first.
func (s *Service) ListRefunds(ctx context.Context, paymentID string) (*RefundListResponse, error) {
	if _, err := s.repo.GetPayment(ctx, paymentID); err != nil {
		return nil, err
	}
	refunds, err := s.repo.ListRefunds(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return &RefundListResponse{Refunds: refunds, Total: len(refunds)}, nil
}

func gatewayError(err error) error {
	if errors.Is(err, provider.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrGatewayFailed, err)
}

// ========== Payment methods ==========

// CreateMethod stores a payment method for a customer.
func (s *Service) CreateMethod(ctx context.Context, req *CreateMethodRequest) (*PaymentMethod, error) {
	method := &PaymentMethod{
		MethodID:   idgen.Short(idgen.PrefixPaymentMethod),
		CustomerID: req.CustomerID,
		Type:       req.PaymentMethod.MethodType,
		Provider:   req.PaymentMethod.Provider,
		IsDefault:  req.IsDefault,
		IsActive:   true,
		Details:    req.PaymentMethod,
		Metadata:   nonNilMap(req.Metadata),
	}
	if err := s.repo.CreateMethod(ctx, method); err != nil {
		return nil, err
	}
	s.logger.Info("payment method created",
		zap.String("method_id", method.MethodID),
		zap.String("customer_id", method.CustomerID),
		zap.Bool("is_default", method.IsDefault),
	)
	return method, nil
}

// GetMethod returns a payment method by its public id.
func (s *Service) GetMethod(ctx context.Context, methodID string) (*PaymentMethod, error) {
	return s.repo.GetMethod(ctx, methodID)
}

// ListMethods returns a customer's active payment methods.
func (s *Service) ListMethods(ctx context.Context, customerID string) (*MethodListResponse, error) {
	methods, err := s.repo.ListMethods(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &MethodListResponse{PaymentMethods: methods, Total: len(methods)}, nil
}

// UpdateMethod changes the default flag or replaces the metadata.
func (s *Service) UpdateMethod(ctx context.Context, methodID string, req *UpdateMethodRequest) (*PaymentMethod, error) {
	method, err := s.repo.GetMethod(ctx, methodID)
	if err != nil {
		return nil, err
	}
	if !method.IsActive {
		return nil, ErrMethodNotFound
	}

	if req.IsDefault != nil {
		method.IsDefault = *req.IsDefault
	}
	if req.Metadata != nil {
		method.Metadata = req.Metadata
	}
	if err := s.repo.UpdateMethod(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

// DeleteMethod deactivates a payment method.
func (s *Service) DeleteMethod(ctx context.Context, methodID string) error {
	if err := s.repo.DeactivateMethod(ctx, methodID); err != nil {
		return err
	}
	s.logger.Info("payment method deactivated", zap.String("method_id", methodID))
	return nil
}

// ========== Payment intents ==========

// CreateIntent prepares a future charge. When a gateway is named the intent
// is created there and its client secret and next action are kept.
func (s *Service) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*PaymentIntent, error) {
	intent := &PaymentIntent{
		IntentID:             idgen.Short(idgen.PrefixIntent),
		Amount:               money.Round(req.Amount),
		Currency:             req.Currency,
		CustomerID:           req.CustomerID,
		Status:               IntentRequiresPaymentMethod,
		PaymentMethod:        req.PaymentMethod,
		Description:          req.Description,
		Metadata:             nonNilMap(req.Metadata),
		CaptureMethod:        defaultString(req.CaptureMethod, CaptureAutomatic),
		StatementDescriptor:  req.StatementDescriptor,
		ReceiptEmail:         req.ReceiptEmail,
		ApplicationFeeAmount: money.Round(req.ApplicationFeeAmount),
	}

	if req.Provider != "" {
		gw, err := s.gateways.Get(req.Provider)
		if err != nil {
			return nil, err
		}
		res, err := gw.CreateIntent(ctx, &provider.IntentParams{
			Reference:           intent.IntentID,
			Amount:              intent.Amount,
			Currency:            intent.Currency,
			Description:         intent.Description,
			CaptureMethod:       intent.CaptureMethod,
			StatementDescriptor: intent.StatementDescriptor,
			ReceiptEmail:        intent.ReceiptEmail,
			Metadata:            stringMetadata(intent.Metadata),
		})
		if err != nil {
			return nil, gatewayError(err)
		}
		intent.Provider = req.Provider
		intent.ProviderIntentID = res.ID
		intent.ClientSecret = res.ClientSecret
		intent.NextAction = res.NextAction
		switch {
		case isIntentStatus(res.Status):
			intent.Status = res.Status
		case res.NextAction != nil:
			intent.Status = IntentRequiresAction
		}
	}
	if intent.ClientSecret == "" {
		intent.ClientSecret = idgen.Secret(intent.IntentID)
	}

	if err := s.repo.CreateIntent(ctx, intent); err != nil {
		return nil, err
	}
	s.logger.Info("payment intent created",
		zap.String("intent_id", intent.IntentID),
		zap.String("provider", intent.Provider),
		zap.String("status", intent.Status),
	)
	return intent, nil
}

// GetIntent returns a payment intent by its public id.
func (s *Service) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	return s.repo.GetIntent(ctx, intentID)
}

// UpdateIntentStatus sets the intent status and, when given, its next action.
func (s *Service) UpdateIntentStatus(ctx context.Context, intentID, status string, nextAction map[string]any) (*PaymentIntent, error) {
	if !isIntentStatus(status) {
		return nil, ErrInvalidIntentStatus
	}
	intent, err := s.repo.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	intent.Status = status
	if nextAction != nil {
		intent.NextAction = nextAction
	}
	if err := s.repo.UpdateIntent(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func isIntentStatus(status string) bool {
	for _, s := range AllIntentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ========== Statistics ==========

// Statistics aggregates payments created within the optional date range.
func (s *Service) Statistics(ctx context.Context, start, end *time.Time) (*Statistics, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidDateRange
	}
	stats, err := s.repo.Statistics(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats.TotalAmount = money.Round(stats.TotalAmount)
	stats.RefundedAmount = money.Round(stats.RefundedAmount)
	stats.NetRevenue = money.Round(stats.TotalAmount - stats.RefundedAmount)
	if stats.TotalPayments > 0 {
		stats.AveragePaymentAmount = money.Round(stats.TotalAmount / float64(stats.TotalPayments))
	}
	for _, dist := range [][]Distribution{stats.CurrencyDistribution, stats.MethodDistribution, stats.ProviderDistribution} {
		for i := range dist {
			dist[i].Total = money.Round(dist[i].Total)
		}
	}
	if stats.CurrencyDistribution == nil {
		stats.CurrencyDistribution = []Distribution{}
	}
	if stats.MethodDistribution == nil {
		stats.MethodDistribution = []Distribution{}
	}
	if stats.ProviderDistribution == nil {
		stats.ProviderDistribution = []Distribution{}
	}
	return stats, nil
}

// ========== Helpers ==========

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func mergeMetadata(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return nonNilMap(dst)
	}
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

func stringMetadata(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
