package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns maps accepted sort_by values to columns.
var sortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"processed_at": "processed_at",
	"amount":       "amount",
	"status":       "status",
	"currency":     "currency",
}

// Repository defines the interface for payment data access.
type Repository interface {
	CreatePayment(ctx context.Context, payment *Payment) error
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	ListPayments(ctx context.Context, filter *Filter, offset, limit int) ([]*Payment, int64, error)

	// UpdatePayment locks the payment row and calls apply with it. The
	// mutated payment is saved in the same transaction; an error from apply
	// rolls it back.
	UpdatePayment(ctx context.Context, paymentID string, apply func(*Payment) error) (*Payment, error)

	// RefundPayment is UpdatePayment for refunds: the refund returned by
	// apply is inserted in the same transaction as the payment update.
	RefundPayment(ctx context.Context, paymentID string, apply func(*Payment) (*Refund, error)) (*Payment, *Refund, error)
	GetRefund(ctx context.Context, refundID string) (*Refund, error)
	ListRefunds(ctx context.Context, paymentID string) ([]*Refund, error)

	// CreateMethod and UpdateMethod clear the customer's other defaults in
	// the same transaction when method.IsDefault is set.
	CreateMethod(ctx context.Context, method *PaymentMethod) error
	GetMethod(ctx context.Context, methodID string) (*PaymentMethod, error)
	ListMethods(ctx context.Context, customerID string) ([]*PaymentMethod, error)
	UpdateMethod(ctx context.Context, method *PaymentMethod) error
	DeactivateMethod(ctx context.Context, methodID string) error

	CreateIntent(ctx context.Context, intent *PaymentIntent) error
	GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	UpdateIntent(ctx context.Context, intent *PaymentIntent) error

	// CreateWebhookEvent stores event unless the provider already delivered
	// the same provider event id, in which case the stored event is returned
	// with created=false.
	CreateWebhookEvent(ctx context.Context, event *WebhookEvent) (stored *WebhookEvent, created bool, err error)
	ListUnprocessedEvents(ctx context.Context, provider string) ([]*WebhookEvent, error)
	MarkEventProcessed(ctx context.Context, eventID string, at time.Time) (*WebhookEvent, error)

	Statistics(ctx context.Context, start, end *time.Time) (*Statistics, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// --- Payments ---

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *repository) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	if err := r.db.WithContext(ctx).First(&payment, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) ListPayments(ctx context.Context, filter *Filter, offset, limit int) ([]*Payment, int64, error) {
	var payments []*Payment
	var total int64

	query := applyFilter(r.db.WithContext(ctx).Model(&Payment{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	err := query.
		Order(orderClause(filter)).
		Offset(offset).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return payments, total, nil
}

func applyFilter(query *gorm.DB, f *Filter) *gorm.DB {
	if f == nil {
		return query
	}
	if f.OrderID != "" {
		query = query.Where("order_id = ?", f.OrderID)
	}
	if f.CustomerID != "" {
		query = query.Where("customer_id = ?", f.CustomerID)
	}
	if f.ProviderPaymentID != "" {
		query = query.Where("provider_payment_id = ?", f.ProviderPaymentID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Currency != "" {
		query = query.Where("currency = ?", f.Currency)
	}
	if f.MethodType != "" {
		query = query.Where("payment_method->>'method_type' = ?", f.MethodType)
	}
	if f.Provider != "" {
		query = query.Where("payment_method->>'provider' = ?", f.Provider)
	}
	if f.MinAmount != nil {
		query = query.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query = query.Where("amount <= ?", *f.MaxAmount)
	}
	return createdBetween(query, f.StartDate, f.EndDate)
}

func createdBetween(query *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}
	return query
}

func orderClause(f *Filter) clause.OrderByColumn {
	col := "created_at"
	desc := true
	if f != nil && f.SortBy != "" {
		if c, ok := sortColumns[f.SortBy]; ok {
			col = c
			desc = f.SortDesc
		}
	}
	return clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc}
}

func (r *repository) UpdatePayment(ctx context.Context, paymentID string, apply func(*Payment) error) (*Payment, error) {
	var payment Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPayment(tx, paymentID, &payment); err != nil {
			return err
		}
		if err := apply(&payment); err != nil {
			return err
		}
		if err := tx.Save(&payment).Error; err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// lockPayment loads the payment with SELECT ... FOR UPDATE.
func lockPayment(tx *gorm.DB, paymentID string, payment *Payment) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(payment, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("lock payment: %w", err)
	}
	return nil
}

// --- Refunds ---

func (r *repository) RefundPayment(ctx context.Context, paymentID string, apply func(*Payment) (*Refund, error)) (*Payment, *Refund, error) {
	var payment Payment
	var refund *Refund

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPayment(tx, paymentID, &payment); err != nil {
			return err
		}

		var err error
		refund, err = apply(&payment)
		if err != nil {
			return err
		}

		if err := tx.Create(refund).Error; err != nil {
			return fmt.Errorf("create refund: %w", err)
		}
		if err := tx.Save(&payment).Error; err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &payment, refund, nil
}

func (r *repository) GetRefund(ctx context.Context, refundID string) (*Refund, error) {
	var refund Refund
	if err := r.db.WithContext(ctx).First(&refund, "refund_id = ?", refundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("get refund: %w", err)
	}
	return &refund, nil
}

func (r *repository) ListRefunds(ctx context.Context, paymentID string) ([]*Refund, error) {
	var refunds []*Refund
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&refunds).Error
	if err != nil {
		return nil, fmt.Errorf("list refunds: %w", err)
	}
	return refunds, nil
}

// --- Payment methods ---

func (r *repository) CreateMethod(ctx context.Context, method *PaymentMethod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if method.IsDefault {
			if err := clearDefaults(tx, method.CustomerID, ""); err != nil {
				return err
			}
		}
		if err := tx.Create(method).Error; err != nil {
			return methodWriteError("create payment method", method, err)
		}
		return nil
	})
}

func (r *repository) GetMethod(ctx context.Context, methodID string) (*PaymentMethod, error) {
	var method PaymentMethod
	if err := r.db.WithContext(ctx).First(&method, "method_id = ?", methodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMethodNotFound
		}
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return &method, nil
}

func (r *repository) ListMethods(ctx context.Context, customerID string) ([]*PaymentMethod, error) {
	var methods []*PaymentMethod
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND is_active", customerID).
		Order("is_default DESC, created_at ASC").
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return methods, nil
}

func (r *repository) UpdateMethod(ctx context.Context, method *PaymentMethod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if method.IsDefault {
			if err := clearDefaults(tx, method.CustomerID, method.MethodID); err != nil {
				return err
			}
		}
		if err := tx.Save(method).Error; err != nil {
			return methodWriteError("update payment method", method, err)
		}
		return nil
	})
}

// methodWriteError reports a lost race for the customer's single default
// method as ErrDefaultMethodConflict.
func methodWriteError(op string, method *PaymentMethod, err error) error {
	if method.IsDefault && errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrDefaultMethodConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func clearDefaults(tx *gorm.DB, customerID, exceptMethodID string) error {
	q := tx.Model(&PaymentMethod{}).Where("customer_id = ? AND is_default", customerID)
	if exceptMethodID != "" {
		q = q.Where("method_id <> ?", exceptMethodID)
	}
	if err := q.Update("is_default", false).Error; err != nil {
		return fmt.Errorf("clear default payment methods: %w", err)
	}
	return nil
}

func (r *repository) DeactivateMethod(ctx context.Context, methodID string) error {
	res := r.db.WithContext(ctx).
		Model(&PaymentMethod{}).
		Where("method_id = ?", methodID).
		Updates(map[string]any{"is_active": false, "is_default": false})
	if res.Error != nil {
		return fmt.Errorf("deactivate payment method: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMethodNotFound
	}
	return nil
}

// --- Intents ---

func (r *repository) CreateIntent(ctx context.Context, intent *PaymentIntent) error {
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return fmt.Errorf("create payment intent: %w", err)
	}
	return nil
}

func (r *repository) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := r.db.WithContext(ctx).First(&intent, "intent_id = ?", intentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	return &intent, nil
}

func (r *repository) UpdateIntent(ctx context.Context, intent *PaymentIntent) error {
	if err := r.db.WithContext(ctx).Save(intent).Error; err != nil {
		return fmt.Errorf("update payment intent: %w", err)
	}
	return nil
}

// --- Webhook events ---

func (r *repository) CreateWebhookEvent(ctx context.Context, event *WebhookEvent) (*WebhookEvent, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if res.Error != nil {
		return nil, false, fmt.Errorf("create webhook event: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return event, true, nil
	}

	var existing WebhookEvent
	err := r.db.WithContext(ctx).
		First(&existing, "provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).Error
	if err != nil {
		return nil, false, fmt.Errorf("get webhook event: %w", err)
	}
	return &existing, false, nil
}

func (r *repository) ListUnprocessedEvents(ctx context.Context, provider string) ([]*WebhookEvent, error) {
	var events []*WebhookEvent
	query := r.db.WithContext(ctx).Where("NOT processed")
	if provider != "" {
		query = query.Where("provider = ?", provider)
	}
	if err := query.Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list webhook events: %w", err)
	}
	return events, nil
}

func (r *repository) MarkEventProcessed(ctx context.Context, eventID string, at time.Time) (*WebhookEvent, error) {
	var event WebhookEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, "event_id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWebhookEventNotFound
			}
			return fmt.Errorf("get webhook event: %w", err)
		}
		if event.Processed {
			return nil
		}
		event.Processed = true
		event.ProcessedAt = &at
		if err := tx.Save(&event).Error; err != nil {
			return fmt.Errorf("mark webhook event processed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// --- Statistics ---

func (r *repository) Statistics(ctx context.Context, start, end *time.Time) (*Statistics, error) {
	payments := func() *gorm.DB {
		return createdBetween(r.db.WithContext(ctx).Model(&Payment{}), start, end)
	}

	var stats Statistics
	err := payments().Select(`COUNT(*) AS total_payments,
		COALESCE(SUM(amount), 0) AS total_amount,
		COUNT(*) FILTER (WHERE status = 'completed') AS successful_payments,
		COUNT(*) FILTER (WHERE status = 'failed') AS failed_payments,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending_payments`).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("payment totals: %w", err)
	}

	err = createdBetween(r.db.WithContext(ctx).Model(&Refund{}), start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.RefundedAmount).Error
	if err != nil {
		return nil, fmt.Errorf("refund totals: %w", err)
	}

	breakdowns := []struct {
		expr string
		dst  *[]Distribution
	}{
		{"currency", &stats.CurrencyDistribution},
		{"payment_method->>'method_type'", &stats.MethodDistribution},
		{"payment_method->>'provider'", &stats.ProviderDistribution},
	}
	for _, b := range breakdowns {
		err := payments().
			Select(b.expr + " AS key, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
			Group(b.expr).
			Order("count DESC").
			Scan(b.dst).Error
		if err != nil {
			return nil, fmt.Errorf("payment distribution: %w", err)
		}
	}
	return &stats, nil
}
