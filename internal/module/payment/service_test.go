package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/datalake/server/internal/module/payment/provider"
	"github.com/datalake/server/internal/shared/events"
	"github.com/datalake/server/internal/shared/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreatePayment(ctx context.Context, payment *Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockRepository) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	args := m.Called(ctx, paymentID)
	if p := args.Get(0); p != nil {
		return p.(*Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListPayments(ctx context.Context, filter *Filter, offset, limit int) ([]*Payment, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]*Payment), args.Get(1).(int64), args.Error(2)
}

// UpdatePayment runs apply on a copy of the configured payment and writes
// it back only when apply succeeds, like a committed transaction.
func (m *mockRepository) UpdatePayment(ctx context.Context, paymentID string, apply func(*Payment) error) (*Payment, error) {
	args := m.Called(ctx, paymentID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	stored := args.Get(0).(*Payment)
	row := *stored
	if err := apply(&row); err != nil {
		return nil, err
	}
	*stored = row
	return stored, nil
}

// RefundPayment hands a copy of the configured payment to apply, the way the
// real repository does under its row lock.
func (m *mockRepository) RefundPayment(ctx context.Context, paymentID string, apply func(*Payment) (*Refund, error)) (*Payment, *Refund, error) {
	args := m.Called(ctx, paymentID)
	if err := args.Error(1); err != nil {
		return nil, nil, err
	}
	stored := args.Get(0).(*Payment)
	row := *stored
	refund, err := apply(&row)
	if err != nil {
		return nil, nil, err
	}
	*stored = row
	return stored, refund, nil
}

func (m *mockRepository) GetRefund(ctx context.Context, refundID string) (*Refund, error) {
	args := m.Called(ctx, refundID)
	if r := args.Get(0); r != nil {
		return r.(*Refund), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListRefunds(ctx context.Context, paymentID string) ([]*Refund, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).([]*Refund), args.Error(1)
}

func (m *mockRepository) CreateMethod(ctx context.Context, method *PaymentMethod) error {
	return m.Called(ctx, method).Error(0)
}

func (m *mockRepository) GetMethod(ctx context.Context, methodID string) (*PaymentMethod, error) {
	args := m.Called(ctx, methodID)
	if pm := args.Get(0); pm != nil {
		return pm.(*PaymentMethod), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListMethods(ctx context.Context, customerID string) ([]*PaymentMethod, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]*PaymentMethod), args.Error(1)
}

func (m *mockRepository) UpdateMethod(ctx context.Context, method *PaymentMethod) error {
	return m.Called(ctx, method).Error(0)
}

func (m *mockRepository) DeactivateMethod(ctx context.Context, methodID string) error {
	return m.Called(ctx, methodID).Error(0)
}

func (m *mockRepository) CreateIntent(ctx context.Context, intent *PaymentIntent) error {
	return m.Called(ctx, intent).Error(0)
}

func (m *mockRepository) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	if i := args.Get(0); i != nil {
		return i.(*PaymentIntent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) UpdateIntent(ctx context.Context, intent *PaymentIntent) error {
	return m.Called(ctx, intent).Error(0)
}

func (m *mockRepository) CreateWebhookEvent(ctx context.Context, event *WebhookEvent) (*WebhookEvent, bool, error) {
	args := m.Called(ctx, event)
	if e := args.Get(0); e != nil {
		return e.(*WebhookEvent), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *mockRepository) ListUnprocessedEvents(ctx context.Context, provider string) ([]*WebhookEvent, error) {
	args := m.Called(ctx, provider)
	return args.Get(0).([]*WebhookEvent), args.Error(1)
}

func (m *mockRepository) MarkEventProcessed(ctx context.Context, eventID string, at time.Time) (*WebhookEvent, error) {
	args := m.Called(ctx, eventID, at)
	if e := args.Get(0); e != nil {
		return e.(*WebhookEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Statistics(ctx context.Context, start, end *time.Time) (*Statistics, error) {
	args := m.Called(ctx, start, end)
	if s := args.Get(0); s != nil {
		return s.(*Statistics), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeGateway struct {
	name      string
	intent    *provider.Intent
	err       error
	refunds   []*provider.RefundParams
	intentsIn []*provider.IntentParams
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreateIntent(_ context.Context, params *provider.IntentParams) (*provider.Intent, error) {
	g.intentsIn = append(g.intentsIn, params)
	if g.err != nil {
		return nil, g.err
	}
	return g.intent, nil
}

func (g *fakeGateway) Refund(_ context.Context, params *provider.RefundParams) (*provider.Refund, error) {
	g.refunds = append(g.refunds, params)
	if g.err != nil {
		return nil, g.err
	}
	return &provider.Refund{ID: "re_123", Status: "succeeded"}, nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingMetrics struct {
	statuses  []string
	completed []float64
	refunds   []float64
}

func (m *recordingMetrics) RecordPaymentStatus(status, _ string) {
	m.statuses = append(m.statuses, status)
}

func (m *recordingMetrics) RecordPaymentCompleted(_ string, amount float64) {
	m.completed = append(m.completed, amount)
}

func (m *recordingMetrics) RecordRefund(_ string, amount float64) {
	m.refunds = append(m.refunds, amount)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository, gateways ...provider.Gateway) (*Service, *recordingPublisher, *recordingMetrics) {
	reg := NewGatewayRegistry()
	for _, g := range gateways {
		reg.Register(g)
	}
	pub := &recordingPublisher{}
	rec := &recordingMetrics{}
	svc := NewService(repo, reg, pub, rec, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, pub, rec
}

func testPayment(status Status) *Payment {
	p := &Payment{
		ID:                   1,
		PaymentID:            "PAY_ABCDEF12",
		OrderID:              "ORD_1",
		CustomerID:           "CUST_1",
		Amount:               100,
		Currency:             "USD",
		MethodDetails:        MethodDetails{MethodType: MethodCreditCard, Provider: ProviderStripe},
		Status:               status,
		Metadata:             map[string]any{"source": "web"},
		CaptureMethod:        CaptureAutomatic,
		ApplicationFeeAmount: 2.5,
	}
	p.RecalculateNet()
	return p
}

func floatPtr(v float64) *float64 { return &v }

// ========== Payments ==========

func TestService_CreatePayment(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreatePayment", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)
	svc, pub, rec := newTestService(repo)

	p, err := svc.CreatePayment(context.Background(), &CreatePaymentRequest{
		OrderID:              "ORD_1",
		CustomerID:           "CUST_1",
		Amount:               99.999,
		Currency:             "EUR",
		PaymentMethod:        MethodDetails{MethodType: MethodCreditCard, Provider: ProviderStripe},
		ApplicationFeeAmount: 3,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.PaymentID, "PAY_"))
	assert.Len(t, p.PaymentID, len("PAY_")+8)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, 100.0, p.Amount)
	assert.Equal(t, 97.0, p.NetAmount)
	assert.Equal(t, CaptureAutomatic, p.CaptureMethod)
	assert.NotNil(t, p.Metadata)
	assert.Equal(t, []string{events.TypePaymentCreated}, pub.types())
	assert.Equal(t, []string{"pending"}, rec.statuses)
}

func TestService_CreatePayment_FeeExceedsAmount(t *testing.T) {
	svc, _, _ := newTestService(new(mockRepository))

	_, err := svc.CreatePayment(context.Background(), &CreatePaymentRequest{Amount: 10, ApplicationFeeAmount: 11})

	assert.ErrorIs(t, err, ErrInvalidFee)
}

func TestService_UpdatePayment(t *testing.T) {
	repo := new(mockRepository)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusPending), nil)
	svc, _, _ := newTestService(repo)

	desc := "first instalment"
	p, err := svc.UpdatePayment(context.Background(), "PAY_ABCDEF12", &UpdatePaymentRequest{
		Description:          &desc,
		Metadata:             map[string]any{"campaign": "spring"},
		ApplicationFeeAmount: floatPtr(10),
	})

	require.NoError(t, err)
	assert.Equal(t, desc, p.Description)
	assert.Equal(t, map[string]any{"source": "web", "campaign": "spring"}, p.Metadata)
	assert.Equal(t, 90.0, p.NetAmount)
}

func TestService_UpdatePayment_WorksOnLockedRow(t *testing.T) {
	// The row handed out under the lock already carries a refund committed
	// after any earlier read of the payment.
	locked := testPayment(StatusPartiallyRefunded)
	locked.RefundedAmount = 50
	repo := new(mockRepository)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(locked, nil)
	svc, _, _ := newTestService(repo)

	desc := "updated"
	p, err := svc.UpdatePayment(context.Background(), "PAY_ABCDEF12", &UpdatePaymentRequest{Description: &desc})

	require.NoError(t, err)
	assert.Equal(t, desc, p.Description)
	assert.Equal(t, 50.0, p.RefundedAmount)
	assert.Equal(t, StatusPartiallyRefunded, p.Status)
	repo.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
}

func TestService_Transitions_UseLockedRow(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Service) (*Payment, error)
	}{
		{"update status", func(s *Service) (*Payment, error) {
			return s.UpdateStatus(context.Background(), "PAY_ABCDEF12", &StatusUpdate{Status: StatusDisputed})
		}},
		{"process", func(s *Service) (*Payment, error) {
			return s.ProcessPayment(context.Background(), "PAY_ABCDEF12", &ProcessRequest{ProviderPaymentID: "ch_1"})
		}},
		{"capture", func(s *Service) (*Payment, error) {
			return s.CapturePayment(context.Background(), "PAY_ABCDEF12", &CaptureRequest{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A refund landed before the lock was taken: refund statuses
			// cannot move to these targets, so nothing is written.
			locked := testPayment(StatusRefunded)
			locked.RefundedAmount = 100
			repo := new(mockRepository)
			repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(locked, nil)
			svc, pub, _ := newTestService(repo)

			_, err := tt.run(svc)

			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, StatusRefunded, locked.Status)
			assert.Equal(t, 100.0, locked.RefundedAmount)
			assert.Empty(t, pub.events)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr error
	}{
		{"pending to processing", StatusPending, StatusProcessing, nil},
		{"processing to failed", StatusProcessing, StatusFailed, nil},
		{"completed to disputed", StatusCompleted, StatusDisputed, nil},
		{"disputed back to completed", StatusDisputed, StatusCompleted, nil},
		{"failed is terminal", StatusFailed, StatusCompleted, ErrInvalidTransition},
		{"cancelled is terminal", StatusCancelled, StatusPending, ErrInvalidTransition},
		{"completed cannot go back to pending", StatusCompleted, StatusPending, ErrInvalidTransition},
		{"refund statuses only via refunds", StatusCompleted, StatusRefunded, ErrInvalidTransition},
		{"unknown status", StatusPending, Status("lost"), ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := testPayment(tt.from)
			repo := new(mockRepository)
			repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(stored, nil).Maybe()
			svc, pub, _ := newTestService(repo)

			p, err := svc.UpdateStatus(context.Background(), "PAY_ABCDEF12", &StatusUpdate{Status: tt.to})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, stored.Status)
				assert.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, p.Status)
		})
	}
}

func TestService_UpdateStatus_Completed(t *testing.T) {
	repo := new(mockRepository)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusProcessing), nil)
	svc, pub, rec := newTestService(repo)

	p, err := svc.UpdateStatus(context.Background(), "PAY_ABCDEF12", &StatusUpdate{
		Status:            StatusCompleted,
		ProviderPaymentID: "pi_123",
	})

	require.NoError(t, err)
	require.NotNil(t, p.ProcessedAt)
	assert.Equal(t, fixedNow, *p.ProcessedAt)
	assert.Equal(t, "pi_123", p.ProviderPaymentID)
	assert.Equal(t, []string{events.TypePaymentCompleted}, pub.types())
	assert.Equal(t, []float64{100}, rec.completed)
}

func TestService_ProcessPayment(t *testing.T) {
	repo := new(mockRepository)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusPending), nil)
	svc, _, _ := newTestService(repo)

	p, err := svc.ProcessPayment(context.Background(), "PAY_ABCDEF12", &ProcessRequest{
		ProviderPaymentID: "ch_1",
		ProviderFeeAmount: floatPtr(3.2),
	})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, "ch_1", p.ProviderPaymentID)
	assert.Equal(t, 94.3, p.NetAmount)
	assert.NotNil(t, p.ProcessedAt)
}

func TestService_ProcessPayment_AlreadyCompleted(t *testing.T) {
	repo := new(mockRepository)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusCompleted), nil)
	svc, _, _ := newTestService(repo)

	_, err := svc.ProcessPayment(context.Background(), "PAY_ABCDEF12", &ProcessRequest{ProviderPaymentID: "ch_1"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_CapturePayment(t *testing.T) {
	t.Run("partial amount", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusProcessing), nil)
		svc, _, _ := newTestService(repo)

		p, err := svc.CapturePayment(context.Background(), "PAY_ABCDEF12", &CaptureRequest{
			Amount:              floatPtr(60),
			StatementDescriptor: "DATALAKE",
			Metadata:            map[string]any{"captured_by": "ops"},
		})

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, p.Status)
		assert.Equal(t, 60.0, p.Amount)
		assert.Equal(t, 57.5, p.NetAmount)
		assert.Equal(t, "DATALAKE", p.StatementDescriptor)
		assert.Equal(t, "ops", p.Metadata["captured_by"])
		assert.Equal(t, "web", p.Metadata["source"])
	})

	t.Run("amount above authorised", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusPending), nil)
		svc, _, _ := newTestService(repo)

		_, err := svc.CapturePayment(context.Background(), "PAY_ABCDEF12", &CaptureRequest{Amount: floatPtr(100.01)})
		assert.ErrorIs(t, err, ErrCaptureExceedsAmount)
	})

	t.Run("already completed", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusCompleted), nil)
		svc, _, _ := newTestService(repo)

		_, err := svc.CapturePayment(context.Background(), "PAY_ABCDEF12", &CaptureRequest{})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestService_Search_InvalidSortField(t *testing.T) {
	svc, _, _ := newTestService(new(mockRepository))

	_, err := svc.Search(context.Background(), &SearchRequest{SortBy: "password"}, pagination.New(0, 20, 20, 100))

	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestService_Search(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListPayments", mock.Anything, mock.MatchedBy(func(f *Filter) bool {
		return f.SortBy == "amount" && !f.SortDesc && f.Currency == "USD" && *f.MinAmount == 10
	}), 20, 20).Return([]*Payment{testPayment(StatusPending)}, int64(21), nil)
	svc, _, _ := newTestService(repo)

	resp, err := svc.Search(context.Background(), &SearchRequest{
		Currency:  "USD",
		MinAmount: floatPtr(10),
		SortBy:    "amount",
		SortOrder: "asc",
	}, pagination.New(20, 20, 20, 100))

	require.NoError(t, err)
	assert.Equal(t, int64(21), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 20, resp.Size)
}

// ========== Refunds ==========

func TestService_CreateRefund(t *testing.T) {
	tests := []struct {
		name          string
		status        Status
		refunded      float64
		amount        *float64
		wantStatus    Status
		wantAmount    float64
		wantErr       error
		totalRefunded float64
	}{
		{"partial", StatusCompleted, 0, floatPtr(30), StatusPartiallyRefunded, 30, nil, 30},
		{"defaults to remaining", StatusPartiallyRefunded, 30, nil, StatusRefunded, 70, nil, 100},
		{"exact remainder", StatusPartiallyRefunded, 30, floatPtr(70), StatusRefunded, 70, nil, 100},
		{"over remaining", StatusPartiallyRefunded, 30, floatPtr(70.01), "", 0, ErrRefundExceedsAmount, 0},
		{"pending payment", StatusPending, 0, floatPtr(10), "", 0, ErrInvalidTransition, 0},
		{"fully refunded", StatusRefunded, 100, nil, "", 0, ErrInvalidTransition, 0},
		{"disputed partial", StatusDisputed, 0, floatPtr(10), "", 0, ErrInvalidTransition, 0},
		{"disputed full", StatusDisputed, 0, nil, StatusRefunded, 100, nil, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := testPayment(tt.status)
			payment.RefundedAmount = tt.refunded
			repo := new(mockRepository)
			repo.On("RefundPayment", mock.Anything, "PAY_ABCDEF12").Return(payment, nil)
			svc, pub, rec := newTestService(repo)

			refund, err := svc.CreateRefund(context.Background(), &CreateRefundRequest{
				PaymentID: "PAY_ABCDEF12",
				Amount:    tt.amount,
				Reason:    "requested_by_customer",
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, payment.Status)
				assert.Equal(t, tt.refunded, payment.RefundedAmount)
				assert.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(refund.RefundID, "REF_"))
			assert.Equal(t, tt.wantAmount, refund.Amount)
			assert.Equal(t, RefundStatusCompleted, refund.Status)
			assert.Equal(t, tt.wantStatus, payment.Status)
			assert.Equal(t, tt.totalRefunded, payment.RefundedAmount)
			assert.Equal(t, []string{events.TypePaymentRefunded}, pub.types())
			assert.Equal(t, []float64{tt.wantAmount}, rec.refunds)
		})
	}
}

func TestService_CreateRefund_ThroughGateway(t *testing.T) {
	payment := testPayment(StatusCompleted)
	payment.ProviderPaymentID = "pi_123"
	repo := new(mockRepository)
	repo.On("RefundPayment", mock.Anything, "PAY_ABCDEF12").Return(payment, nil)
	gw := &fakeGateway{name: "stripe"}
	svc, _, _ := newTestService(repo, gw)

	refund, err := svc.CreateRefund(context.Background(), &CreateRefundRequest{PaymentID: "PAY_ABCDEF12", Amount: floatPtr(25)})

	require.NoError(t, err)
	assert.Equal(t, "re_123", refund.ProviderRefundID)
	require.Len(t, gw.refunds, 1)
	assert.Equal(t, "pi_123", gw.refunds[0].ProviderPaymentID)
	assert.Equal(t, 25.0, gw.refunds[0].Amount)
	assert.Equal(t, refund.RefundID, gw.refunds[0].Metadata["refund_id"])
}

func TestService_CreateRefund_GatewayFailure(t *testing.T) {
	payment := testPayment(StatusCompleted)
	payment.ProviderPaymentID = "pi_123"
	repo := new(mockRepository)
	repo.On("RefundPayment", mock.Anything, "PAY_ABCDEF12").Return(payment, nil)
	svc, pub, _ := newTestService(repo, &fakeGateway{name: "stripe", err: errors.New("card_declined")})

	_, err := svc.CreateRefund(context.Background(), &CreateRefundRequest{PaymentID: "PAY_ABCDEF12"})

	assert.ErrorIs(t, err, ErrGatewayFailed)
	assert.Equal(t, StatusCompleted, payment.Status)
	assert.Zero(t, payment.RefundedAmount)
	assert.Empty(t, pub.events)
}

func TestService_CreateRefund_GatewayUnavailable(t *testing.T) {
	payment := testPayment(StatusCompleted)
	payment.ProviderPaymentID = "pi_123"
	repo := new(mockRepository)
	repo.On("RefundPayment", mock.Anything, "PAY_ABCDEF12").Return(payment, nil)
	svc, _, _ := newTestService(repo, &fakeGateway{name: "stripe", err: provider.ErrUnavailable})

	_, err := svc.CreateRefund(context.Background(), &CreateRefundRequest{PaymentID: "PAY_ABCDEF12"})

	assert.ErrorIs(t, err, provider.ErrUnavailable)
	assert.NotErrorIs(t, err, ErrGatewayFailed)
}

func TestService_ListRefunds_UnknownPayment(t *testing.T) {
	repo := new(mockRepository)
	repo.On("GetPayment", mock.Anything, "PAY_NONE").Return(nil, ErrPaymentNotFound)
	svc, _, _ := newTestService(repo)

	_, err := svc.ListRefunds(context.Background(), "PAY_NONE")

	assert.ErrorIs(t, err, ErrPaymentNotFound)
	repo.AssertNotCalled(t, "ListRefunds", mock.Anything, mock.Anything)
}

// ========== Payment methods ==========

func TestService_CreateMethod(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreateMethod", mock.Anything, mock.AnythingOfType("*payment.PaymentMethod")).Return(nil)
	svc, _, _ := newTestService(repo)

	m, err := svc.CreateMethod(context.Background(), &CreateMethodRequest{
		CustomerID:    "CUST_1",
		PaymentMethod: MethodDetails{MethodType: MethodDebitCard, Provider: ProviderAdyen, LastFour: "4242"},
		IsDefault:     true,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.MethodID, "PM_"))
	assert.Equal(t, MethodDebitCard, m.Type)
	assert.Equal(t, ProviderAdyen, m.Provider)
	assert.True(t, m.IsActive)
	assert.True(t, m.IsDefault)
	assert.Equal(t, "4242", m.Details.LastFour)
}

func TestService_UpdateMethod(t *testing.T) {
	t.Run("set default", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("GetMethod", mock.Anything, "PM_1").Return(&PaymentMethod{MethodID: "PM_1", CustomerID: "CUST_1", IsActive: true}, nil)
		repo.On("UpdateMethod", mock.Anything, mock.MatchedBy(func(m *PaymentMethod) bool { return m.IsDefault })).Return(nil)
		svc, _, _ := newTestService(repo)

		isDefault := true
		m, err := svc.UpdateMethod(context.Background(), "PM_1", &UpdateMethodRequest{IsDefault: &isDefault})

		require.NoError(t, err)
		assert.True(t, m.IsDefault)
		repo.AssertExpectations(t)
	})

	t.Run("deleted method", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("GetMethod", mock.Anything, "PM_1").Return(&PaymentMethod{MethodID: "PM_1", IsActive: false}, nil)
		svc, _, _ := newTestService(repo)

		_, err := svc.UpdateMethod(context.Background(), "PM_1", &UpdateMethodRequest{})
		assert.ErrorIs(t, err, ErrMethodNotFound)
	})
}

// ========== Payment intents ==========

func TestService_CreateIntent_Local(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreateIntent", mock.Anything, mock.AnythingOfType("*payment.PaymentIntent")).Return(nil)
	svc, _, _ := newTestService(repo)

	intent, err := svc.CreateIntent(context.Background(), &CreateIntentRequest{
		Amount:     49.99,
		Currency:   "USD",
		CustomerID: "CUST_1",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(intent.IntentID, "PI_"))
	assert.Equal(t, IntentRequiresPaymentMethod, intent.Status)
	assert.True(t, strings.HasPrefix(intent.ClientSecret, intent.IntentID+"_secret_"))
	assert.Empty(t, intent.Provider)
}

func TestService_CreateIntent_Gateway(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreateIntent", mock.Anything, mock.AnythingOfType("*payment.PaymentIntent")).Return(nil)
	gw := &fakeGateway{name: "paypal", intent: &provider.Intent{
		ID:         "5O190127TN364715T",
		Status:     "CREATED",
		NextAction: map[string]any{"type": "redirect_to_url", "redirect_url": "https://paypal.test/approve"},
	}}
	svc, _, _ := newTestService(repo, gw)

	intent, err := svc.CreateIntent(context.Background(), &CreateIntentRequest{
		Amount:        20,
		Currency:      "EUR",
		CustomerID:    "CUST_1",
		CaptureMethod: CaptureManual,
		Metadata:      map[string]any{"order_id": "ORD_1"},
		Provider:      "paypal",
	})

	require.NoError(t, err)
	assert.Equal(t, "paypal", intent.Provider)
	assert.Equal(t, "5O190127TN364715T", intent.ProviderIntentID)
	assert.Equal(t, IntentRequiresAction, intent.Status)
	assert.Equal(t, "https://paypal.test/approve", intent.NextAction["redirect_url"])
	assert.NotEmpty(t, intent.ClientSecret)
	require.Len(t, gw.intentsIn, 1)
	assert.Equal(t, intent.IntentID, gw.intentsIn[0].Reference)
	assert.Equal(t, "ORD_1", gw.intentsIn[0].Metadata["order_id"])
	assert.Equal(t, CaptureManual, gw.intentsIn[0].CaptureMethod)
}

func TestService_CreateIntent_GatewayNotConfigured(t *testing.T) {
	svc, _, _ := newTestService(new(mockRepository))

	_, err := svc.CreateIntent(context.Background(), &CreateIntentRequest{Amount: 1, Currency: "USD", Provider: "stripe"})

	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

func TestService_UpdateIntentStatus(t *testing.T) {
	repo := new(mockRepository)
	repo.On("GetIntent", mock.Anything, "PI_1").Return(&PaymentIntent{IntentID: "PI_1", Status: IntentRequiresPaymentMethod}, nil)
	repo.On("UpdateIntent", mock.Anything, mock.AnythingOfType("*payment.PaymentIntent")).Return(nil)
	svc, _, _ := newTestService(repo)

	intent, err := svc.UpdateIntentStatus(context.Background(), "PI_1", IntentRequiresAction, map[string]any{"type": "use_stripe_sdk"})
	require.NoError(t, err)
	assert.Equal(t, IntentRequiresAction, intent.Status)
	assert.Equal(t, "use_stripe_sdk", intent.NextAction["type"])

	_, err = svc.UpdateIntentStatus(context.Background(), "PI_1", "teleported", nil)
	assert.ErrorIs(t, err, ErrInvalidIntentStatus)
}

// ========== Statistics ==========

func TestService_Statistics(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Statistics", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(&Statistics{
		TotalPayments:        3,
		TotalAmount:          100,
		SuccessfulPayments:   2,
		RefundedAmount:       25.555,
		CurrencyDistribution: []Distribution{{Key: "USD", Count: 3, Total: 100.004}},
	}, nil)
	svc, _, _ := newTestService(repo)

	stats, err := svc.Statistics(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 25.56, stats.RefundedAmount)
	assert.Equal(t, 74.44, stats.NetRevenue)
	assert.Equal(t, 33.33, stats.AveragePaymentAmount)
	assert.Equal(t, 100.0, stats.CurrencyDistribution[0].Total)
	assert.NotNil(t, stats.MethodDistribution)
}

func TestService_Statistics_InvalidRange(t *testing.T) {
	svc, _, _ := newTestService(new(mockRepository))
	start := fixedNow
	end := fixedNow.Add(-time.Hour)

	_, err := svc.Statistics(context.Background(), &start, &end)

	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

// ========== Webhooks ==========

func TestService_HandleGatewayEvent(t *testing.T) {
	payment := testPayment(StatusProcessing)
	payment.ProviderPaymentID = "pi_123"

	repo := new(mockRepository)
	repo.On("ListPayments", mock.Anything, &Filter{ProviderPaymentID: "pi_123"}, 0, 1).Return([]*Payment{payment}, int64(1), nil)
	repo.On("CreateWebhookEvent", mock.Anything, mock.MatchedBy(func(e *WebhookEvent) bool {
		return e.Provider == "stripe" && *e.ProviderEventID == "evt_1" && e.PaymentID == "PAY_ABCDEF12"
	})).Return(&WebhookEvent{EventID: "WEB_1", Provider: "stripe"}, true, nil)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(payment, nil)
	repo.On("MarkEventProcessed", mock.Anything, "WEB_1", fixedNow).Return(&WebhookEvent{EventID: "WEB_1", Processed: true}, nil)
	svc, pub, _ := newTestService(repo)

	stored, created, err := svc.HandleGatewayEvent(context.Background(), "stripe", &provider.Event{
		ID:       "evt_1",
		Type:     "payment_intent.succeeded",
		ObjectID: "pi_123",
		Data:     map[string]any{"id": "pi_123"},
	})

	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, stored.Processed)
	assert.Equal(t, StatusCompleted, payment.Status)
	assert.Equal(t, []string{events.TypePaymentCompleted}, pub.types())
	repo.AssertExpectations(t)
}

func TestService_HandleGatewayEvent_Failed(t *testing.T) {
	payment := testPayment(StatusPending)
	payment.ProviderPaymentID = "pi_123"

	repo := new(mockRepository)
	repo.On("ListPayments", mock.Anything, mock.Anything, 0, 1).Return([]*Payment{payment}, int64(1), nil)
	repo.On("CreateWebhookEvent", mock.Anything, mock.Anything).Return(&WebhookEvent{EventID: "WEB_2"}, true, nil)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(payment, nil)
	repo.On("MarkEventProcessed", mock.Anything, "WEB_2", fixedNow).Return(&WebhookEvent{EventID: "WEB_2", Processed: true}, nil)
	svc, _, _ := newTestService(repo)

	_, _, err := svc.HandleGatewayEvent(context.Background(), "stripe", &provider.Event{
		ID:       "evt_2",
		Type:     "payment_intent.payment_failed",
		ObjectID: "pi_123",
		Data: map[string]any{
			"id":                 "pi_123",
			"last_payment_error": map[string]any{"code": "card_declined", "message": "Your card was declined."},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, payment.Status)
	assert.Equal(t, "card_declined", payment.FailureCode)
	assert.Equal(t, "Your card was declined.", payment.FailureReason)
}

func TestService_HandleGatewayEvent_Duplicate(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListPayments", mock.Anything, mock.Anything, 0, 1).Return([]*Payment{}, int64(0), nil)
	repo.On("CreateWebhookEvent", mock.Anything, mock.Anything).
		Return(&WebhookEvent{EventID: "WEB_1", Processed: true}, false, nil)
	svc, pub, _ := newTestService(repo)

	stored, created, err := svc.HandleGatewayEvent(context.Background(), "stripe", &provider.Event{
		ID:       "evt_1",
		Type:     "payment_intent.succeeded",
		ObjectID: "pi_unknown",
	})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "WEB_1", stored.EventID)
	assert.Empty(t, pub.events)
	repo.AssertNotCalled(t, "MarkEventProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_HandleGatewayEvent_LookupError(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListPayments", mock.Anything, mock.Anything, 0, 1).
		Return([]*Payment(nil), int64(0), errors.New("connection reset"))
	svc, pub, _ := newTestService(repo)

	_, applied, err := svc.HandleGatewayEvent(context.Background(), "stripe", &provider.Event{
		ID:       "evt_1",
		Type:     "payment_intent.succeeded",
		ObjectID: "pi_123",
	})

	assert.Error(t, err)
	assert.False(t, applied)
	assert.Empty(t, pub.events)
	repo.AssertNotCalled(t, "CreateWebhookEvent", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkEventProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_HandleGatewayEvent_ApplyFailureStaysUnprocessed(t *testing.T) {
	payment := testPayment(StatusProcessing)
	payment.ProviderPaymentID = "pi_123"

	repo := new(mockRepository)
	repo.On("ListPayments", mock.Anything, mock.Anything, 0, 1).Return([]*Payment{payment}, int64(1), nil)
	repo.On("CreateWebhookEvent", mock.Anything, mock.Anything).Return(&WebhookEvent{EventID: "WEB_1"}, true, nil)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(nil, errors.New("deadlock detected"))
	svc, _, _ := newTestService(repo)

	_, applied, err := svc.HandleGatewayEvent(context.Background(), "stripe", &provider.Event{
		ID:       "evt_1",
		Type:     "payment_intent.succeeded",
		ObjectID: "pi_123",
	})

	assert.Error(t, err)
	assert.False(t, applied)
	repo.AssertNotCalled(t, "MarkEventProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_HandleGatewayEvent_ReappliesUnprocessedDuplicate(t *testing.T) {
	payment := testPayment(StatusProcessing)
	payment.ProviderPaymentID = "pi_123"

	repo := new(mockRepository)
	repo.On("ListPayments", mock.Anything, mock.Anything, 0, 1).Return([]*Payment{payment}, int64(1), nil)
	repo.On("CreateWebhookEvent", mock.Anything, mock.Anything).
		Return(&WebhookEvent{EventID: "WEB_1", Processed: false}, false, nil)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(payment, nil)
	repo.On("MarkEventProcessed", mock.Anything, "WEB_1", fixedNow).
		Return(&WebhookEvent{EventID: "WEB_1", Processed: true}, nil)
	svc, pub, _ := newTestService(repo)

	stored, applied, err := svc.HandleGatewayEvent(context.Background(), "stripe", &provider.Event{
		ID:       "evt_1",
		Type:     "payment_intent.succeeded",
		ObjectID: "pi_123",
	})

	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, stored.Processed)
	assert.Equal(t, StatusCompleted, payment.Status)
	assert.Equal(t, []string{events.TypePaymentCompleted}, pub.types())
	repo.AssertExpectations(t)
}

func TestService_HandleGatewayEvent_StaleTransitionIsProcessed(t *testing.T) {
	payment := testPayment(StatusCompleted)
	payment.ProviderPaymentID = "pi_123"

	repo := new(mockRepository)
	repo.On("ListPayments", mock.Anything, mock.Anything, 0, 1).Return([]*Payment{payment}, int64(1), nil)
	repo.On("CreateWebhookEvent", mock.Anything, mock.Anything).Return(&WebhookEvent{EventID: "WEB_3"}, true, nil)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(payment, nil)
	repo.On("MarkEventProcessed", mock.Anything, "WEB_3", fixedNow).
		Return(&WebhookEvent{EventID: "WEB_3", Processed: true}, nil)
	svc, pub, _ := newTestService(repo)

	_, applied, err := svc.HandleGatewayEvent(context.Background(), "stripe", &provider.Event{
		ID:       "evt_3",
		Type:     "payment_intent.payment_failed",
		ObjectID: "pi_123",
	})

	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, StatusCompleted, payment.Status)
	assert.Empty(t, pub.events)
}

func TestCanTransition(t *testing.T) {
	for _, terminal := range []Status{StatusFailed, StatusCancelled, StatusRefunded} {
		for _, to := range AllStatuses {
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
	assert.True(t, CanTransition(StatusPartiallyRefunded, StatusPartiallyRefunded))
	assert.Equal(t, []Status{StatusCompleted, StatusRefunded}, AllowedTransitions(StatusDisputed))
}
