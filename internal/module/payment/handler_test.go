package payment

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datalake/server/internal/module/payment/provider"
	"github.com/datalake/server/internal/shared/middleware"
	"github.com/datalake/server/internal/shared/requestctx"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupRouter(repo *mockRepository, role string, gateways ...provider.Gateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, requestctx.Principal{UserID: 1, Role: role})
		c.Next()
	}
	svc, _, _ := newTestService(repo, gateways...)
	api := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api, auth)
	NewWebhookHandler(svc, nil).RegisterRoutes(api)
	return r
}

func serve(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreatePayment(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreatePayment", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)
	r := setupRouter(repo, "user")

	w := serve(r, http.MethodPost, "/api/v1/payments", []byte(`{"order_id":"ORD_1","customer_id":"CUST_1",
		"amount":50,"currency":"USD","application_fee_amount":5,
		"payment_method":{"method_type":"credit_card","provider":"stripe","last_four":"4242"}}`))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"net_amount":45`)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestHandler_CreatePayment_Validation(t *testing.T) {
	r := setupRouter(new(mockRepository), "user")

	w := serve(r, http.MethodPost, "/api/v1/payments", []byte(`{"order_id":"ORD_1","customer_id":"CUST_1",
		"amount":50,"currency":"XYZ","payment_method":{"method_type":"credit_card","provider":"stripe"}}`))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_GetPayment_NotFound(t *testing.T) {
	repo := new(mockRepository)
	repo.On("GetPayment", mock.Anything, "PAY_NONE").Return(nil, ErrPaymentNotFound)
	r := setupRouter(repo, "user")

	w := serve(r, http.MethodGet, "/api/v1/payments/PAY_NONE", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PAYMENT_NOT_FOUND")
}

func TestHandler_UpdateStatus_Conflict(t *testing.T) {
	repo := new(mockRepository)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusFailed), nil)
	r := setupRouter(repo, "user")

	w := serve(r, http.MethodPatch, "/api/v1/payments/PAY_ABCDEF12/status?status=completed", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS_TRANSITION")
}

func TestHandler_CapturePayment_EmptyBody(t *testing.T) {
	repo := new(mockRepository)
	repo.On("UpdatePayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusPending), nil)
	r := setupRouter(repo, "user")

	w := serve(r, http.MethodPost, "/api/v1/payments/PAY_ABCDEF12/capture", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestHandler_CreateRefund_ExceedsAmount(t *testing.T) {
	repo := new(mockRepository)
	repo.On("RefundPayment", mock.Anything, "PAY_ABCDEF12").Return(testPayment(StatusCompleted), nil)
	r := setupRouter(repo, "user")

	w := serve(r, http.MethodPost, "/api/v1/payments/refunds", []byte(`{"payment_id":"PAY_ABCDEF12","amount":150}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "REFUND_EXCEEDS_AMOUNT")
}

func TestHandler_CreateMethod_DefaultConflict(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreateMethod", mock.Anything, mock.AnythingOfType("*payment.PaymentMethod")).
		Return(fmt.Errorf("create payment method: %w", ErrDefaultMethodConflict))
	r := setupRouter(repo, "user")

	w := serve(r, http.MethodPost, "/api/v1/payments/methods", []byte(`{"customer_id":"CUST_1","is_default":true,
		"payment_method":{"method_type":"credit_card","provider":"stripe"}}`))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DEFAULT_METHOD_CONFLICT")
}

func TestHandler_Search_InvalidSortField(t *testing.T) {
	r := setupRouter(new(mockRepository), "user")

	w := serve(r, http.MethodPost, "/api/v1/payments/search", []byte(`{"sort_by":"payment_method"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SORT_FIELD")
}

func TestHandler_Statistics_BadDate(t *testing.T) {
	r := setupRouter(new(mockRepository), "user")

	w := serve(r, http.MethodGet, "/api/v1/payments/statistics/overview?start_date=yesterday", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateIntent_GatewayNotConfigured(t *testing.T) {
	r := setupRouter(new(mockRepository), "user")

	w := serve(r, http.MethodPost, "/api/v1/payments/intents", []byte(`{"amount":10,"currency":"USD","customer_id":"CUST_1","provider":"stripe"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "GATEWAY_NOT_CONFIGURED")
}

func TestHandler_CreateWebhookEvent_Duplicate(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreateWebhookEvent", mock.Anything, mock.AnythingOfType("*payment.WebhookEvent")).
		Return(&WebhookEvent{EventID: "WEB_1", Provider: "paypal"}, false, nil)
	r := setupRouter(repo, "user")

	w := serve(r, http.MethodPost, "/api/v1/payments/webhooks/events",
		[]byte(`{"provider":"paypal","provider_event_id":"WH-1","event_type":"PAYMENT.CAPTURE.COMPLETED","data":{"id":"x"}}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"event_id":"WEB_1"`)
}

func TestHandler_UnprocessedEvents_RequiresAdmin(t *testing.T) {
	r := setupRouter(new(mockRepository), "user")

	w := serve(r, http.MethodGet, "/api/v1/payments/webhooks/events/unprocessed", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	repo := new(mockRepository)
	repo.On("ListUnprocessedEvents", mock.Anything, "stripe").Return([]*WebhookEvent{{EventID: "WEB_1"}}, nil)
	r = setupRouter(repo, "admin")

	w = serve(r, http.MethodGet, "/api/v1/payments/webhooks/events/unprocessed?provider=stripe", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestHandler_AvailableProviders(t *testing.T) {
	r := setupRouter(new(mockRepository), "user", &fakeGateway{name: "paypal"})

	w := serve(r, http.MethodGet, "/api/v1/payments/providers/available", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"configured_gateways":["paypal"]`)
}

// signedGateway accepts the signature "valid" and returns a fixed event.
type signedGateway struct {
	fakeGateway
	event *provider.Event
}

func (g *signedGateway) ConstructEvent(_ []byte, signature string) (*provider.Event, error) {
	if signature != "valid" {
		return nil, provider.ErrInvalidSignature
	}
	return g.event, nil
}

func TestWebhookHandler_Stripe(t *testing.T) {
	gw := &signedGateway{
		fakeGateway: fakeGateway{name: provider.NameStripe},
		event:       &provider.Event{ID: "evt_1", Type: "customer.created", ObjectID: "cus_1"},
	}

	t.Run("not configured", func(t *testing.T) {
		r := setupRouter(new(mockRepository), "user")
		w := serve(r, http.MethodPost, "/api/v1/payments/webhooks/stripe", []byte(`{}`))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		r := setupRouter(new(mockRepository), "user", gw)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Stripe-Signature", "forged")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_SIGNATURE")
	})

	t.Run("lookup failure asks the gateway to retry", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("ListPayments", mock.Anything, mock.Anything, 0, 1).
			Return([]*Payment(nil), int64(0), errors.New("connection reset"))
		r := setupRouter(repo, "user", gw)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Stripe-Signature", "valid")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		repo.AssertNotCalled(t, "CreateWebhookEvent", mock.Anything, mock.Anything)
	})

	t.Run("processed then duplicate", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("ListPayments", mock.Anything, mock.Anything, 0, 1).Return([]*Payment{}, int64(0), nil)
		repo.On("CreateWebhookEvent", mock.Anything, mock.Anything).
			Return(&WebhookEvent{EventID: "WEB_1"}, true, nil).Once()
		repo.On("CreateWebhookEvent", mock.Anything, mock.Anything).
			Return(&WebhookEvent{EventID: "WEB_1", Processed: true}, false, nil).Once()
		repo.On("MarkEventProcessed", mock.Anything, "WEB_1", fixedNow).
			Return(&WebhookEvent{EventID: "WEB_1", Processed: true}, nil).Once()
		r := setupRouter(repo, "user", gw)

		for _, want := range []string{`"status":"processed"`, `"status":"already_processed"`} {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
			req.Header.Set("Stripe-Signature", "valid")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), want)
		}
		repo.AssertExpectations(t)
	})
}
