package payment

import (
	"fmt"
	"net/http"
	"time"

	"github.com/datalake/server/internal/module/payment/provider"
	"github.com/datalake/server/internal/shared/middleware"
	"github.com/datalake/server/internal/shared/pagination"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

const (
	listDefaultLimit = 20
	listMaxLimit     = 100
)

// Handler handles HTTP requests for payments.
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the payment routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	payments := r.Group("/payments", requireAuth)
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListPayments)
		payments.POST("/search", h.Search)
		payments.GET("/order/:order_id", h.ListByOrder)
		payments.GET("/customer/:customer_id", h.ListByCustomer)
		payments.GET("/statistics/overview", h.Statistics)

		// Refunds
		payments.POST("/refunds", h.CreateRefund)
		payments.GET("/refunds/:refund_id", h.GetRefund)

		// Payment methods
		payments.POST("/methods", h.CreateMethod)
		payments.GET("/methods/available", h.AvailableMethods)
		payments.GET("/methods/customer/:customer_id", h.ListMethods)
		payments.GET("/methods/:id", h.GetMethod)
		payments.PUT("/methods/:id", h.UpdateMethod)
		payments.DELETE("/methods/:id", h.DeleteMethod)

		// Intents
		payments.POST("/intents", h.CreateIntent)
		payments.GET("/intents/:id", h.GetIntent)
		payments.PATCH("/intents/:id/status", h.UpdateIntentStatus)

		// Webhook events
		payments.POST("/webhooks/events", h.CreateWebhookEvent)
		payments.GET("/webhooks/events/unprocessed", middleware.RequireRole("admin"), h.ListUnprocessedEvents)
		payments.PATCH("/webhooks/events/:event_id/processed", middleware.RequireRole("admin"), h.MarkEventProcessed)

		// Reference data
		payments.GET("/currencies/available", h.AvailableCurrencies)
		payments.GET("/providers/available", h.AvailableProviders)
		payments.GET("/statuses/available", h.AvailableStatuses)

		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.PATCH("/:id/status", h.UpdateStatus)
		payments.POST("/:id/process", h.ProcessPayment)
		payments.POST("/:id/capture", h.CapturePayment)
		payments.GET("/:id/refunds", h.ListRefunds)
	}
}

// ========== Payments ==========

// CreatePayment records a payment.
//
//	@Summary		Create payment
//	@Description	Record a pending payment; net_amount is amount minus the application fee
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreatePaymentRequest	true	"Payment"
//	@Success		201		{object}	Payment
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		422		{object}	response.ErrorBody
//	@Router			/payments [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	payment, err := h.service.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// GetPayment returns a payment.
//
//	@Summary		Get payment
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Payment ID"
//	@Success		200	{object}	Payment
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/payments/{id} [get]
func (h *Handler) GetPayment(c *gin.Context) {
	payment, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ListByOrder returns the payments of an order.
//
//	@Summary		List order payments
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			order_id	path		string	true	"Order ID"
//	@Success		200			{array}		Payment
//	@Router			/payments/order/{order_id} [get]
func (h *Handler) ListByOrder(c *gin.Context) {
	payments, err := h.service.ListByOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// ListByCustomer returns a page of a customer's payments.
//
//	@Summary		List customer payments
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			customer_id	path		string	true	"Customer ID"
//	@Param			skip		query		int		false	"Offset"
//	@Param			limit		query		int		false	"Page size"	default(20)
//	@Success		200			{object}	ListResponse
//	@Router			/payments/customer/{customer_id} [get]
func (h *Handler) ListByCustomer(c *gin.Context) {
	h.list(c, &Filter{CustomerID: c.Param("customer_id")})
}

// ListPayments lists payments.
//
//	@Summary		List payments
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			skip		query		int		false	"Offset"
//	@Param			limit		query		int		false	"Page size"	default(20)
//	@Param			status		query		string	false	"Status filter"
//	@Param			currency	query		string	false	"Currency filter"
//	@Param			order_id	query		string	false	"Order filter"
//	@Param			customer_id	query		string	false	"Customer filter"
//	@Success		200			{object}	ListResponse
//	@Failure		400			{object}	response.ErrorBody
//	@Router			/payments [get]
func (h *Handler) ListPayments(c *gin.Context) {
	h.list(c, &Filter{
		OrderID:    c.Query("order_id"),
		CustomerID: c.Query("customer_id"),
		Status:     Status(c.Query("status")),
		Currency:   c.Query("currency"),
	})
}

func (h *Handler) list(c *gin.Context, filter *Filter) {
	p := pagination.FromQuery(c, listDefaultLimit, listMaxLimit)
	resp, err := h.service.ListPayments(c.Request.Context(), filter, p)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search searches payments.
//
//	@Summary		Search payments
//	@Description	Filter by order, customer, status, method, provider, amount range, currency and creation date
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		SearchRequest	true	"Criteria"
//	@Param			skip	query		int				false	"Offset"
//	@Param			limit	query		int				false	"Page size"	default(20)
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/payments/search [post]
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	p := pagination.FromQuery(c, listDefaultLimit, listMaxLimit)
	resp, err := h.service.Search(c.Request.Context(), &req, p)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePayment updates descriptive fields of a payment.
//
//	@Summary		Update payment
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Payment ID"
//	@Param			request	body		UpdatePaymentRequest	true	"Changes"
//	@Success		200		{object}	Payment
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/payments/{id} [put]
func (h *Handler) UpdatePayment(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	payment, err := h.service.UpdatePayment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// UpdateStatus moves a payment to a new status.
//
//	@Summary		Update payment status
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id					path		string	true	"Payment ID"
//	@Param			status				query		string	true	"New status"
//	@Param			provider_payment_id	query		string	false	"Provider payment ID"
//	@Param			failure_reason		query		string	false	"Failure reason"
//	@Param			failure_code		query		string	false	"Failure code"
//	@Success		200					{object}	Payment
//	@Failure		409					{object}	response.ErrorBody
//	@Router			/payments/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var upd StatusUpdate
	if err := c.ShouldBindQuery(&upd); err != nil {
		response.Validation(c, err)
		return
	}

	payment, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), &upd)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ProcessPayment marks a payment completed.
//
//	@Summary		Process payment
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Payment ID"
//	@Param			request	body		ProcessRequest	true	"Provider result"
//	@Success		200		{object}	Payment
//	@Failure		409		{object}	response.ErrorBody
//	@Router			/payments/{id}/process [post]
func (h *Handler) ProcessPayment(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	payment, err := h.service.ProcessPayment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// CapturePayment captures an authorised payment.
//
//	@Summary		Capture payment
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Payment ID"
//	@Param			request	body		CaptureRequest	false	"Capture details"
//	@Success		200		{object}	Payment
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		409		{object}	response.ErrorBody
//	@Router			/payments/{id}/capture [post]
func (h *Handler) CapturePayment(c *gin.Context) {
	var req CaptureRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Validation(c, err)
			return
		}
	}

	payment, err := h.service.CapturePayment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// Statistics returns payment statistics.
//
//	@Summary		Payment statistics
//	@Tags			Payments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			start_date	query		string	false	"RFC 3339 timestamp or YYYY-MM-DD"
//	@Param			end_date	query		string	false	"RFC 3339 timestamp or YYYY-MM-DD"
//	@Success		200			{object}	Statistics
//	@Failure		400			{object}	response.ErrorBody
//	@Router			/payments/statistics/overview [get]
func (h *Handler) Statistics(c *gin.Context) {
	start, err := parseTimeQuery(c, "start_date")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	end, err := parseTimeQuery(c, "end_date")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	stats, err := h.service.Statistics(c.Request.Context(), start, end)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid %s %q", key, raw)
}

// ========== Refunds ==========

// CreateRefund refunds a payment.
//
//	@Summary		Create refund
//	@Description	Refund part or all of a completed payment; the amount defaults to the remaining balance
//	@Tags			Refunds
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateRefundRequest	true	"Refund"
//	@Success		201		{object}	Refund
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		409		{object}	response.ErrorBody
//	@Failure		502		{object}	response.ErrorBody
//	@Router			/payments/refunds [post]
func (h *Handler) CreateRefund(c *gin.Context) {
	var req CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	refund, err := h.service.CreateRefund(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, refund)
}

// GetRefund returns a refund.
//
//	@Summary		Get refund
//	@Tags			Refunds
//	@Produce		json
//	@Security		BearerAuth
//	@Param			refund_id	path		string	true	"Refund ID"
//	@Success		200			{object}	Refund
//	@Failure		404			{object}	response.ErrorBody
//	@Router			/payments/refunds/{refund_id} [get]
func (h *Handler) GetRefund(c *gin.Context) {
	refund, err := h.service.GetRefund(c.Request.Context(), c.Param("refund_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, refund)
}

// ListRefunds lists the refunds of a payment.
//
//	@Summary		List payment refunds
//	@Tags			Refunds
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Payment ID"
//	@Success		200	{object}	RefundListResponse
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/payments/{id}/refunds [get]
func (h *Handler) ListRefunds(c *gin.Context) {
	resp, err := h.service.ListRefunds(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ========== Payment methods ==========

// CreateMethod stores a payment method.
//
//	@Summary		Create payment method
//	@Tags			Payment Methods
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateMethodRequest	true	"Payment method"
//	@Success		201		{object}	PaymentMethod
//	@Failure		409		{object}	response.ErrorBody
//	@Failure		422		{object}	response.ErrorBody
//	@Router			/payments/methods [post]
func (h *Handler) CreateMethod(c *gin.Context) {
	var req CreateMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	method, err := h.service.CreateMethod(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, method)
}

// GetMethod returns a payment method.
//
//	@Summary		Get payment method
//	@Tags			Payment Methods
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Method ID"
//	@Success		200	{object}	PaymentMethod
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/payments/methods/{id} [get]
func (h *Handler) GetMethod(c *gin.Context) {
	method, err := h.service.GetMethod(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

// ListMethods lists a customer's active payment methods.
//
//	@Summary		List customer payment methods
//	@Tags			Payment Methods
//	@Produce		json
//	@Security		BearerAuth
//	@Param			customer_id	path		string	true	"Customer ID"
//	@Success		200			{object}	MethodListResponse
//	@Router			/payments/methods/customer/{customer_id} [get]
func (h *Handler) ListMethods(c *gin.Context) {
	resp, err := h.service.ListMethods(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMethod updates a payment method.
//
//	@Summary		Update payment method
//	@Description	Setting is_default clears the flag on the customer's other methods
//	@Tags			Payment Methods
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Method ID"
//	@Param			request	body		UpdateMethodRequest	true	"Changes"
//	@Success		200		{object}	PaymentMethod
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		409		{object}	response.ErrorBody
//	@Router			/payments/methods/{id} [put]
func (h *Handler) UpdateMethod(c *gin.Context) {
	var req UpdateMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	method, err := h.service.UpdateMethod(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

// DeleteMethod deactivates a payment method.
//
//	@Summary		Delete payment method
//	@Tags			Payment Methods
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Method ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/payments/methods/{id} [delete]
func (h *Handler) DeleteMethod(c *gin.Context) {
	if err := h.service.DeleteMethod(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted successfully"})
}

// ========== Payment intents ==========

// CreateIntent creates a payment intent.
//
//	@Summary		Create payment intent
//	@Description	Set provider to create the intent at a configured gateway
//	@Tags			Payment Intents
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateIntentRequest	true	"Intent"
//	@Success		201		{object}	PaymentIntent
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		502		{object}	response.ErrorBody
//	@Failure		503		{object}	response.ErrorBody
//	@Router			/payments/intents [post]
func (h *Handler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	intent, err := h.service.CreateIntent(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// GetIntent returns a payment intent.
//
//	@Summary		Get payment intent
//	@Tags			Payment Intents
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Intent ID"
//	@Success		200	{object}	PaymentIntent
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/payments/intents/{id} [get]
func (h *Handler) GetIntent(c *gin.Context) {
	intent, err := h.service.GetIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// UpdateIntentStatus sets the status of a payment intent.
//
//	@Summary		Update payment intent status
//	@Tags			Payment Intents
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Intent ID"
//	@Param			status	query		string				true	"New status"
//	@Param			request	body		IntentStatusRequest	false	"Next action"
//	@Success		200		{object}	PaymentIntent
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/payments/intents/{id}/status [patch]
func (h *Handler) UpdateIntentStatus(c *gin.Context) {
	var req IntentStatusRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Validation(c, err)
			return
		}
	}

	intent, err := h.service.UpdateIntentStatus(c.Request.Context(), c.Param("id"), c.Query("status"), req.NextAction)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// ========== Webhook events ==========

// CreateWebhookEvent records a provider notification.
//
//	@Summary		Create webhook event
//	@Description	A repeated provider_event_id returns the stored event with 200
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateWebhookEventRequest	true	"Event"
//	@Success		201		{object}	WebhookEvent
//	@Success		200		{object}	WebhookEvent
//	@Failure		422		{object}	response.ErrorBody
//	@Router			/payments/webhooks/events [post]
func (h *Handler) CreateWebhookEvent(c *gin.Context) {
	var req CreateWebhookEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	event, created, err := h.service.CreateWebhookEvent(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, event)
}

// ListUnprocessedEvents lists unprocessed webhook events.
//
//	@Summary		List unprocessed webhook events
//	@Tags			Webhooks
//	@Produce		json
//	@Security		BearerAuth
//	@Param			provider	query		string	false	"Provider filter"
//	@Success		200			{object}	WebhookEventListResponse
//	@Failure		403			{object}	response.ErrorBody
//	@Router			/payments/webhooks/events/unprocessed [get]
func (h *Handler) ListUnprocessedEvents(c *gin.Context) {
	resp, err := h.service.ListUnprocessedEvents(c.Request.Context(), c.Query("provider"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkEventProcessed flags a webhook event as processed.
//
//	@Summary		Mark webhook event processed
//	@Tags			Webhooks
//	@Produce		json
//	@Security		BearerAuth
//	@Param			event_id	path		string	true	"Event ID"
//	@Success		200			{object}	WebhookEvent
//	@Failure		404			{object}	response.ErrorBody
//	@Router			/payments/webhooks/events/{event_id}/processed [patch]
func (h *Handler) MarkEventProcessed(c *gin.Context) {
	event, err := h.service.MarkEventProcessed(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// ========== Reference data ==========

// AvailableCurrencies lists accepted currencies.
//
//	@Summary	List currencies
//	@Tags		Payments
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string][]string
//	@Router		/payments/currencies/available [get]
func (h *Handler) AvailableCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": AllCurrencies})
}

// AvailableMethods lists payment method types.
//
//	@Summary	List payment method types
//	@Tags		Payments
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string][]string
//	@Router		/payments/methods/available [get]
func (h *Handler) AvailableMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"payment_methods": AllMethodTypes})
}

// AvailableProviders lists payment providers and the gateways configured
// on this server.
//
//	@Summary	List providers
//	@Tags		Payments
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string][]string
//	@Router		/payments/providers/available [get]
func (h *Handler) AvailableProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers":           AllProviders,
		"configured_gateways": nonNilStrings(h.service.gateways.Names()),
	})
}

// AvailableStatuses lists payment statuses.
//
//	@Summary	List statuses
//	@Tags		Payments
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string][]string
//	@Router		/payments/statuses/available [get]
func (h *Handler) AvailableStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"statuses": AllStatuses})
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var errorMappings = []response.ErrorMapping{
	{Err: ErrPaymentNotFound, Status: http.StatusNotFound, Code: "PAYMENT_NOT_FOUND"},
	{Err: ErrRefundNotFound, Status: http.StatusNotFound, Code: "REFUND_NOT_FOUND"},
	{Err: ErrMethodNotFound, Status: http.StatusNotFound, Code: "PAYMENT_METHOD_NOT_FOUND"},
	{Err: ErrIntentNotFound, Status: http.StatusNotFound, Code: "PAYMENT_INTENT_NOT_FOUND"},
	{Err: ErrWebhookEventNotFound, Status: http.StatusNotFound, Code: "WEBHOOK_EVENT_NOT_FOUND"},
	{Err: ErrInvalidTransition, Status: http.StatusConflict, Code: "INVALID_STATUS_TRANSITION"},
	{Err: ErrInvalidStatus, Status: http.StatusBadRequest, Code: "INVALID_STATUS"},
	{Err: ErrInvalidIntentStatus, Status: http.StatusBadRequest, Code: "INVALID_STATUS"},
	{Err: ErrRefundExceedsAmount, Status: http.StatusBadRequest, Code: "REFUND_EXCEEDS_AMOUNT"},
	{Err: ErrInvalidRefundAmount, Status: http.StatusBadRequest, Code: "INVALID_REFUND_AMOUNT"},
	{Err: ErrCaptureExceedsAmount, Status: http.StatusBadRequest, Code: "CAPTURE_EXCEEDS_AMOUNT"},
	{Err: ErrInvalidSortField, Status: http.StatusBadRequest, Code: "INVALID_SORT_FIELD"},
	{Err: ErrInvalidDateRange, Status: http.StatusBadRequest, Code: "INVALID_DATE_RANGE"},
	{Err: ErrInvalidFee, Status: http.StatusBadRequest, Code: "INVALID_FEE"},
	{Err: ErrGatewayNotConfigured, Status: http.StatusBadRequest, Code: "GATEWAY_NOT_CONFIGURED"},
	{Err: ErrDefaultMethodConflict, Status: http.StatusConflict, Code: "DEFAULT_METHOD_CONFLICT"},
	{Err: provider.ErrUnavailable, Status: http.StatusServiceUnavailable, Code: "GATEWAY_UNAVAILABLE"},
	{Err: ErrGatewayFailed, Status: http.StatusBadGateway, Code: "GATEWAY_ERROR", Message: "payment gateway request failed"},
	{Err: provider.ErrInvalidSignature, Status: http.StatusBadRequest, Code: "INVALID_SIGNATURE", Message: "invalid webhook signature"},
}

func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, errorMappings)
}
