package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/datalake/server/internal/module/payment/provider"
	"github.com/datalake/server/internal/shared/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 16

// WebhookHandler receives signed gateway webhooks.
type WebhookHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *Service, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{service: service, logger: logger}
}

// RegisterRoutes registers the webhook routes. They authenticate by
// signature, not bearer token.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/payments/webhooks/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook handles incoming Stripe webhook events.
//
//	@Summary		Stripe webhook
//	@Description	Verifies the Stripe-Signature header and stores the event once per Stripe event id
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string	true	"Stripe signature"
//	@Success		200					{object}	map[string]string
//	@Failure		400					{object}	response.ErrorBody
//	@Failure		404					{object}	response.ErrorBody
//	@Failure		500					{object}	response.ErrorBody
//	@Router			/payments/webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	verifier, err := h.service.gateways.Verifier(provider.NameStripe)
	if err != nil {
		response.NotFound(c, "stripe webhooks are not configured")
		return
	}

	// Read raw body for signature verification
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		response.BadRequest(c, "failed to read body")
		return
	}

	event, err := verifier.ConstructEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("invalid webhook signature", zap.Error(err))
		if errors.Is(err, provider.ErrInvalidSignature) {
			handleError(c, provider.ErrInvalidSignature)
			return
		}
		response.BadRequest(c, "invalid event")
		return
	}

	stored, applied, err := h.service.HandleGatewayEvent(c.Request.Context(), provider.NameStripe, event)
	if err != nil {
		h.logger.Error("failed to process webhook event",
			zap.String("provider_event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
		handleError(c, err)
		return
	}

	if !applied {
		c.JSON(http.StatusOK, gin.H{"status": "already_processed", "event_id": stored.EventID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "processed", "event_id": stored.EventID})
}
