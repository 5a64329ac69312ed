package payment

import "errors"

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrRefundNotFound       = errors.New("refund not found")
	ErrMethodNotFound       = errors.New("payment method not found")
	ErrIntentNotFound       = errors.New("payment intent not found")
	ErrWebhookEventNotFound = errors.New("webhook event not found")

	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidStatus        = errors.New("invalid payment status")
	ErrInvalidIntentStatus  = errors.New("invalid payment intent status")
	ErrRefundExceedsAmount  = errors.New("refund exceeds remaining payment amount")
	ErrInvalidRefundAmount  = errors.New("refund amount must be positive")
	ErrCaptureExceedsAmount = errors.New("capture amount exceeds authorized amount")
	ErrInvalidSortField     = errors.New("invalid sort field")
	ErrInvalidDateRange     = errors.New("start date is after end date")
	ErrInvalidFee           = errors.New("fees exceed payment amount")
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")

	ErrDefaultMethodConflict = errors.New("another default payment method was set concurrently")
)
