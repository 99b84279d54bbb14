package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/mailriver/backend/internal/application/billing"
	"github.com/mailriver/backend/internal/infrastructure/logger"
)

// stripeWebhookMaxBody caps the webhook payload size. Stripe events are
// small; anything larger is not a legitimate event.
const stripeWebhookMaxBody = 1 << 20

// StripeWebhookHandler receives Stripe events. The route is unauthenticated;
// the signature header is the authentication.
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *billingapp.StripeWebhookService
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhookService *billingapp.StripeWebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhookService: webhookService}
}

// Handle verifies and processes one Stripe event. Processing errors after
// signature verification still return 200 so Stripe does not retry events
// we have recorded as failed; only transport and signature problems get a
// non-2xx.
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, stripeWebhookMaxBody))
	if err != nil {
		h.BadRequest(c, "Could not read webhook payload")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.BadRequest(c, "Missing Stripe-Signature header")
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !result.Processed {
		logger.FromContext(c.Request.Context()).Warn("webhook event not processed",
			zap.String("event_id", result.EventID),
			zap.String("event_type", result.EventType),
			zap.String("message", result.Message))
	}

	c.JSON(http.StatusOK, result)
}
