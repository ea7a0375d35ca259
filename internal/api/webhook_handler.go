package api

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/decorly/decorly-backend/internal/core"
	"github.com/decorly/decorly-backend/internal/models"
)

// WebhookHandler receives entitlement lifecycle events from the billing
// provider.
type WebhookHandler struct {
	webhookService core.WebhookService
	sharedSecret   string
}

// NewWebhookHandler creates a new WebhookHandler. The shared secret must match
// the Authorization header the provider is configured to send.
func NewWebhookHandler(ws core.WebhookService, sharedSecret string) *WebhookHandler {
	return &WebhookHandler{webhookService: ws, sharedSecret: sharedSecret}
}

// HandleBillingEvent handles POST /webhooks/billing.
//
// The bearer secret is checked before any payload parsing or state read. A 404
// is deliberate for unknown users or transactions: the provider retries
// non-2xx deliveries, which covers events racing ahead of the client's own
// order POST.
func (h *WebhookHandler) HandleBillingEvent(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || subtle.ConstantTimeCompare([]byte(token), []byte(h.sharedSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid webhook credentials"})
		return
	}

	var payload struct {
		Event models.BillingEvent `json:"event"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook payload", Details: err.Error()})
		return
	}

	if err := h.webhookService.HandleEvent(c.Request.Context(), payload.Event); err != nil {
		switch {
		case errors.Is(err, core.ErrUserNotFound), errors.Is(err, core.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, core.ErrInvalidEvent):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			log.Printf("Internal Server Error in WebhookHandler: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process billing event."})
		}
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "event processed"})
}
