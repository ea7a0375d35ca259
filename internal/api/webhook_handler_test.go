package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/decorly/decorly-backend/internal/core"
	"github.com/decorly/decorly-backend/internal/models"
)

type stubWebhookService struct {
	calls int
	err   error
	last  models.BillingEvent
}

func (s *stubWebhookService) HandleEvent(_ context.Context, event models.BillingEvent) error {
	s.calls++
	s.last = event
	return s.err
}

func postBillingEvent(handler *WebhookHandler, authHeader, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/webhooks/billing", handler.HandleBillingEvent)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/billing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const renewalBody = `{"event":{"type":"RENEWAL","app_user_id":"user-1","transaction_id":"tx-1","expiration_at_ms":1767225600000}}`

func TestHandleBillingEventRejectsMissingSecret(t *testing.T) {
	svc := &stubWebhookService{}
	handler := NewWebhookHandler(svc, "hook-secret")

	rec := postBillingEvent(handler, "", renewalBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, svc.calls, "no state is read before the secret check")
}

func TestHandleBillingEventRejectsWrongSecret(t *testing.T) {
	svc := &stubWebhookService{}
	handler := NewWebhookHandler(svc, "hook-secret")

	rec := postBillingEvent(handler, "Bearer wrong-secret", renewalBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, svc.calls)
}

func TestHandleBillingEventAcceptsValidEvent(t *testing.T) {
	svc := &stubWebhookService{}
	handler := NewWebhookHandler(svc, "hook-secret")

	rec := postBillingEvent(handler, "Bearer hook-secret", renewalBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, models.BillingEventRenewal, svc.last.Type)
	assert.Equal(t, "user-1", svc.last.AppUserID)
	assert.Equal(t, "tx-1", svc.last.TransactionID)
	assert.Equal(t, int64(1767225600000), svc.last.ExpirationAtMs)
}

func TestHandleBillingEventLookupMissReturns404(t *testing.T) {
	svc := &stubWebhookService{err: core.ErrOrderNotFound}
	handler := NewWebhookHandler(svc, "hook-secret")

	// Non-2xx makes the provider redeliver, covering events that race ahead
	// of the client's own order POST.
	rec := postBillingEvent(handler, "Bearer hook-secret", renewalBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleBillingEventMalformedBody(t *testing.T) {
	svc := &stubWebhookService{}
	handler := NewWebhookHandler(svc, "hook-secret")

	rec := postBillingEvent(handler, "Bearer hook-secret", `{"event":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.calls)
}
