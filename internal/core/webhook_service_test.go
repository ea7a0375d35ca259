package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/decorly/decorly-backend/internal/models"
)

func seedWebhookFixture(t *testing.T) (*fakeUserRepo, *fakeOrderRepo, *models.User, *models.Order) {
	t.Helper()
	userRepo := newFakeUserRepo()
	orderRepo := newFakeOrderRepo()
	user := userRepo.add(&models.User{Email: "ada@example.com", IsSubscribed: true})
	order := orderRepo.add(&models.Order{
		UserID:        user.ID,
		TransactionID: "tx-1",
		PaymentStatus: models.PaymentStatusPaid,
		IsActive:      true,
		AutoRenew:     true,
		EndDate:       time.Now().Add(24 * time.Hour),
		CreatedAt:     time.Now().Add(-6 * 24 * time.Hour),
	})
	return userRepo, orderRepo, user, order
}

func TestHandleEventRenewalExtendsEntitlement(t *testing.T) {
	userRepo, orderRepo, user, order := seedWebhookFixture(t)
	svc := NewWebhookService(orderRepo, userRepo, zap.NewNop())

	newEnd := time.Now().Add(14 * 24 * time.Hour).Truncate(time.Millisecond)
	err := svc.HandleEvent(context.Background(), models.BillingEvent{
		Type:           models.BillingEventRenewal,
		AppUserID:      user.ID,
		TransactionID:  "tx-1",
		ExpirationAtMs: newEnd.UnixMilli(),
	})
	require.NoError(t, err)

	stored, err := orderRepo.GetByTransactionID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.True(t, stored.EndDate.Equal(newEnd.UTC()))
	assert.True(t, stored.IsActive)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, order.ID, stored.ID)

	storedUser, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, storedUser.IsSubscribed)
}

func TestHandleEventRenewalWithoutExpiry(t *testing.T) {
	userRepo, orderRepo, user, _ := seedWebhookFixture(t)
	svc := NewWebhookService(orderRepo, userRepo, zap.NewNop())

	err := svc.HandleEvent(context.Background(), models.BillingEvent{
		Type:          models.BillingEventRenewal,
		AppUserID:     user.ID,
		TransactionID: "tx-1",
	})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestHandleEventCancellation(t *testing.T) {
	userRepo, orderRepo, user, _ := seedWebhookFixture(t)
	svc := NewWebhookService(orderRepo, userRepo, zap.NewNop())

	err := svc.HandleEvent(context.Background(), models.BillingEvent{
		Type:          models.BillingEventCancellation,
		AppUserID:     user.ID,
		TransactionID: "tx-1",
	})
	require.NoError(t, err)

	stored, err := orderRepo.GetByTransactionID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.False(t, stored.AutoRenew)
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.CanceledAt)

	storedUser, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, storedUser.IsSubscribed)
}

func TestHandleEventExpiration(t *testing.T) {
	userRepo, orderRepo, user, _ := seedWebhookFixture(t)
	svc := NewWebhookService(orderRepo, userRepo, zap.NewNop())

	err := svc.HandleEvent(context.Background(), models.BillingEvent{
		Type:          models.BillingEventExpiration,
		AppUserID:     user.ID,
		TransactionID: "tx-1",
	})
	require.NoError(t, err)

	stored, err := orderRepo.GetByTransactionID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.True(t, stored.AutoRenew, "expiration does not rewrite the renewal preference")

	storedUser, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, storedUser.IsSubscribed)
}

func TestHandleEventUnknownTypeIsAcknowledged(t *testing.T) {
	userRepo, orderRepo, user, order := seedWebhookFixture(t)
	svc := NewWebhookService(orderRepo, userRepo, zap.NewNop())

	err := svc.HandleEvent(context.Background(), models.BillingEvent{
		Type:          "BILLING_ISSUE",
		AppUserID:     user.ID,
		TransactionID: "tx-1",
	})
	assert.NoError(t, err)

	// Nothing was touched.
	stored, err := orderRepo.GetByTransactionID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, order.IsActive, stored.IsActive)
	assert.Equal(t, order.AutoRenew, stored.AutoRenew)
}

func TestHandleEventUnknownUserOrTransaction(t *testing.T) {
	userRepo, orderRepo, user, order := seedWebhookFixture(t)
	svc := NewWebhookService(orderRepo, userRepo, zap.NewNop())

	err := svc.HandleEvent(context.Background(), models.BillingEvent{
		Type:          models.BillingEventCancellation,
		AppUserID:     "ghost",
		TransactionID: "tx-1",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.HandleEvent(context.Background(), models.BillingEvent{
		Type:          models.BillingEventCancellation,
		AppUserID:     user.ID,
		TransactionID: "tx-unknown",
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// A failed lookup never mutates state.
	stored, lookupErr := orderRepo.GetByTransactionID(context.Background(), "tx-1")
	require.NoError(t, lookupErr)
	assert.Equal(t, order.IsActive, stored.IsActive)
	assert.Equal(t, order.AutoRenew, stored.AutoRenew)
	assert.Nil(t, stored.CanceledAt)
}
