package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/decorly/decorly-backend/internal/db"
	"github.com/decorly/decorly-backend/internal/models"
)

// ErrInvalidEvent is returned for a recognized event carrying an unusable
// payload (e.g. a renewal without an expiry timestamp).
var ErrInvalidEvent = errors.New("invalid billing event payload")

// webhookService implements the WebhookService interface. Events arrive from
// the billing provider, not the client, and are the authoritative word on
// renewals, cancellations and expirations. A lookup miss must surface as an
// error so the provider retries instead of silently dropping the event;
// dropped events cause entitlement drift.
type webhookService struct {
	orderRepo db.OrderRepository
	userRepo  db.UserRepository
	logger    *zap.Logger
}

// NewWebhookService creates a new WebhookService instance.
func NewWebhookService(orderRepo db.OrderRepository, userRepo db.UserRepository, logger *zap.Logger) WebhookService {
	return &webhookService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// HandleEvent applies one billing-provider event to the entitlement store.
// Unrecognized event types are logged and acknowledged without touching
// state.
func (s *webhookService) HandleEvent(ctx context.Context, event models.BillingEvent) error {
	if !event.Type.Known() {
		s.logger.Info("ignoring unhandled billing event type",
			zap.String("type", string(event.Type)),
			zap.String("appUserID", event.AppUserID))
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, event.AppUserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: app user '%s'", ErrUserNotFound, event.AppUserID)
		}
		return fmt.Errorf("failed to get user '%s' for billing event: %w", event.AppUserID, err)
	}

	order, err := s.orderRepo.GetByTransactionID(ctx, event.TransactionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: transaction '%s'", ErrOrderNotFound, event.TransactionID)
		}
		return fmt.Errorf("failed to get order for transaction '%s': %w", event.TransactionID, err)
	}

	now := time.Now().UTC()

	switch event.Type {
	case models.BillingEventRenewal:
		if event.ExpirationAtMs <= 0 {
			return fmt.Errorf("%w: renewal without expiration_at_ms", ErrInvalidEvent)
		}
		order.EndDate = time.UnixMilli(event.ExpirationAtMs).UTC()
		order.IsActive = true
		order.PaymentStatus = models.PaymentStatusPaid
		order.UpdatedAt = now
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return fmt.Errorf("failed to apply renewal to order '%s': %w", order.ID, err)
		}
		return s.setSubscribed(ctx, user, true)

	case models.BillingEventCancellation:
		order.AutoRenew = false
		order.CanceledAt = &now
		order.IsActive = false
		order.UpdatedAt = now
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return fmt.Errorf("failed to apply cancellation to order '%s': %w", order.ID, err)
		}
		return s.setSubscribed(ctx, user, false)

	case models.BillingEventExpiration:
		order.IsActive = false
		order.UpdatedAt = now
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return fmt.Errorf("failed to apply expiration to order '%s': %w", order.ID, err)
		}
		return s.setSubscribed(ctx, user, false)
	}

	// Unreachable: Known() admits exactly the cases above.
	return nil
}

func (s *webhookService) setSubscribed(ctx context.Context, user *models.User, subscribed bool) error {
	if user.IsSubscribed == subscribed {
		return nil
	}
	user.IsSubscribed = subscribed
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update subscribed flag for user '%s': %w", user.ID, err)
	}
	return nil
}
