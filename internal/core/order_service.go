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

// Custom errors for the OrderService.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrNoActiveSubscription = errors.New("no active subscription to cancel")
	ErrInvalidBillingCycle  = errors.New("invalid billing cycle")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// orderService implements the OrderService interface.
type orderService struct {
	orderRepo db.OrderRepository
	userRepo  db.UserRepository
	syncer    EntitlementSyncer
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(orderRepo db.OrderRepository, userRepo db.UserRepository, syncer EntitlementSyncer, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		syncer:    syncer,
		logger:    logger,
	}
}

// Status derives the user's current subscription state from the newest paid
// order. The cached User.IsSubscribed flag is refreshed from the result as a
// side effect; a failed refresh is logged, never fatal, because the
// projection itself is the source of truth.
func (s *orderService) Status(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	status := &SubscriptionStatus{}

	order, err := s.orderRepo.GetLatestPaidByUser(ctx, userID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to get latest paid order for user '%s': %w", userID, err)
	}
	if order != nil {
		status.IsSubscribed = order.IsActive && !order.Expired(time.Now().UTC())
		status.AutoRenew = order.AutoRenew
		endDate := order.EndDate
		status.SubscriptionEndDate = &endDate
	}

	s.refreshSubscribedFlag(ctx, userID, status.IsSubscribed)

	return status, nil
}

// UpsertPurchase records a purchase posted by the client after its billing
// SDK completed a transaction. An existing active+paid order is treated as a
// plan change or renewal and mutated in place; otherwise all active orders
// are deactivated and a new one is inserted. Immediately afterwards at most
// one order for the user is active.
func (s *orderService) UpsertPurchase(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	if !req.BillingCycle.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBillingCycle, req.BillingCycle)
	}
	if !req.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, req.PaymentStatus)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s' for purchase: %w", userID, err)
	}

	now := time.Now().UTC()
	paid := req.PaymentStatus == models.PaymentStatusPaid

	order, err := s.orderRepo.GetActivePaidByUser(ctx, userID)
	switch {
	case err == nil:
		// Plan change or renewal of the governing order.
		order.Plan = req.Plan
		order.Price = req.Price
		order.BillingCycle = req.BillingCycle
		order.PaymentStatus = req.PaymentStatus
		order.StartDate = req.StartDate
		order.EndDate = req.EndDate
		order.TransactionID = req.TransactionID
		order.EntitlementID = req.EntitlementID
		order.AutoRenew = req.AutoRenew
		order.IsActive = paid
		order.UpdatedAt = now
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to update order '%s': %w", order.ID, err)
		}
	case errors.Is(err, db.ErrNotFound):
		order = &models.Order{
			UserID:        userID,
			Plan:          req.Plan,
			Price:         req.Price,
			BillingCycle:  req.BillingCycle,
			PaymentStatus: req.PaymentStatus,
			StartDate:     req.StartDate,
			EndDate:       req.EndDate,
			TransactionID: req.TransactionID,
			EntitlementID: req.EntitlementID,
			AutoRenew:     req.AutoRenew,
			IsActive:      paid,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := s.orderRepo.ActivateExclusively(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to create order for user '%s': %w", userID, err)
		}
	default:
		return nil, fmt.Errorf("failed to look up active order for user '%s': %w", userID, err)
	}

	s.refreshSubscribedFlag(ctx, userID, paid && !order.Expired(now))
	s.syncAttributes(ctx, user.ID, order)

	return order, nil
}

// CancelLatest stops future renewal of the governing order. The current
// entitlement window is untouched: EndDate never moves, so access continues
// until expiry. If the order already expired, the user's cached subscribed
// flag is cleared immediately.
func (s *orderService) CancelLatest(ctx context.Context, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetActivePaidByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s'", ErrNoActiveSubscription, userID)
		}
		return nil, fmt.Errorf("failed to get active order for user '%s': %w", userID, err)
	}

	now := time.Now().UTC()
	order.AutoRenew = false
	order.CanceledAt = &now
	order.UpdatedAt = now
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to cancel order '%s': %w", order.ID, err)
	}

	if order.Expired(now) {
		s.refreshSubscribedFlag(ctx, userID, false)
	}
	s.syncAttributes(ctx, userID, order)

	return order, nil
}

// GetLatest returns the most-recently-created paid order regardless of active
// status. ErrOrderNotFound means the user never subscribed.
func (s *orderService) GetLatest(ctx context.Context, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetLatestPaidByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user '%s' has no paid orders", ErrOrderNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get latest order for user '%s': %w", userID, err)
	}
	return order, nil
}

// History returns all paid orders for the user, newest first.
func (s *orderService) History(ctx context.Context, userID string) ([]*models.Order, error) {
	orders, err := s.orderRepo.ListPaidByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user '%s': %w", userID, err)
	}
	return orders, nil
}

// refreshSubscribedFlag writes the projected boolean back onto the user
// record. Cache refresh only; failures are logged and swallowed.
func (s *orderService) refreshSubscribedFlag(ctx context.Context, userID string, subscribed bool) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("could not load user for subscribed-flag refresh", zap.String("userID", userID), zap.Error(err))
		return
	}
	if user.IsSubscribed == subscribed {
		return
	}

	user.IsSubscribed = subscribed
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("could not refresh subscribed flag", zap.String("userID", userID), zap.Error(err))
	}
}

// syncAttributes pushes the order state to the billing provider. Best-effort:
// the local mutation already committed and stays authoritative either way.
func (s *orderService) syncAttributes(ctx context.Context, userID string, order *models.Order) {
	if s.syncer == nil {
		return
	}
	attrs := map[string]string{
		"plan":           order.Plan,
		"billing_cycle":  string(order.BillingCycle),
		"payment_status": string(order.PaymentStatus),
	}
	if err := s.syncer.SyncSubscriberAttributes(ctx, userID, attrs); err != nil {
		s.logger.Warn("billing attribute sync failed", zap.String("userID", userID), zap.Error(err))
	}
}
