package db

import (
	"context"

	"github.com/decorly/decorly-backend/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (string, error) // returns new user ID
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// OrderRepository defines the interface for entitlement-record storage.
// Orders are append-mostly: created on purchase, mutated by renewal and
// cancellation events, never deleted.
type OrderRepository interface {
	// ActivateExclusively deactivates every currently-active order of
	// order.UserID and inserts the given order, atomically. It is how the
	// "at most one active order per user" invariant is enforced at the
	// storage level.
	ActivateExclusively(ctx context.Context, order *models.Order) (string, error)
	Create(ctx context.Context, order *models.Order) (string, error)
	Update(ctx context.Context, order *models.Order) error
	GetActivePaidByUser(ctx context.Context, userID string) (*models.Order, error)
	GetLatestPaidByUser(ctx context.Context, userID string) (*models.Order, error)
	ListPaidByUser(ctx context.Context, userID string) ([]*models.Order, error) // newest first
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Order, error)
}

// DesignRepository defines the interface for design (generation) storage.
type DesignRepository interface {
	Create(ctx context.Context, design *models.Design) (string, error)
	GetByID(ctx context.Context, designID string) (*models.Design, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Design, error) // newest first
	CountByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, designID string) error
}
