package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/decorly/decorly-backend/internal/models"
)

const ordersCollection = "orders"

// firestoreOrderRepository implements the OrderRepository interface using Firestore.
type firestoreOrderRepository struct {
	client *firestore.Client
}

// NewFirestoreOrderRepository creates a new instance of firestoreOrderRepository.
func NewFirestoreOrderRepository(client *firestore.Client) OrderRepository {
	return &firestoreOrderRepository{client: client}
}

// ActivateExclusively flips every active order of order.UserID to inactive and
// creates the given order, in a single transaction. Concurrent purchases for
// the same user serialize on the transaction, so the "at most one active
// order" invariant holds even under races.
func (r *firestoreOrderRepository) ActivateExclusively(ctx context.Context, order *models.Order) (string, error) {
	if order.UserID == "" {
		return "", errors.New("order.UserID cannot be empty for ActivateExclusively operation")
	}

	docRef := r.client.Collection(ordersCollection).NewDoc()
	order.ID = docRef.ID

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := r.client.Collection(ordersCollection).
			Where("userId", "==", order.UserID).
			Where("isActive", "==", true)

		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return fmt.Errorf("failed to read active orders for user '%s': %w", order.UserID, err)
		}
		for _, doc := range docs {
			if err := tx.Update(doc.Ref, []firestore.Update{{Path: "isActive", Value: false}}); err != nil {
				return fmt.Errorf("failed to deactivate order '%s': %w", doc.Ref.ID, err)
			}
		}
		return tx.Create(docRef, order)
	})
	if err != nil {
		return "", fmt.Errorf("failed to activate order for user '%s': %w", order.UserID, err)
	}
	return docRef.ID, nil
}

// Create adds a new order document with an auto-generated ID and sets order.ID.
func (r *firestoreOrderRepository) Create(ctx context.Context, order *models.Order) (string, error) {
	docRef := r.client.Collection(ordersCollection).NewDoc()
	order.ID = docRef.ID

	if _, err := docRef.Create(ctx, order); err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	return docRef.ID, nil
}

// Update overwrites an existing order document.
func (r *firestoreOrderRepository) Update(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		return errors.New("order ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(ordersCollection).Doc(order.ID).Set(ctx, order)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("order with ID '%s' not found for update: %w", order.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update order with ID '%s': %w", order.ID, err)
	}
	return nil
}

// GetActivePaidByUser returns the newest order for the user that is both
// active and paid, or ErrNotFound.
func (r *firestoreOrderRepository) GetActivePaidByUser(ctx context.Context, userID string) (*models.Order, error) {
	query := r.client.Collection(ordersCollection).
		Where("userId", "==", userID).
		Where("isActive", "==", true).
		Where("paymentStatus", "==", string(models.PaymentStatusPaid)).
		OrderBy("createdAt", firestore.Desc).
		Limit(1)
	return r.queryOne(ctx, userID, query)
}

// GetLatestPaidByUser returns the most-recently-created paid order regardless
// of active status, or ErrNotFound. Absence means "never subscribed".
func (r *firestoreOrderRepository) GetLatestPaidByUser(ctx context.Context, userID string) (*models.Order, error) {
	query := r.client.Collection(ordersCollection).
		Where("userId", "==", userID).
		Where("paymentStatus", "==", string(models.PaymentStatusPaid)).
		OrderBy("createdAt", firestore.Desc).
		Limit(1)
	return r.queryOne(ctx, userID, query)
}

// ListPaidByUser returns all paid orders for the user, newest first.
func (r *firestoreOrderRepository) ListPaidByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListPaidByUser operation")
	}

	iter := r.client.Collection(ordersCollection).
		Where("userId", "==", userID).
		Where("paymentStatus", "==", string(models.PaymentStatusPaid)).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var orders []*models.Order
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate orders for user '%s': %w", userID, err)
		}

		var order models.Order
		if err := doc.DataTo(&order); err != nil {
			return nil, fmt.Errorf("failed to decode order data (ID: %s): %w", doc.Ref.ID, err)
		}
		order.ID = doc.Ref.ID
		orders = append(orders, &order)
	}
	return orders, nil
}

// GetByTransactionID locates an order by the billing provider's transaction
// id, or ErrNotFound. Webhook events reference orders this way.
func (r *firestoreOrderRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	if transactionID == "" {
		return nil, errors.New("transactionID cannot be empty for GetByTransactionID operation")
	}
	query := r.client.Collection(ordersCollection).
		Where("transactionId", "==", transactionID).
		Limit(1)
	return r.queryOne(ctx, transactionID, query)
}

func (r *firestoreOrderRepository) queryOne(ctx context.Context, key string, query firestore.Query) (*models.Order, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no matching order for '%s': %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order for '%s': %w", key, err)
	}

	var order models.Order
	if err := doc.DataTo(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order data (ID: %s): %w", doc.Ref.ID, err)
	}
	order.ID = doc.Ref.ID
	return &order, nil
}
