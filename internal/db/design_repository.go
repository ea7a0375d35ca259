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

const designsCollection = "designs"

// firestoreDesignRepository implements the DesignRepository interface using Firestore.
type firestoreDesignRepository struct {
	client *firestore.Client
}

// NewFirestoreDesignRepository creates a new instance of firestoreDesignRepository.
func NewFirestoreDesignRepository(client *firestore.Client) DesignRepository {
	return &firestoreDesignRepository{client: client}
}

// Create adds a new design document with an auto-generated ID and sets design.ID.
func (r *firestoreDesignRepository) Create(ctx context.Context, design *models.Design) (string, error) {
	docRef := r.client.Collection(designsCollection).NewDoc()
	design.ID = docRef.ID

	if _, err := docRef.Create(ctx, design); err != nil {
		return "", fmt.Errorf("failed to create design: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a design document by its ID.
func (r *firestoreDesignRepository) GetByID(ctx context.Context, designID string) (*models.Design, error) {
	if designID == "" {
		return nil, errors.New("designID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(designsCollection).Doc(designID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("design with ID '%s' not found: %w", designID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get design with ID '%s': %w", designID, err)
	}

	var design models.Design
	if err := docSnap.DataTo(&design); err != nil {
		return nil, fmt.Errorf("failed to decode design data for ID '%s': %w", designID, err)
	}
	design.ID = docSnap.Ref.ID

	return &design, nil
}

// ListByUser retrieves a page of the user's designs, newest first.
func (r *firestoreDesignRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Design, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}

	iter := r.client.Collection(designsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var designs []*models.Design
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate designs for user '%s': %w", userID, err)
		}

		var design models.Design
		if err := doc.DataTo(&design); err != nil {
			return nil, fmt.Errorf("failed to decode design data (ID: %s): %w", doc.Ref.ID, err)
		}
		design.ID = doc.Ref.ID
		designs = append(designs, &design)
	}
	return designs, nil
}

// CountByUser counts the user's designs. Counts stay small per user, so
// iterating snapshots is acceptable here.
func (r *firestoreDesignRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty for CountByUser operation")
	}

	iter := r.client.Collection(designsCollection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to iterate designs for counting (user '%s'): %w", userID, err)
		}
		count++
	}
	return count, nil
}

// Delete removes a design document.
func (r *firestoreDesignRepository) Delete(ctx context.Context, designID string) error {
	if designID == "" {
		return errors.New("designID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(designsCollection).Doc(designID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("design with ID '%s' not found for deletion: %w", designID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete design with ID '%s': %w", designID, err)
	}
	return nil
}
