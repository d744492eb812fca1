package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-backend-go/internal/models"
)

// maxBatchWrites is Firestore's per-batch write limit.
const maxBatchWrites = 500

// firestoreCartRepository implements CartRepository on users/{uid}/{cart|favorites}/{uniqueID}.
type firestoreCartRepository struct {
	client *firestore.Client
}

// NewFirestoreCartRepository creates a new CartRepository backed by Firestore.
func NewFirestoreCartRepository(client *firestore.Client) CartRepository {
	return &firestoreCartRepository{client: client}
}

func (r *firestoreCartRepository) coll(userID string, list CartList) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(string(list))
}

func decodeCartItem(doc *firestore.DocumentSnapshot) (*models.CartItem, error) {
	var item models.CartItem
	if err := doc.DataTo(&item); err != nil {
		return nil, err
	}
	if item.UniqueID == "" {
		item.UniqueID = doc.Ref.ID
	}
	return &item, nil
}

func (r *firestoreCartRepository) Get(ctx context.Context, userID string, list CartList, uniqueID string) (*models.CartItem, error) {
	docSnap, err := r.coll(userID, list).Doc(uniqueID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s item '%s' not found: %w", list, uniqueID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s item '%s': %w", list, uniqueID, err)
	}
	return decodeCartItem(docSnap)
}

func (r *firestoreCartRepository) List(ctx context.Context, userID string, list CartList) ([]*models.CartItem, error) {
	items, err := collect(r.coll(userID, list).Documents(ctx), decodeCartItem)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s of user '%s': %w", list, userID, err)
	}
	return items, nil
}

func (r *firestoreCartRepository) Put(ctx context.Context, userID string, list CartList, item *models.CartItem) error {
	if _, err := r.coll(userID, list).Doc(item.UniqueID).Set(ctx, item); err != nil {
		return fmt.Errorf("failed to write %s item '%s': %w", list, item.UniqueID, err)
	}
	return nil
}

func (r *firestoreCartRepository) Delete(ctx context.Context, userID string, list CartList, uniqueID string) error {
	ref := r.coll(userID, list).Doc(uniqueID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s item '%s' not found: %w", list, uniqueID, ErrNotFound)
		}
		return fmt.Errorf("failed to get %s item '%s': %w", list, uniqueID, err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s item '%s': %w", list, uniqueID, err)
	}
	return nil
}

// Clear deletes every document of the list with batched writes.
func (r *firestoreCartRepository) Clear(ctx context.Context, userID string, list CartList) error {
	refs, err := r.coll(userID, list).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to list %s of user '%s' for clearing: %w", list, userID, err)
	}
	for start := 0; start < len(refs); start += maxBatchWrites {
		end := min(start+maxBatchWrites, len(refs))
		batch := r.client.Batch()
		for _, ref := range refs[start:end] {
			batch.Delete(ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("failed to clear %s of user '%s': %w", list, userID, err)
		}
	}
	return nil
}
