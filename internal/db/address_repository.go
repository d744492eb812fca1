package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-backend-go/internal/models"
)

const addressesCollection = "addresses"

type firestoreAddressRepository struct {
	client *firestore.Client
}

// NewFirestoreAddressRepository creates a new AddressRepository backed by Firestore.
func NewFirestoreAddressRepository(client *firestore.Client) AddressRepository {
	return &firestoreAddressRepository{client: client}
}

func decodeAddress(doc *firestore.DocumentSnapshot) (*models.Address, error) {
	var a models.Address
	if err := doc.DataTo(&a); err != nil {
		return nil, err
	}
	a.ID = doc.Ref.ID
	return &a, nil
}

func (r *firestoreAddressRepository) Create(ctx context.Context, addr *models.Address) (string, error) {
	docRef := r.client.Collection(addressesCollection).NewDoc()
	addr.ID = docRef.ID
	if _, err := docRef.Create(ctx, addr); err != nil {
		return "", fmt.Errorf("failed to create address: %w", err)
	}
	return docRef.ID, nil
}

func (r *firestoreAddressRepository) GetByID(ctx context.Context, id string) (*models.Address, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(addressesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("address '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get address '%s': %w", id, err)
	}
	return decodeAddress(docSnap)
}

func (r *firestoreAddressRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Address, error) {
	q := r.client.Collection(addressesCollection).Where("ownerId", "==", ownerID).OrderBy("createdAt", firestore.Asc)
	addrs, err := collect(q.Documents(ctx), decodeAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses of '%s': %w", ownerID, err)
	}
	return addrs, nil
}

func (r *firestoreAddressRepository) Update(ctx context.Context, addr *models.Address) error {
	if addr.ID == "" {
		return errors.New("address ID cannot be empty for Update operation")
	}
	if _, err := r.client.Collection(addressesCollection).Doc(addr.ID).Set(ctx, addr); err != nil {
		return fmt.Errorf("failed to update address '%s': %w", addr.ID, err)
	}
	return nil
}

func (r *firestoreAddressRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(addressesCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete address '%s': %w", id, err)
	}
	return nil
}

func (r *firestoreAddressRepository) SetDefault(ctx context.Context, ownerID, id string) error {
	refs, err := r.client.Collection(addressesCollection).Where("ownerId", "==", ownerID).Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to list addresses of '%s': %w", ownerID, err)
	}
	if len(refs) == 0 {
		return nil
	}
	batch := r.client.Batch()
	for _, snap := range refs {
		batch.Update(snap.Ref, []firestore.Update{{Path: "isDefault", Value: snap.Ref.ID == id}})
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to set default address '%s': %w", id, err)
	}
	return nil
}
