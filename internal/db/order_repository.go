package db

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-backend-go/internal/models"
)

const ordersCollection = "orders"

type firestoreOrderRepository struct {
	client *firestore.Client
}

// NewFirestoreOrderRepository creates a new OrderRepository backed by Firestore.
func NewFirestoreOrderRepository(client *firestore.Client) OrderRepository {
	return &firestoreOrderRepository{client: client}
}

func decodeOrder(doc *firestore.DocumentSnapshot) (*models.Order, error) {
	var o models.Order
	if err := doc.DataTo(&o); err != nil {
		return nil, err
	}
	o.ID = doc.Ref.ID
	return &o, nil
}

func (r *firestoreOrderRepository) stockUpdate(delta int) []firestore.Update {
	return []firestore.Update{
		{Path: "stockQuantity", Value: firestore.Increment(delta)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
}

// Place checks and decrements stock for every line, then creates the order, in one transaction.
func (r *firestoreOrderRepository) Place(ctx context.Context, order *models.Order) (string, error) {
	orderRef := r.client.Collection(ordersCollection).NewDoc()
	products := r.client.Collection(productsCollection)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		refs := make([]*firestore.DocumentRef, len(order.Items))
		for i, line := range order.Items {
			refs[i] = products.Doc(line.UniqueID)
		}
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		for i, snap := range snaps {
			line := order.Items[i]
			if !snap.Exists() {
				return fmt.Errorf("product '%s' not found: %w", line.UniqueID, ErrNotFound)
			}
			p, err := decodeProduct(snap)
			if err != nil {
				return err
			}
			if p.StockQuantity < line.Qty {
				return fmt.Errorf("product '%s' has %d left, %d requested: %w", line.UniqueID, p.StockQuantity, line.Qty, ErrInsufficientStock)
			}
		}
		for i, line := range order.Items {
			if err := tx.Update(refs[i], r.stockUpdate(-line.Qty)); err != nil {
				return err
			}
		}
		return tx.Create(orderRef, order)
	})
	if err != nil {
		return "", fmt.Errorf("failed to place order: %w", err)
	}
	order.ID = orderRef.ID
	return orderRef.ID, nil
}

func (r *firestoreOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	docSnap, err := r.client.Collection(ordersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("order '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order '%s': %w", id, err)
	}
	return decodeOrder(docSnap)
}

func (r *firestoreOrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Order, error) {
	q := r.client.Collection(ordersCollection).Where("ownerId", "==", ownerID).OrderBy("createdAt", firestore.Desc)
	orders, err := collect(q.Documents(ctx), decodeOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of '%s': %w", ownerID, err)
	}
	return orders, nil
}

func (r *firestoreOrderRepository) List(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	coll := r.client.Collection(ordersCollection)
	q := coll.Query
	if filter.Status != "" {
		q = q.Where("orderStatus", "==", string(filter.Status))
	}
	q, err := paginate(ctx, coll, q.OrderBy("createdAt", firestore.Desc), filter.Limit, filter.StartAfter)
	if err != nil {
		return nil, err
	}
	orders, err := collect(q.Documents(ctx), decodeOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *firestoreOrderRepository) Transition(ctx context.Context, id string, mutate func(*models.Order) error) (*models.Order, error) {
	ref := r.client.Collection(ordersCollection).Doc(id)
	products := r.client.Collection(productsCollection)

	var result *models.Order
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("order '%s' not found: %w", id, ErrNotFound)
			}
			return err
		}
		order, err := decodeOrder(snap)
		if err != nil {
			return err
		}
		previous := order.OrderStatus
		if err := mutate(order); err != nil {
			return err
		}
		order.UpdatedAt = time.Now().UTC()

		if order.OrderStatus == models.OrderCancelled && previous != models.OrderCancelled {
			for _, line := range order.Items {
				if err := tx.Update(products.Doc(line.UniqueID), r.stockUpdate(line.Qty)); err != nil {
					return err
				}
			}
		}
		if err := tx.Set(ref, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update order '%s': %w", id, err)
	}
	return result, nil
}
