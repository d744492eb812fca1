package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const slugsCollection = "slugs"

type slugClaim struct {
	Scope     string    `firestore:"scope"`
	Slug      string    `firestore:"slug"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// firestoreSlugRegistry implements SlugRegistry with one document per claimed slug.
// DocumentRef.Create fails when the document exists, which makes Claim atomic.
type firestoreSlugRegistry struct {
	client *firestore.Client
}

// NewFirestoreSlugRegistry creates a new SlugRegistry backed by Firestore.
func NewFirestoreSlugRegistry(client *firestore.Client) SlugRegistry {
	return &firestoreSlugRegistry{client: client}
}

func slugDocID(scope, slug string) string {
	// Document IDs cannot contain '/'.
	return strings.ReplaceAll(scope, "/", "_") + ":" + slug
}

func (r *firestoreSlugRegistry) Claim(ctx context.Context, scope, slug string) error {
	ref := r.client.Collection(slugsCollection).Doc(slugDocID(scope, slug))
	_, err := ref.Create(ctx, slugClaim{Scope: scope, Slug: slug, CreatedAt: time.Now().UTC()})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("slug '%s' in '%s': %w", slug, scope, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to claim slug '%s' in '%s': %w", slug, scope, err)
	}
	return nil
}

func (r *firestoreSlugRegistry) Release(ctx context.Context, scope, slug string) error {
	_, err := r.client.Collection(slugsCollection).Doc(slugDocID(scope, slug)).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to release slug '%s' in '%s': %w", slug, scope, err)
	}
	return nil
}
