package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-backend-go/internal/config"
)

// ErrNotFound is returned by every repository when the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrAlreadyExists is returned when an atomic create collides with an existing document.
var ErrAlreadyExists = errors.New("document already exists")

// ErrInsufficientStock is returned by order transactions when a product cannot cover a line.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidCursor is returned when a list startAfter ID names no document.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// firestoreInLimit is the maximum number of values a Firestore "in" filter accepts
// in the SDK version this service was written against.
const firestoreInLimit = 10

var (
	fsClient     *firestore.Client
	fbAuthClient *auth.Client
)

// InitFirestore initializes the Firebase Admin SDK and sets up the Firestore and Auth clients.
func InitFirestore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) error {
	if appConfig == nil {
		return fmt.Errorf("InitFirestore: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("credentials file does not exist, falling back to ADC lookup",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return fmt.Errorf("failed to decode FirebaseServiceAccountJSONBase64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	default:
		logger.Info("initializing Firebase with Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: appConfig.FirebaseProjectID}, opts...)
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}

	authCl, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("app.Auth: %w", err)
	}

	fsClient = client
	fbAuthClient = authCl
	logger.Info("Firestore and Firebase Auth clients initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return nil
}

// GetFirestoreClient returns the global Firestore client, nil before InitFirestore succeeds.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// GetFirebaseAuthClient returns the global Firebase Auth client, nil before InitFirestore succeeds.
func GetFirebaseAuthClient() *auth.Client {
	return fbAuthClient
}

// CloseFirestore releases the global Firestore client.
func CloseFirestore() error {
	if fsClient != nil {
		return fsClient.Close()
	}
	return nil
}

// paginate applies the limit/startAfter convention shared by list endpoints.
// startAfter is a document ID in coll; an ID that does not exist yields ErrInvalidCursor.
func paginate(ctx context.Context, coll *firestore.CollectionRef, q firestore.Query, limit int, startAfter string) (firestore.Query, error) {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if startAfter == "" {
		return q, nil
	}
	snap, err := coll.Doc(startAfter).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return q, fmt.Errorf("startAfter '%s': %w", startAfter, ErrInvalidCursor)
		}
		return q, fmt.Errorf("failed to resolve startAfter '%s': %w", startAfter, err)
	}
	return q.StartAfter(snap), nil
}

// collect drains a document iterator, decoding each snapshot with decode.
func collect[T any](iter *firestore.DocumentIterator, decode func(*firestore.DocumentSnapshot) (*T, error)) ([]*T, error) {
	defer iter.Stop()
	out := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode document '%s': %w", doc.Ref.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// chunk splits ids into slices no longer than size.
func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
