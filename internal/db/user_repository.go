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

const (
	usersCollection = "users"
	rolesCollection = "roles"
)

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

// Create adds a new user document keyed by the Firebase Auth UID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s': %w", user.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user document by its Firebase Auth UID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}

type firestoreRoleRepository struct {
	client *firestore.Client
}

// NewFirestoreRoleRepository creates a new RoleRepository backed by Firestore.
func NewFirestoreRoleRepository(client *firestore.Client) RoleRepository {
	return &firestoreRoleRepository{client: client}
}

func (r *firestoreRoleRepository) GetByID(ctx context.Context, roleID string) (*models.Role, error) {
	if roleID == "" {
		return nil, errors.New("roleID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(rolesCollection).Doc(roleID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("role '%s' not found: %w", roleID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get role '%s': %w", roleID, err)
	}
	var role models.Role
	if err := docSnap.DataTo(&role); err != nil {
		return nil, fmt.Errorf("failed to decode role '%s': %w", roleID, err)
	}
	role.ID = docSnap.Ref.ID
	return &role, nil
}

func (r *firestoreRoleRepository) CreateIfMissing(ctx context.Context, role *models.Role) (bool, error) {
	_, err := r.client.Collection(rolesCollection).Doc(role.ID).Create(ctx, role)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, fmt.Errorf("failed to create role '%s': %w", role.ID, err)
	}
	return true, nil
}
