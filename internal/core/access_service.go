package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
)

// Permission strings granted by roles.
const (
	PermRead         = "read"
	PermCreate       = "create"
	PermUpdate       = "update"
	PermDelete       = "delete"
	PermOrdersRead   = "orders:read"
	PermOrdersUpdate = "orders:update"
)

// userService implements the UserService interface.
type userService struct {
	userRepo    db.UserRepository
	roleRepo    db.RoleRepository
	defaultRole string
	logger      *zap.Logger
}

// NewUserService creates a new UserService instance. New users get defaultRole.
func NewUserService(userRepo db.UserRepository, roleRepo db.RoleRepository, defaultRole string, logger *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		defaultRole: defaultRole,
		logger:      logger,
	}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one.
// Returns the user, a boolean indicating if the user was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName string) (*models.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	now := time.Now().UTC()
	newUser := &models.User{
		ID:          userID,
		Email:       email,
		DisplayName: displayName,
		Role:        s.defaultRole,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, err)
	}
	s.logger.Info("created user profile", zap.String("userID", userID), zap.String("role", newUser.Role))
	return newUser, true, nil
}

// Session returns the caller's profile, creating it on first sign-in, and the permissions of their role.
func (s *userService) Session(ctx context.Context, userID, email, displayName string) (*models.Session, error) {
	user, _, err := s.GetOrCreate(ctx, userID, email, displayName)
	if err != nil {
		return nil, err
	}
	role, err := s.role(ctx, user.Role)
	if err != nil {
		return nil, err
	}
	perms := role.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &models.Session{User: user, Permissions: perms}, nil
}

// Require checks perm against the caller's role. A caller without a profile has the default role.
func (s *userService) Require(ctx context.Context, userID, perm string) error {
	roleID := s.defaultRole
	user, err := s.userRepo.GetByID(ctx, userID)
	switch {
	case err == nil:
		roleID = user.Role
	case !errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	role, err := s.role(ctx, roleID)
	if err != nil {
		return err
	}
	if !role.Has(perm) {
		return fmt.Errorf("%w: role '%s' lacks '%s'", ErrPermissionDenied, roleID, perm)
	}
	return nil
}

// role loads a role. An unknown role grants nothing.
func (s *userService) role(ctx context.Context, roleID string) (*models.Role, error) {
	if roleID == "" {
		return &models.Role{}, nil
	}
	role, err := s.roleRepo.GetByID(ctx, roleID)
	if errors.Is(err, db.ErrNotFound) {
		s.logger.Warn("user references an unknown role", zap.String("role", roleID))
		return &models.Role{ID: roleID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role '%s': %w", roleID, err)
	}
	return role, nil
}

// SeedRoles creates the given roles when they do not exist yet and returns how many were written.
func (s *userService) SeedRoles(ctx context.Context, roles []models.Role) (int, error) {
	created := 0
	for i := range roles {
		if roles[i].ID == "" {
			return created, fmt.Errorf("%w: role at index %d has no id", ErrInvalidInput, i)
		}
		wrote, err := s.roleRepo.CreateIfMissing(ctx, &roles[i])
		if err != nil {
			return created, fmt.Errorf("failed to seed role '%s': %w", roles[i].ID, err)
		}
		if wrote {
			created++
		}
	}
	return created, nil
}
