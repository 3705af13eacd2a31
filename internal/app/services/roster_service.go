package services

import (
	"context"
	"strings"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
	"github.com/scedev/parkpermit/internal/pkg/auth"
	"github.com/scedev/parkpermit/internal/pkg/email"
	"github.com/scedev/parkpermit/internal/pkg/logger"
	"github.com/scedev/parkpermit/internal/pkg/validation"
)

// userStore is the slice of the user repository the service needs.
type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateFields(ctx context.Context, username string, email *string, isAdmin *bool) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// RosterService defines the interface for user account management
type RosterService interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, username string, req dto.UpdateUserRequest) (*models.User, error)
	PromoteUser(ctx context.Context, username string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// rosterServiceImpl implements the RosterService interface
type rosterServiceImpl struct {
	users    userStore
	notifier email.NotificationService
}

// NewRosterService creates a new roster service instance
func NewRosterService(users userStore, notifier email.NotificationService) RosterService {
	return &rosterServiceImpl{
		users:    users,
		notifier: notifier,
	}
}

// CreateUser registers a new account with a hashed password. New accounts
// never start as administrators; promotion is a separate, audited step.
func (s *rosterServiceImpl) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, apperrors.NewValidationError("username is required")
	}
	if result := validation.ValidateCampusEmail(req.Email); !result.Valid {
		return nil, apperrors.NewValidationError(result.Message)
	}
	if len(req.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		IsAdmin:  false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// A failed welcome mail never fails the registration.
	if err := s.notifier.SendWelcomeEmail(user.Email, user.Username); err != nil {
		logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send welcome email")
	}

	logger.Info().Str("username", user.Username).Msg("User created")
	return user, nil
}

// ListUsers returns every account.
func (s *rosterServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.GetAll(ctx)
}

// GetUser returns a single account by username.
func (s *rosterServiceImpl) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// UpdateUser patches an account. Fields absent from the request are left
// untouched.
func (s *rosterServiceImpl) UpdateUser(ctx context.Context, username string, req dto.UpdateUserRequest) (*models.User, error) {
	if req.Email == nil && req.IsAdmin == nil {
		return nil, apperrors.NewValidationError("nothing to update")
	}
	if req.Email != nil {
		if result := validation.ValidateCampusEmail(*req.Email); !result.Valid {
			return nil, apperrors.NewValidationError(result.Message)
		}
	}

	user, err := s.users.UpdateFields(ctx, username, req.Email, req.IsAdmin)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("username", username).Msg("User updated")
	return user, nil
}

// PromoteUser grants administrator rights. Promoting an account that is
// already an administrator is a no-op, not an error.
func (s *rosterServiceImpl) PromoteUser(ctx context.Context, username string) (*models.User, error) {
	isAdmin := true
	user, err := s.users.UpdateFields(ctx, username, nil, &isAdmin)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("username", username).Msg("User promoted to administrator")
	return user, nil
}

// DeleteUser removes an account by its numeric ID.
func (s *rosterServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info().Int64("userID", id).Msg("User deleted")
	return nil
}
