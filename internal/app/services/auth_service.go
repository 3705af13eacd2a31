package services

import (
	"context"
	"time"

	"github.com/scedev/parkpermit/internal/app/models"
	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
	"github.com/scedev/parkpermit/internal/pkg/auth"
	"github.com/scedev/parkpermit/internal/pkg/logger"
)

// credentialStore is the slice of the user repository the auth flow needs.
type credentialStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// refreshTokenStore persists and revokes refresh tokens.
type refreshTokenStore interface {
	Store(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	Lookup(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	users      credentialStore
	tokens     refreshTokenStore
	jwtService *auth.JWTService
}

// NewAuthService creates a new auth service instance
func NewAuthService(users credentialStore, tokens refreshTokenStore, jwtService *auth.JWTService) AuthService {
	return &authServiceImpl{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
	}
}

// Login verifies credentials and issues a token pair. A missing account and
// a wrong password answer identically so login probing learns nothing.
func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		logger.Warn().Str("email", req.Email).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	tokenResp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("username", user.Username).Msg("User logged in")
	return &dto.AuthResponse{
		Token: *tokenResp,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsAdmin:  user.IsAdmin,
		},
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued, so a stolen token is only good once.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, err := s.tokens.Lookup(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token. The access token simply ages
// out of its short expiry.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Store(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(expiresIn),
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: int64(refreshExpiresIn),
	}, nil
}
