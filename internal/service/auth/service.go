package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vollmed/clinic-api/internal/model"
	"github.com/vollmed/clinic-api/internal/repository"
	"github.com/vollmed/clinic-api/pkg/auth"
	apperrors "github.com/vollmed/clinic-api/pkg/errors"
)

const bcryptCost = 12

type Service struct {
	users  repository.UserRepository
	jwtSvc auth.JWTService
	logger zerolog.Logger
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, logger zerolog.Logger) *Service {
	return &Service{users: users, jwtSvc: jwtSvc, logger: logger}
}

// Login verifies credentials and issues a token pair. The error never
// reveals whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("email", email).Msg("failed login attempt")
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return tokens, nil
}

// Register creates an API user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	if existing, _ := s.users.GetByEmail(ctx, email); existing != nil {
		return nil, apperrors.Validation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// RefreshToken exchanges a valid refresh token for a fresh token pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return tokens, nil
}

// ValidateToken checks an access token and returns its claims.
func (s *Service) ValidateToken(_ context.Context, token string) (*auth.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return claims, nil
}

func (s *Service) generateTokens(user *model.User) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
