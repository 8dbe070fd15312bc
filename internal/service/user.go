package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/vietart/artmarket/internal/auth"
	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/telemetry"
)

// UserService implements domain.UserService: registration, login and the
// refresh-token lifecycle.
type UserService struct {
	users   domain.UserStore
	tokens  *auth.TokenManager
	logger  *slog.Logger
	metrics *telemetry.BusinessMetrics
}

var _ domain.UserService = (*UserService)(nil)

// NewUserService creates a new user service.
func NewUserService(users domain.UserStore, tokens *auth.TokenManager, logger *slog.Logger, metrics *telemetry.BusinessMetrics) *UserService {
	return &UserService{
		users:   users,
		tokens:  tokens,
		logger:  logger,
		metrics: metrics,
	}
}

// Register creates a new account and returns it with a fresh token pair.
// Self-registration always produces the user role; elevated roles are
// assigned by an admin.
func (s *UserService) Register(ctx context.Context, params domain.CreateUserParams) (*domain.AuthResult, error) {
	const op = "user.register"

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, domain.Invalid(op, "Invalid email address")
	}
	if params.FirstName == "" || params.LastName == "" {
		return nil, domain.Invalid(op, "First and last name are required")
	}
	if params.Role == "" {
		params.Role = domain.RoleUser
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, domain.Invalid(op, "Password must be at least 6 characters")
		}
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	user, err := s.users.Create(ctx, params, hash)
	if err != nil {
		return nil, err
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.Signups.WithLabelValues(string(user.Role)).Inc()
	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return result, nil
}

// Login verifies credentials and returns the user with a fresh token pair.
// A wrong password and an unknown email produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			s.metrics.LoginFailed.WithLabelValues("user_not_found").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		s.metrics.LoginFailed.WithLabelValues("invalid_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.Logins.WithLabelValues(string(user.Role)).Inc()
	s.logger.Info("user logged in", "user_id", user.ID)
	return result, nil
}

// Refresh exchanges a stored refresh token for a new access token. The
// refresh token must verify and still be present in the store; revoked
// tokens fail even before they expire.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	identity, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	stored, err := s.users.HasRefreshToken(ctx, identity.UserID, refreshToken)
	if err != nil {
		return "", err
	}
	if !stored {
		return "", domain.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return "", err
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", domain.Internal(err, "user.refresh", "failed to sign access token")
	}
	return access, nil
}

// Logout revokes a refresh token. Revoking an unknown token succeeds.
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	return s.users.DeleteRefreshToken(ctx, userID, refreshToken)
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns users with pagination.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.users.List(ctx, page, limit)
}

func (s *UserService) issueTokens(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	const op = "user.issue_tokens"

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to sign access token")
	}
	refresh, expiresAt, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to sign refresh token")
	}
	if err := s.users.SaveRefreshToken(ctx, user.ID, refresh, expiresAt); err != nil {
		return nil, err
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
