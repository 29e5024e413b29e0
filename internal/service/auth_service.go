package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/debtor-registry/internal/auth"
	"github.com/spec-kit/debtor-registry/internal/config"
	"github.com/spec-kit/debtor-registry/internal/domain"
	"github.com/spec-kit/debtor-registry/internal/repository"
	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Username        string
	Name            string
	Surname         string
	Age             int
	Email           string
	Password        string
	TelegramAccount string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account and logs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	if input.Age <= domain.MinimumAge {
		return nil, "", time.Time{}, apperrors.NewValidationError("you must be over 18", map[string]any{"age": input.Age})
	}
	if len(input.Password) < 8 {
		return nil, "", time.Time{}, apperrors.NewValidationError("password must contain at least 8 characters", nil)
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("username already taken", map[string]any{"username": input.Username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Username:        strings.TrimSpace(input.Username),
		Name:            strings.TrimSpace(input.Name),
		Surname:         strings.TrimSpace(input.Surname),
		Age:             input.Age,
		Email:           strings.TrimSpace(input.Email),
		PasswordHash:    hash,
		TelegramAccount: strings.TrimSpace(input.TelegramAccount),
		IsActive:        true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, subjectFor(user))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates by username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewForbidden("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, subjectFor(user))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout currently no-ops for the stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must contain at least 8 characters", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// UpdateTelegram replaces the user's telegram handle.
func (s *AuthService) UpdateTelegram(ctx context.Context, userID, telegram string) (*domain.User, error) {
	if strings.TrimSpace(telegram) == "" {
		return nil, apperrors.NewValidationError("telegram field cannot be empty", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user.TelegramAccount = strings.TrimSpace(telegram)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateFullName replaces name and surname together.
func (s *AuthService) UpdateFullName(ctx context.Context, userID, name, surname string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(surname) == "" {
		return nil, apperrors.NewValidationError("name and surname cannot be empty", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Name = strings.TrimSpace(name)
	user.Surname = strings.TrimSpace(surname)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateEmail replaces the email after a uniqueness check.
func (s *AuthService) UpdateEmail(ctx context.Context, userID, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email field cannot be empty", nil)
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != userID {
		return nil, apperrors.NewConflict("email already registered by another user", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func subjectFor(user *domain.User) domain.SubjectType {
	if user.IsStaff {
		return domain.SubjectTypeOperator
	}
	return domain.SubjectTypeUser
}
