package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/app/repositories"
	"github.com/yigit/escola/internal/pkg/apperrors"
	"github.com/yigit/escola/internal/pkg/auth"
	"github.com/yigit/escola/internal/pkg/validation"
)

// AuthService handles authentication operations
type AuthService struct {
	accountRepo repositories.IAccountRepository
	hasher      *auth.Hasher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(accountRepo repositories.IAccountRepository, hasher *auth.Hasher, logger zerolog.Logger) *AuthService {
	if hasher == nil {
		hasher = auth.NewHasher()
	}
	return &AuthService{
		accountRepo: accountRepo,
		hasher:      hasher,
		logger:      logger,
		now:         time.Now,
	}
}

// Login verifies the credentials and records the login time
func (s *AuthService) Login(ctx context.Context, form dto.LoginForm) (*models.Account, error) {
	form.Username = strings.TrimSpace(form.Username)
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByUsername(ctx, form.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Info().Str("username", form.Username).Str("outcome", "unknown_user").Msg("Login failed")
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Usuário ou senha inválidos.")
		}
		return nil, fmt.Errorf("error looking up account: %w", err)
	}

	if !s.hasher.Check(account.PasswordHash, form.Password) {
		s.logger.Info().Str("username", form.Username).Str("outcome", "wrong_password").Msg("Login failed")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Usuário ou senha inválidos.")
	}

	// only reported once the password matched
	if !account.IsActive {
		s.logger.Info().Str("username", form.Username).Str("outcome", "disabled").Msg("Login failed")
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "Sua conta está desativada. Contate o administrador.")
	}

	now := s.now()
	if err := s.accountRepo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("error updating last login: %w", err)
	}
	account.LastLoginAt = &now

	s.logger.Info().Int64("accountID", account.ID).Str("username", account.Username).Msg("Login succeeded")
	return account, nil
}

// Register creates a new active account
func (s *AuthService) Register(ctx context.Context, form dto.RegisterForm) (*models.Account, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	form.FullName = strings.TrimSpace(form.FullName)

	if form.Username == "" || form.Email == "" || form.Password == "" || form.PasswordConfirm == "" {
		return nil, apperrors.NewValidationError("Todos os campos são obrigatórios.")
	}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	if form.Password != form.PasswordConfirm {
		return nil, apperrors.NewCustomError(apperrors.ErrPasswordMismatch, "As senhas não coincidem.")
	}

	exists, err := s.accountRepo.UsernameExists(ctx, form.Username)
	if err != nil {
		return nil, fmt.Errorf("error checking if username exists: %w", err)
	}
	if exists {
		return nil, apperrors.NewCustomError(apperrors.ErrDuplicateUsername, "Nome de usuário já existe.")
	}

	exists, err = s.accountRepo.EmailExists(ctx, form.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.NewCustomError(apperrors.ErrDuplicateEmail, "Email já cadastrado.")
	}

	return s.create(ctx, form.Username, form.Email, form.FullName, form.Password)
}

func (s *AuthService) create(ctx context.Context, username, email, fullName, password string) (*models.Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		// lost a race with a concurrent registration
		switch {
		case errors.Is(err, apperrors.ErrDuplicateUsername):
			return nil, apperrors.NewCustomError(err, "Nome de usuário já existe.")
		case errors.Is(err, apperrors.ErrDuplicateEmail):
			return nil, apperrors.NewCustomError(err, "Email já cadastrado.")
		}
		return nil, fmt.Errorf("account creation error: %w", err)
	}

	s.logger.Info().Int64("accountID", account.ID).Str("username", account.Username).Msg("Account registered")
	return account, nil
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, accountID int64, form dto.ChangePasswordForm) error {
	if err := validation.Struct(form); err != nil {
		return err
	}
	if form.NewPassword != form.PasswordConfirm {
		return apperrors.NewCustomError(apperrors.ErrPasswordMismatch, "As senhas não coincidem.")
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("error loading account: %w", err)
	}
	if !s.hasher.Check(account.PasswordHash, form.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Senha atual incorreta.")
	}

	hash, err := s.hasher.Hash(form.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.accountRepo.UpdatePassword(ctx, accountID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	s.logger.Info().Int64("accountID", accountID).Msg("Password changed")
	return nil
}

// ActiveAccount resolves the session identity; disabled or deleted accounts are rejected
func (s *AuthService) ActiveAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	return account, nil
}

// CreateAdmin creates the bootstrap administrator. An existing username is left untouched.
func (s *AuthService) CreateAdmin(ctx context.Context, username, email, fullName, password string) (*models.Account, bool, error) {
	existing, err := s.accountRepo.GetByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, false, fmt.Errorf("error looking up admin: %w", err)
	}
	if password == "" {
		return nil, false, apperrors.NewValidationError("Senha é obrigatório.")
	}

	account, err := s.create(ctx, username, email, fullName, password)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}
