package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/pkg/apperrors"
	"github.com/yigit/escola/internal/pkg/dberrors"
	"github.com/yigit/escola/internal/pkg/logger"
)

// ErrAccountNotFound is returned when no account matches
var ErrAccountNotFound = fmt.Errorf("%w: account", apperrors.ErrResourceNotFound)

// AccountRepository handles account database operations
type AccountRepository struct {
	db Querier
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db Querier) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

const accountColumns = `id, username, email, password_hash, COALESCE(full_name, ''), is_active, last_login_at, created_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.FullName, &account.IsActive, &account.LastLoginAt, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("error scanning account: %w", err)
	}
	return account, nil
}

// Create inserts the account and fills ID and CreatedAt
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, full_name, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id, created_at`,
		account.Username, account.Email, account.PasswordHash, account.FullName, account.IsActive,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "accounts_username_key"):
			return apperrors.ErrDuplicateUsername
		case dberrors.IsDuplicateConstraintError(err, "accounts_email_key"):
			return apperrors.ErrDuplicateEmail
		}
		logger.Error().Err(err).Str("username", account.Username).Msg("Error creating account")
		return fmt.Errorf("error creating account: %w", err)
	}

	logger.Info().Int64("accountID", account.ID).Str("username", account.Username).Msg("Account created")
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
}

// UsernameExists checks if a username is already registered
func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking username: %w", err)
	}
	return exists, nil
}

// EmailExists checks if an email is already registered
func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stores the time of the latest successful login
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET last_login_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
