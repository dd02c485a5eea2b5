package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/pkg/apperrors"
)

func registerForm(username, email, password string) dto.RegisterForm {
	return dto.RegisterForm{
		Username:        username,
		Email:           email,
		FullName:        "Maria Admin",
		Password:        password,
		PasswordConfirm: password,
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.auth.Register(ctx, registerForm("maria", "maria@escola.com", "s3cret!"))
	require.NoError(t, err)
	assert.True(t, account.IsActive)
	assert.NotEqual(t, "s3cret!", account.PasswordHash)

	got, err := f.auth.Login(ctx, dto.LoginForm{Username: " maria ", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	require.NotNil(t, f.store.Accounts[account.ID].LastLoginAt)
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.auth.Register(ctx, registerForm("joao", "joao@escola.com", "correct"))
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, dto.LoginForm{Username: "joao", Password: "wrong"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
	assert.Nil(t, f.store.Accounts[account.ID].LastLoginAt)

	_, err = f.auth.Login(ctx, dto.LoginForm{Username: "nobody", Password: "correct"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	f.store.Accounts[account.ID].IsActive = false

	_, err = f.auth.Login(ctx, dto.LoginForm{Username: "joao", Password: "correct"})
	assert.True(t, errors.Is(err, apperrors.ErrAccountDisabled))

	// a disabled account with a wrong password does not reveal its state
	_, err = f.auth.Login(ctx, dto.LoginForm{Username: "joao", Password: "wrong"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.auth.Register(ctx, registerForm("taken", "taken@escola.com", "pw"))
	require.NoError(t, err)

	mismatch := registerForm("ana", "ana@escola.com", "pw")
	mismatch.PasswordConfirm = "other"

	tests := []struct {
		name string
		form dto.RegisterForm
		want error
	}{
		{"missing field", dto.RegisterForm{Username: "ana", Password: "pw", PasswordConfirm: "pw"}, apperrors.ErrValidationFailed},
		{"bad email", registerForm("ana", "not-an-email", "pw"), apperrors.ErrValidationFailed},
		{"password mismatch", mismatch, apperrors.ErrPasswordMismatch},
		{"duplicate username", registerForm("taken", "other@escola.com", "pw"), apperrors.ErrDuplicateUsername},
		{"duplicate email", registerForm("ana", "taken@escola.com", "pw"), apperrors.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.form)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			_, hasMessage := apperrors.UserMessage(err)
			assert.True(t, hasMessage)
		})
	}

	assert.Len(t, f.store.Accounts, 1)
	assert.True(t, errors.Is(apperrors.ErrDuplicateEmail, apperrors.ErrDuplicateKey))
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	account, err := f.auth.Register(ctx, registerForm("rui", "rui@escola.com", "old"))
	require.NoError(t, err)

	err = f.auth.ChangePassword(ctx, account.ID, dto.ChangePasswordForm{CurrentPassword: "bad", NewPassword: "new", PasswordConfirm: "new"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	err = f.auth.ChangePassword(ctx, account.ID, dto.ChangePasswordForm{CurrentPassword: "old", NewPassword: "new", PasswordConfirm: "nope"})
	assert.True(t, errors.Is(err, apperrors.ErrPasswordMismatch))

	require.NoError(t, f.auth.ChangePassword(ctx, account.ID, dto.ChangePasswordForm{CurrentPassword: "old", NewPassword: "new", PasswordConfirm: "new"}))

	_, err = f.auth.Login(ctx, dto.LoginForm{Username: "rui", Password: "new"})
	assert.NoError(t, err)
}

func TestAuthService_ActiveAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	account, err := f.auth.Register(ctx, registerForm("lia", "lia@escola.com", "pw"))
	require.NoError(t, err)

	_, err = f.auth.ActiveAccount(ctx, account.ID)
	assert.NoError(t, err)

	f.store.Accounts[account.ID].IsActive = false
	_, err = f.auth.ActiveAccount(ctx, account.ID)
	assert.True(t, errors.Is(err, apperrors.ErrAccountDisabled))

	_, err = f.auth.ActiveAccount(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestAuthService_CreateAdminIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, created, err := f.auth.CreateAdmin(ctx, "admin", "admin@escola.com", "Administrador", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := f.auth.CreateAdmin(ctx, "admin", "admin@escola.com", "Administrador", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.store.Accounts, 1)
}
