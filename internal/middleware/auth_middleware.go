package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/pkg/apperrors"
	"github.com/yigit/escola/internal/pkg/session"
)

const (
	// AccountKey is the gin context key of the logged-in *models.Account
	AccountKey = "account"

	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

// AccountResolver loads the account behind a session
type AccountResolver interface {
	ActiveAccount(ctx context.Context, id int64) (*models.Account, error)
}

// AuthMiddleware gates routes on a valid session
type AuthMiddleware struct {
	sessions *session.Manager
	accounts AccountResolver
	logger   zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions *session.Manager, accounts AccountResolver, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		accounts: accounts,
		logger:   logger,
	}
}

// loadAccount resolves the session account. A stale session (deleted or disabled account) is cleared.
func (m *AuthMiddleware) loadAccount(c *gin.Context) (*models.Account, bool) {
	id, ok := m.sessions.AccountID(c.Request)
	if !ok {
		return nil, false
	}

	account, err := m.accounts.ActiveAccount(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) && !errors.Is(err, apperrors.ErrAccountDisabled) {
			m.logger.Error().Err(err).Int64("accountID", id).Msg("Failed to load session account")
		}
		if err := m.sessions.Logout(c.Writer, c.Request); err != nil {
			m.logger.Error().Err(err).Int64("accountID", id).Msg("Failed to clear stale session")
		}
		return nil, false
	}
	return account, true
}

// LoginRequired redirects anonymous requests to the login page, keeping the original target in next
func (m *AuthMiddleware) LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := m.loadAccount(c)
		if !ok {
			if err := m.sessions.AddFlash(c.Writer, c.Request, session.FlashInfo, "Por favor, faça login para acessar esta página."); err != nil {
				m.logger.Error().Err(err).Msg("Failed to store flash message")
			}
			target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Set(AccountKey, account)
		c.Next()
	}
}

// GuestOnly sends logged-in users away from the login and register pages
func (m *AuthMiddleware) GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.loadAccount(c); ok {
			c.Redirect(http.StatusFound, DashboardPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the account set by LoginRequired
func CurrentAccount(c *gin.Context) *models.Account {
	if v, ok := c.Get(AccountKey); ok {
		if account, ok := v.(*models.Account); ok {
			return account
		}
	}
	return nil
}

// SafeNext returns next when it is a local path, otherwise the dashboard
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return DashboardPath
	}
	return next
}
