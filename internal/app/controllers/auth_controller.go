package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/app/services"
	"github.com/yigit/escola/internal/middleware"
	"github.com/yigit/escola/internal/pkg/session"
)

// AuthController handles login, logout, registration and password changes
type AuthController struct {
	pages
	authService *services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, sessions *session.Manager, logger zerolog.Logger) *AuthController {
	return &AuthController{
		pages:       newPages(sessions, 0, logger),
		authService: authService,
	}
}

// ShowLogin renders the login form
func (c *AuthController) ShowLogin(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "auth/login.html", gin.H{
		"Title": "Login",
		"Next":  ctx.Query("next"),
	})
}

// Login authenticates the account and starts the session
func (c *AuthController) Login(ctx *gin.Context) {
	next := ctx.PostForm("next")
	if next == "" {
		next = ctx.Query("next")
	}
	back := middleware.LoginPath
	if next != "" {
		back += "?next=" + url.QueryEscape(next)
	}

	var form dto.LoginForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.fail(ctx, err, back)
		return
	}

	account, err := c.authService.Login(ctx.Request.Context(), form)
	if err != nil {
		c.fail(ctx, err, back)
		return
	}

	if err := c.sessions.Login(ctx.Writer, ctx.Request, account.ID, form.RememberMe()); err != nil {
		c.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Failed to start session")
		c.redirect(ctx, back, session.FlashDanger, "Erro ao processar login. Tente novamente.")
		return
	}

	c.redirect(ctx, middleware.SafeNext(next), session.FlashSuccess, "Bem-vindo, "+account.DisplayName()+"!")
}

// Logout ends the session
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.sessions.Logout(ctx.Writer, ctx.Request); err != nil {
		c.logger.Error().Err(err).Msg("Failed to clear session")
	}
	c.redirect(ctx, middleware.LoginPath, session.FlashInfo, "Você saiu do sistema.")
}

// ShowRegister renders the registration form
func (c *AuthController) ShowRegister(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "auth/register.html", gin.H{"Title": "Criar conta"})
}

// Register creates a new account
func (c *AuthController) Register(ctx *gin.Context) {
	var form dto.RegisterForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.fail(ctx, err, "/auth/register")
		return
	}

	if _, err := c.authService.Register(ctx.Request.Context(), form); err != nil {
		c.fail(ctx, err, "/auth/register")
		return
	}

	c.redirect(ctx, middleware.LoginPath, session.FlashSuccess, "Conta criada com sucesso! Faça login.")
}

// ShowChangePassword renders the change password form
func (c *AuthController) ShowChangePassword(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "auth/password.html", gin.H{"Title": "Alterar senha"})
}

// ChangePassword replaces the password of the logged-in account
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	account := middleware.CurrentAccount(ctx)
	if account == nil {
		ctx.Redirect(http.StatusFound, middleware.LoginPath)
		return
	}

	var form dto.ChangePasswordForm
	if err := middleware.BindForm(ctx, &form); err != nil {
		c.fail(ctx, err, "/auth/password")
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), account.ID, form); err != nil {
		c.fail(ctx, err, "/auth/password")
		return
	}

	c.redirect(ctx, middleware.DashboardPath, session.FlashSuccess, "Senha alterada com sucesso!")
}
