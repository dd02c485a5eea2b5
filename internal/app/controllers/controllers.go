// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/middleware"
	"github.com/yigit/escola/internal/pkg/apperrors"
	"github.com/yigit/escola/internal/pkg/session"
)

const genericFailure = "Ocorreu um erro inesperado. Tente novamente."

// pages holds what every HTML controller needs to render and redirect
type pages struct {
	sessions    *session.Manager
	uploadLimit int64
	logger      zerolog.Logger
}

func newPages(sessions *session.Manager, uploadLimit int64, logger zerolog.Logger) pages {
	return pages{sessions: sessions, uploadLimit: uploadLimit, logger: logger}
}

// render adds the current account and the pending flashes to data and renders the page
func (p pages) render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Active"]; !ok {
		data["Active"] = ""
	}
	data["Account"] = middleware.CurrentAccount(ctx)
	flashes, err := p.sessions.Flashes(ctx.Writer, ctx.Request)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to clear flash messages")
	}
	data["Flashes"] = flashes
	ctx.HTML(status, name, data)
}

func (p pages) flash(ctx *gin.Context, category, message string) {
	if err := p.sessions.AddFlash(ctx.Writer, ctx.Request, category, message); err != nil {
		p.logger.Error().Err(err).Msg("Failed to store flash message")
	}
}

// redirect queues a flash message and sends the browser to location
func (p pages) redirect(ctx *gin.Context, location, category, message string) {
	p.flash(ctx, category, message)
	ctx.Redirect(http.StatusFound, location)
}

// fail reports a failed form submission. Expected errors go back to the form as a flash,
// a missing record renders the not-found page.
func (p pages) fail(ctx *gin.Context, err error, back string) {
	switch {
	case middleware.IsBodyTooLarge(err):
		msg := "Requisição muito grande."
		if p.uploadLimit > 0 {
			msg = middleware.TooLargeMessage(p.uploadLimit)
		}
		p.redirect(ctx, back, session.FlashDanger, msg)
	case errors.Is(err, apperrors.ErrResourceNotFound):
		p.notFound(ctx)
	default:
		if msg, ok := apperrors.UserMessage(err); ok {
			p.redirect(ctx, back, session.FlashDanger, msg)
			return
		}
		p.logger.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("Request failed")
		p.redirect(ctx, back, session.FlashDanger, genericFailure)
	}
}

// failPage handles errors of GET pages
func (p pages) failPage(ctx *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		p.notFound(ctx)
		return
	}
	p.logger.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("Failed to render page")
	p.render(ctx, http.StatusInternalServerError, "errors/500.html", gin.H{"Title": "Erro"})
}

func (p pages) notFound(ctx *gin.Context) {
	p.render(ctx, http.StatusNotFound, "errors/404.html", gin.H{"Title": "Página não encontrada"})
}

// NotFound is the router fallback for unknown paths
func (p pages) NotFound(ctx *gin.Context) {
	p.notFound(ctx)
}

// parseIDParam parses a positive id from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
