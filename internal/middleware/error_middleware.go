package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/pkg/apperrors"
)

// HandleAPIError maps an error kind to a status and a JSON error body
func HandleAPIError(c *gin.Context, err error) {
	status, detail := apiError(err)
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Field != "" {
		detail = detail.WithField(ce.Field)
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func apiError(err error) (int, *dto.ErrorDetail) {
	msg, hasMessage := apperrors.UserMessage(err)
	pick := func(fallback string) string {
		if hasMessage {
			return msg
		}
		return fallback
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, pick("Registro não encontrado."))
	case errors.Is(err, apperrors.ErrOwnerNotFound):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeOwnerNotFound, pick("Aluno não encontrado."))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, pick("Usuário ou senha inválidos."))
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, pick("Conta desativada."))
	case errors.Is(err, apperrors.ErrInvalidDate):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidDate, pick("Data inválida."))
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, pick("Dados inválidos."))
	case errors.Is(err, apperrors.ErrDuplicateKey):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, pick("Registro já existe."))
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, dto.NewErrorDetail(dto.ErrorCodeRequestTooLarge, "Requisição muito grande.")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Erro interno do servidor.")
	}
}
