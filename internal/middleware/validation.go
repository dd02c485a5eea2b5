package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/pkg/apperrors"
)

// BindForm binds the urlencoded or multipart form into obj.
// Field rules are checked later by the services; here only malformed values fail.
func BindForm(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		if IsBodyTooLarge(err) {
			return err
		}
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "Dados do formulário inválidos.")
	}
	return nil
}

// ReadUpload reads an optional uploaded file. A missing field yields nil.
func ReadUpload(c *gin.Context, field string) (*dto.PhotoUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if header.Filename == "" {
		return nil, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &dto.PhotoUpload{Filename: header.Filename, Data: data}, nil
}

// IsBodyTooLarge reports whether err came from a body over the upload limit
func IsBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
