package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/pkg/session"
)

// TooLargeMessage is the flash shown when a form body exceeds limit bytes
func TooLargeMessage(limit int64) string {
	return fmt.Sprintf("Arquivo muito grande. O tamanho máximo permitido é %d MB.", limit>>20)
}

// BodyLimit caps request bodies at limit bytes. Requests that announce a larger body are
// sent back to the form with a flash; chunked bodies fail later with *http.MaxBytesError.
func BodyLimit(limit int64, sessions *session.Manager, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			if err := sessions.AddFlash(c.Writer, c.Request, session.FlashDanger, TooLargeMessage(limit)); err != nil {
				logger.Error().Err(err).Msg("Failed to store flash message")
			}
			c.Redirect(http.StatusFound, c.Request.URL.Path)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
