package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sikontrak/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose body exceeds maxBytes. Invoice and
// payment payloads are small JSON documents, so [http].max_body_size can
// stay tight without affecting legitimate clients.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				"REQUEST_TOO_LARGE",
				"Request body exceeds the configured size limit",
				getRequestIDFromContext(c),
			))
			return
		}

		// The declared Content-Length can lie; cap the reader as well so
		// streamed bodies hit the same limit.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
