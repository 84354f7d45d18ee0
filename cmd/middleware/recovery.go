package middleware

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cafeDesk/internal/dto"
)

// Recovery turns a panicking handler into a 500 in the usual error envelope.
func Recovery(log *zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("handler panicked")
		dto.InternalServerError(c)
		c.Abort()
	})
}

// StaticContent sets headers that stop browsers from sniffing served uploads
// or running them as documents.
func StaticContent() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'none'; img-src 'self'; sandbox")
		c.Next()
	}
}
