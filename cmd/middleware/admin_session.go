package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cafeDesk/internal/dto"
	"cafeDesk/internal/session"
)

// SessionKey is the gin context key the admin session is stored under.
const SessionKey = "admin_session"

// AdminSession rejects requests without a live admin session cookie. The
// session is attached to the request context for the handlers.
func AdminSession(store session.Store, log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil || token == "" {
			dto.UnauthorizedError(c)
			c.Abort()
			return
		}

		sess, err := store.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error().Err(err).Msg("failed to load admin session")
			}
			dto.UnauthorizedError(c)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Set(SessionKey, sess)
		c.Next()
	}
}
