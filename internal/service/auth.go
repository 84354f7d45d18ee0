package service

import (
	"errors"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"golang.org/x/crypto/bcrypt"

	"cafeDesk/internal/apperr"
	"cafeDesk/internal/dto"
	"cafeDesk/internal/session"
	"cafeDesk/pkg/validator"
)

func (s *service) Login(c *ginext.Context) {
	const op = "service.Login"

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FieldBadFormatError(c, "Invalid JSON format")
		return
	}
	if err := validator.Validate(c.Request.Context(), req); err != nil {
		dto.AppError(c, apperr.Validation(op, err), "")
		return
	}

	if !s.passwordMatches(req.Password) {
		s.log.Warn().Str("ip", c.ClientIP()).Msg("admin login rejected")
		dto.AppError(c, apperr.Unauthorized(op, "Invalid password"), dto.InvalidCredentials)
		return
	}

	sess, err := s.sessions.Create(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create admin session")
		dto.InternalServerError(c)
		return
	}

	s.setSessionCookie(c, sess.Token, int(s.settings.SessionTTL.Seconds()))
	s.log.Info().Str("ip", c.ClientIP()).Msg("admin logged in")
	dto.SuccessResponse(c, dto.AdminSessionResponse{AdminLoggedIn: true, ExpiresAt: &sess.ExpiresAt})
}

func (s *service) passwordMatches(password string) bool {
	if s.settings.AdminPasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.settings.AdminPasswordHash), []byte(password)) == nil
}

func (s *service) Logout(c *ginext.Context) {
	if token, err := c.Cookie(session.CookieName); err == nil {
		if err := s.sessions.Delete(c.Request.Context(), token); err != nil {
			s.log.Error().Err(err).Msg("failed to delete admin session")
		}
	}
	s.setSessionCookie(c, "", -1)
	dto.SuccessResponse(c, dto.AdminSessionResponse{AdminLoggedIn: false}, noticeLoggedOut)
}

// SessionStatus reports whether the request carries a live admin session.
func (s *service) SessionStatus(c *ginext.Context) {
	token, err := c.Cookie(session.CookieName)
	if err != nil {
		dto.SuccessResponse(c, dto.AdminSessionResponse{AdminLoggedIn: false})
		return
	}

	sess, err := s.sessions.Get(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			dto.SuccessResponse(c, dto.AdminSessionResponse{AdminLoggedIn: false})
			return
		}
		s.log.Error().Err(err).Msg("failed to load admin session")
		dto.InternalServerError(c)
		return
	}
	dto.SuccessResponse(c, dto.AdminSessionResponse{AdminLoggedIn: true, ExpiresAt: &sess.ExpiresAt})
}

func (s *service) setSessionCookie(c *ginext.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, maxAge, "/", "", s.settings.SecureCookie, true)
}
