package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"

	"cafeDesk/internal/apperr"
	"cafeDesk/internal/dto"
	"cafeDesk/internal/model"
	"cafeDesk/internal/repo"
	"cafeDesk/pkg/validator"
)

// GetTerms serves the active terms to the registration page.
func (s *service) GetTerms(c *ginext.Context) {
	s.activeTerms(c)
}

func (s *service) GetAdminTerms(c *ginext.Context) {
	s.activeTerms(c, noticeTermsLoadFailed)
}

func (s *service) activeTerms(c *ginext.Context, onError ...dto.Notice) {
	terms, err := s.repo.GetActiveTerms(c.Request.Context())
	if err != nil {
		if errors.Is(err, repo.ErrTermsNotFound) {
			dto.ErrorResponse(c, http.StatusNotFound, dto.TermsNotFound, "No active terms and agreements")
			return
		}
		s.log.Error().Err(err).Msg("failed to get active terms")
		dto.InternalServerError(c, onError...)
		return
	}
	dto.SuccessResponse(c, terms)
}

func (s *service) TermsHistory(c *ginext.Context) {
	terms, err := s.repo.ListTerms(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list terms")
		dto.InternalServerError(c, noticeTermsLoadFailed)
		return
	}
	dto.SuccessResponse(c, terms)
}

func (s *service) SaveTerms(c *ginext.Context) {
	const op = "service.SaveTerms"

	var req dto.TermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.log.Warn().Err(err).Msg("failed to parse terms request")
		dto.FieldBadFormatError(c, "Invalid JSON format")
		return
	}
	if err := validator.Validate(c.Request.Context(), req); err != nil {
		dto.AppError(c, apperr.Validation(op, err), "")
		return
	}

	terms := &model.TermsAgreement{
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Version: strings.TrimSpace(req.Version),
	}
	if err := s.repo.SaveTerms(c.Request.Context(), terms); err != nil {
		s.log.Error().Err(err).Msg("failed to save terms")
		dto.AppError(c, apperr.Gateway(op, err), "", noticeTermsSaveFailed)
		return
	}

	s.log.Info().Str("terms_id", terms.ID).Str("version", terms.Version).Msg("terms saved")
	dto.SuccessResponse(c, terms, noticeTermsSaved)
}
