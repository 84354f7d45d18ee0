package service

import (
	"context"
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

// GetEvent serves the public event details. It never fails: a missing or
// unreadable configuration falls back to the defaults.
func (s *service) GetEvent(c *ginext.Context) {
	dto.SuccessResponse(c, s.eventDetails(c.Request.Context()))
}

func (s *service) eventDetails(ctx context.Context) model.EventDetails {
	cfg, err := s.repo.GetCurrentEventConfig(ctx)
	if err != nil {
		if !errors.Is(err, repo.ErrEventConfigNotFound) {
			s.log.Warn().Err(err).Msg("failed to load event config, serving defaults")
		}
		cfg = nil
	}
	return model.NewEventDetails(model.WithDefaults(cfg))
}

func (s *service) GetEventConfig(c *ginext.Context) {
	cfg, err := s.repo.GetActiveEventConfig(c.Request.Context())
	if err != nil {
		if errors.Is(err, repo.ErrEventConfigNotFound) {
			dto.ErrorResponse(c, http.StatusNotFound, dto.ConfigNotFound, "No active event configuration")
			return
		}
		s.log.Error().Err(err).Msg("failed to get active event config")
		dto.InternalServerError(c, noticeConfigLoadFailed)
		return
	}
	dto.SuccessResponse(c, cfg)
}

func (s *service) SaveEventConfig(c *ginext.Context) {
	const op = "service.SaveEventConfig"

	var req dto.EventConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.log.Warn().Err(err).Msg("failed to parse event config request")
		dto.FieldBadFormatError(c, "Invalid JSON format")
		return
	}

	cfg, err := s.saveEventConfig(c.Request.Context(), req)
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			dto.AppError(c, err, "")
			return
		}
		s.log.Error().Err(err).Str("op", op).Msg("failed to save event config")
		dto.AppError(c, err, "", noticeConfigSaveFailed)
		return
	}

	s.log.Info().Str("config_id", cfg.ID).Msg("event config saved")
	notices := []dto.Notice{noticeConfigSaved}
	if fields := zeroFields(cfg); len(fields) > 0 {
		notices = append(notices, defaultsAppliedNotice(fields))
	}
	dto.SuccessResponse(c, cfg, notices...)
}

// zeroFields lists the numeric fields the public page replaces with defaults.
func zeroFields(cfg *model.EventConfig) []string {
	var fields []string
	if cfg.MinParticipants == 0 {
		fields = append(fields, "minimum participants")
	}
	if cfg.MaxParticipants == 0 {
		fields = append(fields, "maximum participants")
	}
	if cfg.PricePerPerson == 0 {
		fields = append(fields, "price")
	}
	if cfg.DownPaymentPercentage == 0 {
		fields = append(fields, "down payment percentage")
	}
	return fields
}

func (s *service) saveEventConfig(ctx context.Context, req dto.EventConfigRequest) (*model.EventConfig, error) {
	const op = "service.saveEventConfig"

	if err := validator.Validate(ctx, req); err != nil {
		return nil, apperr.Validation(op, err)
	}

	cfg := &model.EventConfig{
		ID:                    req.ID,
		Title:                 strings.TrimSpace(req.Title),
		Description:           strings.TrimSpace(req.Description),
		EventDate:             strings.TrimSpace(req.EventDate),
		StartTime:             strings.TrimSpace(req.StartTime),
		EndTime:               strings.TrimSpace(req.EndTime),
		MinParticipants:       req.MinParticipants,
		MaxParticipants:       req.MaxParticipants,
		PricePerPerson:        req.PricePerPerson,
		DownPaymentPercentage: req.DownPaymentPercentage,
		FeaturedCoffees:       model.StringPtr(strings.TrimSpace(req.FeaturedCoffees)),
		AdditionalInfo:        model.StringPtr(strings.TrimSpace(req.AdditionalInfo)),
	}

	if err := s.repo.SaveEventConfig(ctx, cfg); err != nil {
		return nil, apperr.Gateway(op, err)
	}
	return cfg, nil
}
