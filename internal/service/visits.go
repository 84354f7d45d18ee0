package service

import (
	"strings"

	"github.com/wb-go/wbf/ginext"

	"cafeDesk/internal/dto"
	"cafeDesk/internal/model"
)

const defaultVisitedPage = "/coffee-tasting"

// RecordVisit logs a page view. It always answers 202; a failed insert is
// only logged so analytics never break the page.
func (s *service) RecordVisit(c *ginext.Context) {
	var req dto.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.log.Debug().Err(err).Msg("visit without a readable body")
	}

	visit := &model.VisitorVisit{
		PageVisited: strings.TrimSpace(req.PageVisited),
		SessionID:   model.StringPtr(req.SessionID),
		UserAgent:   model.StringPtr(req.UserAgent),
		Referrer:    model.StringPtr(req.Referrer),
		IPAddress:   model.StringPtr(c.ClientIP()),
	}
	if visit.PageVisited == "" {
		visit.PageVisited = defaultVisitedPage
	}
	if visit.UserAgent == nil {
		visit.UserAgent = model.StringPtr(c.Request.UserAgent())
	}

	recorded := true
	if err := s.repo.CreateVisit(c.Request.Context(), visit); err != nil {
		s.log.Warn().Err(err).Str("page", visit.PageVisited).Msg("failed to record visit")
		recorded = false
	}
	dto.AcceptedResponse(c, dto.VisitResponse{Recorded: recorded})
}
