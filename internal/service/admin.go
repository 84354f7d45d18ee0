package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/wb-go/wbf/ginext"

	"cafeDesk/internal/analytics"
	"cafeDesk/internal/apperr"
	"cafeDesk/internal/csvexport"
	"cafeDesk/internal/dto"
	"cafeDesk/internal/model"
	"cafeDesk/internal/repo"
)

// Stats reports the dashboard counters. A counter that cannot be read is
// logged and reported as zero.
func (s *service) Stats(c *ginext.Context) {
	ctx := c.Request.Context()
	today := s.now().UTC().Truncate(24 * time.Hour)

	stats := model.DashboardStats{
		TotalVisitors:     s.count(ctx, "total_visitors", func(ctx context.Context) (int, error) { return s.repo.CountVisits(ctx, time.Time{}) }),
		TodayVisitors:     s.count(ctx, "today_visitors", func(ctx context.Context) (int, error) { return s.repo.CountVisits(ctx, today) }),
		TotalParticipants: s.count(ctx, "total_participants", s.repo.CountRegistrations),
		TotalFeedback:     s.count(ctx, "total_feedback", s.repo.CountFeedback),
	}
	dto.SuccessResponse(c, stats)
}

func (s *service) count(ctx context.Context, name string, fn func(context.Context) (int, error)) int {
	n, err := fn(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("counter", name).Msg("failed to read dashboard counter")
		return 0
	}
	return n
}

func (s *service) ListParticipants(c *ginext.Context) {
	regs, err := s.repo.ListRegistrations(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list registrations")
		dto.InternalServerError(c, noticeParticipantsLoadFailed)
		return
	}
	dto.SuccessResponse(c, regs)
}

func (s *service) ExportParticipants(c *ginext.Context) {
	regs, err := s.repo.ListRegistrations(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list registrations for export")
		dto.InternalServerError(c, noticeParticipantsLoadFailed)
		return
	}
	s.sendCSV(c, "coffee-tasting-participants", participantsTable(regs))
}

func participantsTable(regs []model.Registration) *csvexport.Table {
	t := &csvexport.Table{
		Header: []string{"Name", "Email", "Phone", "Experience", "Payment Screenshot", "Registration Date"},
	}
	for _, r := range regs {
		screenshot := "Not provided"
		if r.PaymentScreenshotURL != nil {
			screenshot = *r.PaymentScreenshotURL
		}
		t.Append(r.Name, r.Email, r.Phone, r.Experience, screenshot, csvexport.Timestamp(r.CreatedAt))
	}
	return t
}

func (s *service) DeleteParticipant(c *ginext.Context) {
	id := c.Param("id")
	if c.Query("confirm") != "true" {
		dto.BadResponseError(c, dto.ConfirmationRequired, "Deleting a registration cannot be undone, pass confirm=true")
		return
	}

	reg, err := s.deleteRegistration(c.Request.Context(), id)
	if err != nil {
		s.log.Warn().Err(err).Str("registration_id", id).Str("kind", apperr.KindOf(err).String()).Msg("failed to delete registration")
		dto.AppError(c, err, "", noticeDeleteFailed)
		return
	}

	s.log.Info().Str("registration_id", id).Msg("registration deleted")
	dto.SuccessResponse(c, dto.DeleteRegistrationResponse{ID: id, Deleted: true}, participantDeletedNotice(reg.Name))
}

// deleteRegistration reads the row before deleting it so that a row that is
// already gone, a failing delete and a delete the database silently refused
// are reported differently.
func (s *service) deleteRegistration(ctx context.Context, id string) (*model.Registration, error) {
	const op = "service.deleteRegistration"

	reg, err := s.repo.GetRegistrationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			return nil, apperr.NotFound(op, "Registration not found. It may have already been removed.")
		}
		return nil, apperr.Gateway(op, err)
	}

	affected, err := s.repo.DeleteRegistration(ctx, id)
	if err != nil {
		return nil, apperr.Gateway(op, err)
	}
	if affected == 0 {
		return nil, apperr.PermissionDenied(op, "Delete operation was blocked. Check database permissions.")
	}
	return reg, nil
}

func (s *service) ListFeedback(c *ginext.Context) {
	items, err := s.repo.ListFeedback(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list feedback")
		dto.InternalServerError(c, noticeFeedbackLoadFailed)
		return
	}

	resp := make([]dto.FeedbackItem, 0, len(items))
	for _, f := range items {
		resp = append(resp, dto.FeedbackItem{Feedback: f, RatingLabel: analytics.RatingLabel(f.Rating)})
	}
	dto.SuccessResponse(c, resp)
}

func (s *service) ExportFeedback(c *ginext.Context) {
	items, err := s.repo.ListFeedback(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list feedback for export")
		dto.InternalServerError(c, noticeFeedbackLoadFailed)
		return
	}
	s.sendCSV(c, "feedback", feedbackTable(items))
}

func feedbackTable(items []model.Feedback) *csvexport.Table {
	t := &csvexport.Table{Header: []string{"Name", "Email", "Rating", "Message", "Date"}}
	for _, f := range items {
		rating := "No rating"
		if f.Rating != nil && *f.Rating != 0 {
			rating = strconv.Itoa(*f.Rating)
		}
		t.Append(f.Name, f.Email, rating, f.Message, csvexport.Timestamp(f.CreatedAt))
	}
	return t
}

func (s *service) ListVisitors(c *ginext.Context) {
	ctx := c.Request.Context()

	visits, err := s.repo.ListRecentVisits(ctx, s.visitorLimit(c))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list visits")
		dto.InternalServerError(c, noticeVisitorsLoadFailed)
		return
	}
	pages, err := s.repo.ListVisitedPages(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list visited pages")
		dto.InternalServerError(c, noticeVisitorsLoadFailed)
		return
	}

	items := make([]dto.VisitItem, 0, len(visits))
	for _, v := range visits {
		items = append(items, dto.VisitItem{VisitorVisit: v, Browser: analytics.Browser(v.UserAgent)})
	}
	dto.SuccessResponse(c, dto.VisitorsResponse{
		Visits:    items,
		PageStats: analytics.PageStats(pages),
	})
}

func (s *service) ExportVisitors(c *ginext.Context) {
	visits, err := s.repo.ListRecentVisits(c.Request.Context(), s.visitorLimit(c))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list visits for export")
		dto.InternalServerError(c, noticeVisitorsLoadFailed)
		return
	}
	s.sendCSV(c, "visitor-stats", visitorsTable(visits))
}

func visitorsTable(visits []model.VisitorVisit) *csvexport.Table {
	t := &csvexport.Table{Header: []string{"IP Address", "Page Visited", "Browser", "Visit Time", "Referrer"}}
	for _, v := range visits {
		ip := "N/A"
		if model.StringValue(v.IPAddress) != "" {
			ip = *v.IPAddress
		}
		referrer := "Direct"
		if model.StringValue(v.Referrer) != "" {
			referrer = *v.Referrer
		}
		t.Append(ip, v.PageVisited, analytics.Browser(v.UserAgent), csvexport.Timestamp(v.VisitTimestamp), referrer)
	}
	return t
}

// visitorLimit reads ?limit=, capped at the configured maximum.
func (s *service) visitorLimit(c *ginext.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > s.settings.VisitorLimit {
		return s.settings.VisitorLimit
	}
	return limit
}

func (s *service) sendCSV(c *ginext.Context, dataset string, t *csvexport.Table) {
	name := csvexport.FileName(dataset, s.now())
	s.log.Info().Str("file", name).Int("rows", len(t.Rows)).Msg("csv export")
	dto.CSVResponse(c, name, csvexport.ContentType, t.Bytes())
}
