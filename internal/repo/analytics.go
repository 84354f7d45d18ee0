package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cafeDesk/internal/model"
)

func (r *repository) ListFeedback(ctx context.Context) ([]model.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, message, rating, created_at
		FROM feedback
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	defer rows.Close()

	items := make([]model.Feedback, 0)
	for rows.Next() {
		var (
			f      model.Feedback
			rating sql.NullInt64
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Message, &rating, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			f.Rating = &v
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return items, nil
}

func (r *repository) CountFeedback(ctx context.Context) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM feedback`)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}

func (r *repository) CreateVisit(ctx context.Context, v *model.VisitorVisit) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO website_visitors (page_visited, session_id, user_agent, referrer, ip_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, visit_timestamp
	`, v.PageVisited, v.SessionID, v.UserAgent, v.Referrer, v.IPAddress).Scan(&v.ID, &v.VisitTimestamp)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

func (r *repository) ListRecentVisits(ctx context.Context, limit int) ([]model.VisitorVisit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, page_visited, session_id, user_agent, referrer, ip_address, visit_timestamp
		FROM website_visitors
		ORDER BY visit_timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get visits: %w", err)
	}
	defer rows.Close()

	visits := make([]model.VisitorVisit, 0)
	for rows.Next() {
		var (
			v                               model.VisitorVisit
			sessionID, ua, referrer, ipAddr sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.PageVisited, &sessionID, &ua, &referrer, &ipAddr, &v.VisitTimestamp); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v.SessionID = nullString(sessionID)
		v.UserAgent = nullString(ua)
		v.Referrer = nullString(referrer)
		v.IPAddress = nullString(ipAddr)
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visits: %w", err)
	}
	return visits, nil
}

// ListVisitedPages returns the page path of every recorded visit.
func (r *repository) ListVisitedPages(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT page_visited FROM website_visitors`)
	if err != nil {
		return nil, fmt.Errorf("failed to get visited pages: %w", err)
	}
	defer rows.Close()

	pages := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan visited page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visited pages: %w", err)
	}
	return pages, nil
}

// CountVisits counts visits at or after since. A zero since counts all.
func (r *repository) CountVisits(ctx context.Context, since time.Time) (int, error) {
	var (
		n   int
		err error
	)
	if since.IsZero() {
		n, err = count(ctx, r.db, `SELECT COUNT(*) FROM website_visitors`)
	} else {
		n, err = count(ctx, r.db, `SELECT COUNT(*) FROM website_visitors WHERE visit_timestamp >= $1`, since)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return n, nil
}
