package model

import "time"

type Registration struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	Email                string    `db:"email" json:"email"`
	Phone                string    `db:"phone" json:"phone"`
	Experience           string    `db:"experience" json:"experience"`
	PaymentScreenshotURL *string   `db:"payment_screenshot_url" json:"payment_screenshot_url"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

type EventConfig struct {
	ID                    string    `db:"id" json:"id"`
	Title                 string    `db:"title" json:"title"`
	Description           string    `db:"description" json:"description"`
	EventDate             string    `db:"event_date" json:"event_date"`
	StartTime             string    `db:"start_time" json:"start_time"`
	EndTime               string    `db:"end_time" json:"end_time"`
	MinParticipants       int       `db:"min_participants" json:"min_participants"`
	MaxParticipants       int       `db:"max_participants" json:"max_participants"`
	PricePerPerson        float64   `db:"price_per_person" json:"price_per_person"`
	DownPaymentPercentage int       `db:"down_payment_percentage" json:"down_payment_percentage"`
	FeaturedCoffees       *string   `db:"featured_coffees" json:"featured_coffees"`
	AdditionalInfo        *string   `db:"additional_info" json:"additional_info"`
	IsActive              bool      `db:"is_active" json:"is_active"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

type TermsAgreement struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Version   string    `db:"version" json:"version"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Feedback struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Message   string    `db:"message" json:"message"`
	Rating    *int      `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type VisitorVisit struct {
	ID             string    `db:"id" json:"id"`
	PageVisited    string    `db:"page_visited" json:"page_visited"`
	SessionID      *string   `db:"session_id" json:"session_id"`
	UserAgent      *string   `db:"user_agent" json:"user_agent"`
	Referrer       *string   `db:"referrer" json:"referrer"`
	IPAddress      *string   `db:"ip_address" json:"ip_address"`
	VisitTimestamp time.Time `db:"visit_timestamp" json:"visit_timestamp"`
}

// PageStat is one row of the page popularity table.
type PageStat struct {
	Page       string `json:"page"`
	Visits     int    `json:"visits"`
	Percentage int    `json:"percentage"`
}

type DashboardStats struct {
	TotalVisitors     int `json:"total_visitors"`
	TodayVisitors     int `json:"today_visitors"`
	TotalParticipants int `json:"total_participants"`
	TotalFeedback     int `json:"total_feedback"`
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
