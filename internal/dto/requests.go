package dto

import "time"

// Experience levels accepted on the registration form.
const (
	ExperienceEnthusiast = "enthusiast"
	ExperienceHomebrewer = "homebrewer"
	ExperienceShopOwner  = "shop-owner"
	ExperienceBarista    = "barista"
	ExperienceBeginner   = "beginner"
	ExperienceOther      = "other"
)

// RegistrationRequest is the public coffee tasting form. The payment
// screenshot travels as the multipart file "payment_screenshot".
type RegistrationRequest struct {
	Name         string `form:"name" json:"name" validate:"min=2" msg:"Name must be at least 2 characters"`
	Email        string `form:"email" json:"email" validate:"required,email" msg:"Please enter a valid email address"`
	Phone        string `form:"phone" json:"phone" validate:"min=10" msg:"Please enter a valid phone number"`
	Experience   string `form:"experience" json:"experience" validate:"required,oneof=enthusiast homebrewer shop-owner barista beginner other" msg:"Please select your coffee experience level"`
	AgreeToTerms bool   `form:"agree_to_terms" json:"agree_to_terms" validate:"accepted" msg:"You must agree to the terms and conditions"`
}

// EventConfigRequest is what the admin editor saves. ID is the row the editor
// loaded, empty when it started from defaults.
type EventConfigRequest struct {
	ID                    string  `json:"id"`
	Title                 string  `json:"title" validate:"notblank" msg:"Title is required"`
	Description           string  `json:"description" validate:"notblank" msg:"Description is required"`
	EventDate             string  `json:"event_date" validate:"notblank" msg:"Event date is required"`
	StartTime             string  `json:"start_time" validate:"notblank" msg:"Start time is required"`
	EndTime               string  `json:"end_time" validate:"notblank" msg:"End time is required"`
	MinParticipants       int     `json:"min_participants" validate:"gte=0" msg:"Minimum participants cannot be negative"`
	MaxParticipants       int     `json:"max_participants" validate:"gte=0" msg:"Maximum participants cannot be negative"`
	PricePerPerson        float64 `json:"price_per_person" validate:"gte=0" msg:"Price must be positive"`
	DownPaymentPercentage int     `json:"down_payment_percentage" validate:"gte=0,lte=100" msg:"Percentage must be between 0-100"`
	FeaturedCoffees       string  `json:"featured_coffees"`
	AdditionalInfo        string  `json:"additional_info"`
}

// TermsRequest publishes a new terms version.
type TermsRequest struct {
	Title   string `json:"title" validate:"notblank" msg:"Title is required"`
	Content string `json:"content" validate:"notblank" msg:"Content is required"`
	Version string `json:"version" validate:"notblank" msg:"Version is required"`
}

// VisitRequest is the analytics ping sent when the registration page loads.
type VisitRequest struct {
	PageVisited string `json:"page_visited"`
	SessionID   string `json:"session_id"`
	UserAgent   string `json:"user_agent"`
	Referrer    string `json:"referrer"`
}

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Notice kinds carried on the registration queue.
const (
	NoticeRegistrationReceived = "registration.received"
	NoticePaymentReminder      = "payment.reminder"
)

type RegistrationNoticeMessage struct {
	Kind           string    `json:"kind"`
	RegistrationID string    `json:"registration_id"`
	ExpireAt       time.Time `json:"expire_at"`
}
