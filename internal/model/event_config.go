package model

import (
	"fmt"
	"strconv"
)

const currencySymbol = "₱"

// DefaultEventConfig is what the public page shows when the store has no
// usable configuration.
func DefaultEventConfig() EventConfig {
	return EventConfig{
		Title:                 "Coffee Tasting Session",
		Description:           "Join us for an exclusive coffee tasting experience",
		EventDate:             "September 2024",
		StartTime:             "10:00 AM",
		EndTime:               "12:00 PM",
		MinParticipants:       4,
		MaxParticipants:       6,
		PricePerPerson:        1000,
		DownPaymentPercentage: 50,
		AdditionalInfo:        StringPtr("Experience premium coffees from our curated collection."),
	}
}

// WithDefaults fills every unset field of c from DefaultEventConfig.
// A nil c yields the defaults.
func WithDefaults(c *EventConfig) EventConfig {
	d := DefaultEventConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Title == "" {
		out.Title = d.Title
	}
	if out.Description == "" {
		out.Description = d.Description
	}
	if out.EventDate == "" {
		out.EventDate = d.EventDate
	}
	if out.StartTime == "" {
		out.StartTime = d.StartTime
	}
	if out.EndTime == "" {
		out.EndTime = d.EndTime
	}
	if out.MinParticipants <= 0 {
		out.MinParticipants = d.MinParticipants
	}
	if out.MaxParticipants <= 0 {
		out.MaxParticipants = d.MaxParticipants
	}
	if out.PricePerPerson <= 0 {
		out.PricePerPerson = d.PricePerPerson
	}
	if out.DownPaymentPercentage <= 0 {
		out.DownPaymentPercentage = d.DownPaymentPercentage
	}
	if StringValue(out.AdditionalInfo) == "" {
		out.AdditionalInfo = d.AdditionalInfo
	}
	return out
}

// DownPaymentAmount is the amount due up front per person.
func (c EventConfig) DownPaymentAmount() float64 {
	return c.PricePerPerson * float64(c.DownPaymentPercentage) / 100
}

// EventDetails is the public view of the event configuration.
type EventDetails struct {
	EventConfig
	PriceLabel         string  `json:"price_label"`
	CapacityLabel      string  `json:"capacity_label"`
	TimeLabel          string  `json:"time_label"`
	DownPaymentAmount  float64 `json:"down_payment_amount"`
	DownPaymentLabel   string  `json:"down_payment_label"`
	DownPaymentNote    string  `json:"down_payment_note"`
	PaymentInstruction string  `json:"payment_instruction"`
}

func NewEventDetails(c EventConfig) EventDetails {
	amount := c.DownPaymentAmount()
	return EventDetails{
		EventConfig:        c,
		PriceLabel:         FormatPeso(c.PricePerPerson) + " per person",
		CapacityLabel:      fmt.Sprintf("%d-%d participants max", c.MinParticipants, c.MaxParticipants),
		TimeLabel:          c.StartTime + " - " + c.EndTime,
		DownPaymentAmount:  amount,
		DownPaymentLabel:   FormatPesoCents(amount),
		DownPaymentNote:    fmt.Sprintf("%d%% down payment required to secure your spot.", c.DownPaymentPercentage),
		PaymentInstruction: "Scan the QR code below to pay " + FormatPesoCents(amount) + " via GCash",
	}
}

// FormatPeso renders v without trailing zeros, e.g. ₱1200.
func FormatPeso(v float64) string {
	return currencySymbol + strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPesoCents renders v with two decimals, e.g. ₱600.00.
func FormatPesoCents(v float64) string {
	return currencySymbol + strconv.FormatFloat(v, 'f', 2, 64)
}
