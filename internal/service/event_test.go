package service_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeDesk/internal/dto"
	"cafeDesk/internal/model"
)

func holidayRequest(id string) dto.EventConfigRequest {
	return dto.EventConfigRequest{
		ID:                    id,
		Title:                 "Holiday Tasting",
		Description:           "Seasonal single origins",
		EventDate:             "December 20, 2026",
		StartTime:             "2:00 PM",
		EndTime:               "4:00 PM",
		MinParticipants:       4,
		MaxParticipants:       8,
		PricePerPerson:        1200,
		DownPaymentPercentage: 50,
		FeaturedCoffees:       "Ethiopia Guji, Colombia Huila",
	}
}

func TestGetEventServesDefaultsWithoutConfig(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/v1/event", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var details model.EventDetails
	decode(t, w, &details)
	assert.Equal(t, "Coffee Tasting Session", details.Title)
	assert.Equal(t, "₱1000 per person", details.PriceLabel)
	assert.Equal(t, "₱500.00", details.DownPaymentLabel)
	assert.Equal(t, "4-6 participants max", details.CapacityLabel)
}

func TestHolidayTastingConfigIsPublished(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	w := env.doJSON(t, http.MethodPut, "/v1/admin/event-config", holidayRequest(""), cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved model.EventConfig
	body := decode(t, w, &saved)
	assert.NotEmpty(t, saved.ID)
	assert.True(t, saved.IsActive)
	require.Len(t, body.Notices, 1)
	assert.Equal(t, "Configuration Saved", body.Notices[0].Title)

	w = env.doJSON(t, http.MethodGet, "/v1/event", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var details model.EventDetails
	decode(t, w, &details)
	assert.Equal(t, "Holiday Tasting", details.Title)
	assert.Equal(t, "₱1200 per person", details.PriceLabel)
	assert.Equal(t, "₱600.00", details.DownPaymentLabel)
	assert.Equal(t, "Scan the QR code below to pay ₱600.00 via GCash", details.PaymentInstruction)
	assert.Equal(t, "4-8 participants max", details.CapacityLabel)
	require.NotNil(t, details.FeaturedCoffees)
	assert.Equal(t, "Ethiopia Guji, Colombia Huila", *details.FeaturedCoffees)
	assert.Equal(t, "Experience premium coffees from our curated collection.", model.StringValue(details.AdditionalInfo))
}

func TestSaveEventConfigKeepsExactlyOneActive(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	save := func(id string) string {
		w := env.doJSON(t, http.MethodPut, "/v1/admin/event-config", holidayRequest(id), cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var saved model.EventConfig
		decode(t, w, &saved)
		return saved.ID
	}

	first := save("")
	assert.Equal(t, 1, env.repo.activeConfigs())

	assert.Equal(t, first, save(first))
	assert.Equal(t, 1, env.repo.activeConfigs())

	second := save("")
	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, env.repo.activeConfigs())

	stale := save("3d1c1f0e-0000-4000-8000-000000000000")
	assert.NotEqual(t, second, stale)
	assert.Equal(t, 1, env.repo.activeConfigs())
	assert.Len(t, env.repo.configs, 3)

	w := env.doJSON(t, http.MethodGet, "/v1/admin/event-config", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var active model.EventConfig
	decode(t, w, &active)
	assert.Equal(t, stale, active.ID)
}

func TestSaveEventConfigValidation(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	req := holidayRequest("")
	req.DownPaymentPercentage = 150
	req.Title = "   "

	w := env.doJSON(t, http.MethodPut, "/v1/admin/event-config", req, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w, nil)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ValidationFailed, body.Error.Code)
	assert.True(t, body.Error.Fields.Has("title"))
	require.True(t, body.Error.Fields.Has("down_payment_percentage"))
	for _, f := range body.Error.Fields {
		if f.Field == "down_payment_percentage" {
			assert.Equal(t, "Percentage must be between 0-100", f.Message)
		}
	}
	assert.Empty(t, env.repo.configs)
}

func TestAdminEventConfigNotFound(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	w := env.doJSON(t, http.MethodGet, "/v1/admin/event-config", nil, cookie)
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decode(t, w, nil)
	assert.Equal(t, dto.ConfigNotFound, body.Error.Code)
}

func TestTermsVersioning(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	w := env.doJSON(t, http.MethodGet, "/v1/terms", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.TermsNotFound, decode(t, w, nil).Error.Code)

	for _, v := range []string{"1.0", "1.1"} {
		w := env.doJSON(t, http.MethodPut, "/v1/admin/terms", dto.TermsRequest{
			Title:   "Terms and Agreements",
			Content: "Down payments are non-refundable. Version " + v,
			Version: v,
		}, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Terms Updated", decode(t, w, nil).Notices[0].Title)
	}

	w = env.doJSON(t, http.MethodGet, "/v1/terms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active model.TermsAgreement
	decode(t, w, &active)
	assert.Equal(t, "1.1", active.Version)

	w = env.doJSON(t, http.MethodGet, "/v1/admin/terms/history", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var history []model.TermsAgreement
	decode(t, w, &history)
	require.Len(t, history, 2)
	assert.Equal(t, "1.1", history[0].Version)
	assert.True(t, history[0].IsActive)
	assert.False(t, history[1].IsActive)

	w = env.doJSON(t, http.MethodPut, "/v1/admin/terms", dto.TermsRequest{Title: "T"}, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w, nil).Error.Fields
	assert.True(t, fields.Has("content"))
	assert.True(t, fields.Has("version"))
}

func TestSaveEventConfigWithZerosFallsBackToDefaults(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	req := holidayRequest("")
	req.PricePerPerson = 0
	req.DownPaymentPercentage = 0

	w := env.doJSON(t, http.MethodPut, "/v1/admin/event-config", req, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w, nil)
	require.Len(t, body.Notices, 2)
	assert.Equal(t, "Configuration Saved", body.Notices[0].Title)
	assert.Equal(t, "Defaults Applied", body.Notices[1].Title)
	assert.Contains(t, body.Notices[1].Description, "price, down payment percentage")

	w = env.doJSON(t, http.MethodGet, "/v1/event", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details model.EventDetails
	decode(t, w, &details)
	assert.Equal(t, "Holiday Tasting", details.Title)
	assert.Equal(t, "₱1000 per person", details.PriceLabel)
	assert.Equal(t, "₱500.00", details.DownPaymentLabel)
}
