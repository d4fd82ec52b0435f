//go:build e2e

package request_test

import (
	"net/http"
	"testing"
	"time"

	"wasteops/internal/domain/pricing"
	reqdto "wasteops/internal/handler/dto/request"
	resdto "wasteops/internal/handler/dto/response"
	"wasteops/tests/common/builder"
	"wasteops/tests/common/dbtest"
	"wasteops/tests/common/httptest"
	"wasteops/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	stepURL  = "/api/requests/steps/"
	baseURL  = "/api/requests/"
	loginURL = "/api/auth/login"
)

type requestSuite struct {
	e2e.SharedSuite
}

func TestRequestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(requestSuite))
}

func (s *requestSuite) guestHeaders(key string) map[string]string {
	return map[string]string{"X-Guest-Key": key}
}

func (s *requestSuite) submitStep(step string, body any, token string, headers map[string]string) *resdto.StepResponse {
	t := s.T()
	w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, stepURL+step, body, token, headers)
	require.Equal(t, http.StatusOK, w.Code, "step %s failed: %s", step, w.Body.String())

	var res resdto.StepResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	return &res
}

func (s *requestSuite) login(email string) string {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL,
		reqdto.LoginRequest{Email: email, Password: dbtest.TestPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var res struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	return res.AccessToken
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(pricing.DateLayout)
}

// ---------------------------------------------------------------------------
// guest wizard walk
// ---------------------------------------------------------------------------

func (s *requestSuite) TestGuestWizardFlow() {
	s.Run("full walk: steps, capture, selection, confirm", func() {
		t := s.T()
		headers := s.guestHeaders("guest-e2e-1")
		date := futureDate(7)

		first := s.submitStep("1", reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, "", headers)
		require.NotEqual(t, uuid.Nil, first.RequestID)
		require.Equal(t, 1, first.CompletedSteps)

		id := first.RequestID
		second := s.submitStep("2", reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, "", headers)
		require.Equal(t, id, second.RequestID)
		require.Equal(t, 2, second.CompletedSteps)

		// An unknown guest is parked on contact capture.
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, stepURL+"3",
			reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload(date)}, "", headers)
		require.Equal(t, http.StatusPreconditionRequired, w.Code, w.Body.String())
		require.Contains(t, w.Body.String(), "contact_details_required")

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, baseURL+id.String()+"/contact",
			reqdto.CaptureContactRequest{Name: "Sam Byrne", Email: "sam@example.com", Phone: "0851234567"}, "", headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var captured resdto.StepResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &captured))
		require.NotNil(t, captured.Forecast)
		require.NotEmpty(t, captured.Forecast.Days)

		// Re-capturing after the resume has run is a conflict.
		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, baseURL+id.String()+"/contact",
			reqdto.CaptureContactRequest{Name: "Sam Byrne", Email: "sam@example.com", Phone: "0851234567"}, "", headers)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		// Select the priced cell straight out of the forecast.
		cell, ok := captured.Forecast.Cell(date, 2)
		require.True(t, ok, "forecast is missing the preferred date")

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, baseURL+id.String()+"/selection",
			reqdto.SelectPriceRequest{Date: date, StaffCount: 2, Price: cell.Total}, "", headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// A stale price is rejected against the live matrix.
		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, baseURL+id.String()+"/selection",
			reqdto.SelectPriceRequest{Date: date, StaffCount: 2, Price: cell.Total + 0.01}, "", headers)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, baseURL+id.String()+"/confirm", nil, "", headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var confirmed resdto.ConfirmResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &confirmed))
		require.NotEmpty(t, confirmed.BookingReference)
		require.Equal(t, cell.Total, confirmed.TotalPrice)
		require.False(t, confirmed.IsReplayed)

		// Confirm is idempotent: replaying returns the same reference.
		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, baseURL+id.String()+"/confirm", nil, "", headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var replayed resdto.ConfirmResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &replayed))
		require.True(t, replayed.IsReplayed)
		require.Equal(t, confirmed.BookingReference, replayed.BookingReference)

		// The read side carries the booking reference.
		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodGet, baseURL+id.String(), nil, "", headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Contains(t, w.Body.String(), confirmed.BookingReference)

		// Exactly one notification job was queued.
		var jobs int
		require.NoError(t, s.DB.QueryRow(s.T().Context(),
			"SELECT count(*) FROM notification_jobs WHERE topic = 'request_booked'").Scan(&jobs))
		require.Equal(t, 1, jobs)
	})

	s.Run("captured identity is reused on the next request", func() {
		t := s.T()
		headers := s.guestHeaders("guest-e2e-2")
		date := futureDate(7)

		first := s.submitStep("1", reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, "", headers)
		id := first.RequestID
		s.submitStep("2", reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, "", headers)

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, stepURL+"3",
			reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload(date)}, "", headers)
		require.Equal(t, http.StatusPreconditionRequired, w.Code)

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, baseURL+id.String()+"/contact",
			reqdto.CaptureContactRequest{Name: "Sam Byrne", Email: "sam@example.com", Phone: "0851234567"}, "", headers)
		require.Equal(t, http.StatusOK, w.Code)

		// Second wizard run from the same device: no capture step.
		next := s.submitStep("1", reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, "", headers)
		nextID := next.RequestID
		s.submitStep("2", reqdto.SubmitStepRequest{RequestID: &nextID, Items: builder.ItemsPayload()}, "", headers)

		res := s.submitStep("3", reqdto.SubmitStepRequest{RequestID: &nextID, Schedule: builder.SchedulePayload(date)}, "", headers)
		require.NotNil(t, res.Forecast)
	})

	s.Run("journey request synthesizes and keeps the stop list", func() {
		t := s.T()
		headers := s.guestHeaders("guest-e2e-3")

		first := s.submitStep("1", reqdto.SubmitStepRequest{Locations: builder.JourneyLocationsPayload()}, "", headers)
		id := first.RequestID

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodGet, baseURL+id.String(), nil, "", headers)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var view struct {
			RequestType string `json:"request_type"`
			Stops       []struct {
				Type     string `json:"type"`
				Sequence int    `json:"sequence"`
				Location struct {
					Address string `json:"address"`
				} `json:"location"`
			} `json:"stops"`
		}
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &view))
		require.Equal(t, "journey", view.RequestType)
		require.Len(t, view.Stops, 3)
		require.Equal(t, "pickup", view.Stops[0].Type)
		require.Equal(t, "dropoff", view.Stops[2].Type)
	})
}

// ---------------------------------------------------------------------------
// session user flow and ownership
// ---------------------------------------------------------------------------

func (s *requestSuite) TestSessionUserFlow() {
	s.Run("authenticated user never hits the capture step", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.DB, "operator@example.com", "operator")
		token := s.login("operator@example.com")
		date := futureDate(5)

		first := s.submitStep("1", reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, token, nil)
		id := first.RequestID
		s.submitStep("2", reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, token, nil)

		res := s.submitStep("3", reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload(date)}, token, nil)
		require.NotNil(t, res.Forecast)

		// The user's requests are listable.
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/requests", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Contains(t, w.Body.String(), id.String())
	})

	s.Run("drafts are hidden from strangers", func() {
		t := s.T()
		headers := s.guestHeaders("guest-owner")

		first := s.submitStep("1", reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, "", headers)
		id := first.RequestID

		// Another guest key sees 404, not 403.
		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodGet, baseURL+id.String(), nil, "",
			s.guestHeaders("guest-stranger"))
		require.Equal(t, http.StatusNotFound, w.Code)

		w = httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, stepURL+"2",
			reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, "", s.guestHeaders("guest-stranger"))
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	s.Run("steps cannot be skipped", func() {
		t := s.T()
		headers := s.guestHeaders("guest-skipper")

		first := s.submitStep("1", reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, "", headers)
		id := first.RequestID

		w := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, stepURL+"3",
			reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload(futureDate(7))}, "", headers)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	s.Run("discarding the forecast returns to the schedule step", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.DB, "operator2@example.com", "operator")
		token := s.login("operator2@example.com")
		date := futureDate(5)

		first := s.submitStep("1", reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, token, nil)
		id := first.RequestID
		s.submitStep("2", reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, token, nil)
		s.submitStep("3", reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload(date)}, token, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete, baseURL+id.String()+"/selection", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res resdto.StepResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
		require.Equal(t, id, res.RequestID)
		require.Equal(t, 2, res.CompletedSteps)
		require.Nil(t, res.Forecast)

		// The schedule step can be resubmitted and produces a fresh forecast.
		res2 := s.submitStep("3", reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload(futureDate(9))}, token, nil)
		require.NotNil(t, res2.Forecast)
	})
}
