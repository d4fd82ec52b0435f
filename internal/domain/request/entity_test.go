//go:build unit

package request_test

import (
	"testing"
	"time"

	"wasteops/internal/domain/pricing"
	"wasteops/internal/domain/request"
	"wasteops/internal/pkg/clock"
	"wasteops/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraft(t *testing.T) {
	now := time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC)

	t.Run("guest draft starts editing with no completed steps", func(t *testing.T) {
		d, err := request.NewDraft(request.TypeInstant, nil, "guest-abc", clock.NewMockClock(now))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, d.ID())
		assert.Equal(t, request.PhaseEditing, d.Phase())
		assert.Equal(t, request.StatusDraft, d.Status())
		assert.Equal(t, 0, d.CompletedSteps())
		assert.Equal(t, "guest-abc", d.GuestKey())
		assert.Equal(t, now, d.CreatedAt())
		assert.Equal(t, now, d.UpdatedAt())
	})

	t.Run("rejects invalid request type", func(t *testing.T) {
		_, err := request.NewDraft(request.Type("bulk"), nil, "guest-abc", clock.NewMockClock(now))
		assert.ErrorIs(t, err, request.ErrInvalidRequestType)
	})

	t.Run("mutations stamp updated_at from the injected clock", func(t *testing.T) {
		clk := clock.NewMockClock(now)
		d, err := request.NewDraft(request.TypeInstant, nil, "guest-abc", clk)
		require.NoError(t, err)

		clk.Advance(42 * time.Minute)
		require.NoError(t, d.SetItems([]request.MovingItem{{Name: "sofa", Category: "furniture", Quantity: 1}}))

		assert.Equal(t, now, d.CreatedAt())
		assert.Equal(t, now.Add(42*time.Minute), d.UpdatedAt())
	})
}

func TestDraftOwnership(t *testing.T) {
	userID := uuid.New()

	t.Run("user draft owned by that user only", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithUser(userID).BuildDraft()
		require.NoError(t, err)

		other := uuid.New()
		assert.True(t, d.OwnedBy(&userID, ""))
		assert.False(t, d.OwnedBy(&other, ""))
		assert.False(t, d.OwnedBy(nil, "guest-abc"))
	})

	t.Run("guest draft owned by the guest key only", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().BuildDraft()
		require.NoError(t, err)

		assert.True(t, d.OwnedBy(nil, "guest-abc"))
		assert.False(t, d.OwnedBy(nil, "guest-other"))
		assert.False(t, d.OwnedBy(&userID, ""))
	})
}

func TestStepGating(t *testing.T) {
	t.Run("step n+1 blocked until step n completed", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().BuildDraft()
		require.NoError(t, err)

		assert.NoError(t, d.CanSubmitStep(request.StepLocations))
		assert.ErrorIs(t, d.CanSubmitStep(request.StepItems), request.ErrStepOutOfOrder)
		assert.ErrorIs(t, d.CanSubmitStep(request.StepSchedule), request.ErrStepOutOfOrder)
	})

	t.Run("completed steps may be resubmitted", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithCompletedSteps(2).BuildDraft()
		require.NoError(t, err)

		assert.NoError(t, d.CanSubmitStep(request.StepLocations))
		assert.NoError(t, d.CanSubmitStep(request.StepItems))
		assert.NoError(t, d.CanSubmitStep(request.StepSchedule))
	})

	t.Run("out of range steps rejected", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().BuildDraft()
		require.NoError(t, err)

		assert.ErrorIs(t, d.CanSubmitStep(0), request.ErrUnknownStep)
		assert.ErrorIs(t, d.CanSubmitStep(request.StepsTotal+1), request.ErrUnknownStep)
	})

	t.Run("no submission while another is in flight", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithCompletedSteps(1).BuildDraft()
		require.NoError(t, err)

		require.NoError(t, d.BeginSubmission())
		assert.ErrorIs(t, d.CanSubmitStep(request.StepItems), request.ErrIllegalPhase)
		assert.ErrorIs(t, d.BeginSubmission(), request.ErrIllegalPhase)

		d.AbortSubmission()
		assert.Equal(t, request.PhaseEditing, d.Phase())
		assert.NoError(t, d.CanSubmitStep(request.StepItems))
	})
}

func TestFinishStep(t *testing.T) {
	t.Run("advances the high-water mark", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().BuildDraft()
		require.NoError(t, err)

		require.NoError(t, d.BeginSubmission())
		require.NoError(t, d.FinishStep(request.StepLocations))
		assert.Equal(t, 1, d.CompletedSteps())
		assert.Equal(t, request.PhaseEditing, d.Phase())
	})

	t.Run("resubmitting an earlier step keeps the mark", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithCompletedSteps(2).BuildDraft()
		require.NoError(t, err)

		require.NoError(t, d.BeginSubmission())
		require.NoError(t, d.FinishStep(request.StepLocations))
		assert.Equal(t, 2, d.CompletedSteps())
	})
}

func TestAwaitAndResumeContact(t *testing.T) {
	d, err := builder.NewRequestBuilder().WithCompletedSteps(2).BuildDraft()
	require.NoError(t, err)

	require.NoError(t, d.BeginSubmission())
	require.NoError(t, d.AwaitContact())
	assert.Equal(t, request.PhaseAwaitingContact, d.Phase())

	// The parked draft resumes exactly once.
	require.NoError(t, d.ResumeFromContact())
	assert.Equal(t, request.PhaseSubmitting, d.Phase())
	assert.ErrorIs(t, d.ResumeFromContact(), request.ErrIllegalPhase)
}

func TestAcceptForecast(t *testing.T) {
	forecast := builder.ForecastFor("2024-03-01", map[int]float64{1: 85, 2: 120})

	t.Run("requires resolved contact", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithCompletedSteps(2).BuildDraft()
		require.NoError(t, err)

		require.NoError(t, d.BeginSubmission())
		assert.ErrorIs(t, d.AcceptForecast(forecast), request.ErrContactUnresolved)
	})

	t.Run("requires a non-empty forecast", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithCompletedSteps(2).BuildDraft()
		require.NoError(t, err)

		require.NoError(t, d.BeginSubmission())
		d.SetContact(request.Contact{Name: "Sam", Email: "sam@example.com"})
		assert.ErrorIs(t, d.AcceptForecast(&pricing.Forecast{}), request.ErrNoForecast)
	})

	t.Run("completes all steps and moves to forecast phase", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithForecast(forecast).BuildDraft()
		require.NoError(t, err)

		assert.Equal(t, request.PhaseForecast, d.Phase())
		assert.Equal(t, request.StepsTotal, d.CompletedSteps())
		require.NotNil(t, d.Forecast())
	})
}

func TestSelectPrice(t *testing.T) {
	forecast := builder.ForecastFor("2024-03-01", map[int]float64{1: 85, 2: 120})

	newForecastDraft := func(t *testing.T) *request.Draft {
		d, err := builder.NewRequestBuilder().WithForecast(forecast).BuildDraft()
		require.NoError(t, err)
		return d
	}

	t.Run("valid cell moves to confirming", func(t *testing.T) {
		d := newForecastDraft(t)

		err := d.SelectPrice(pricing.Selection{Date: "2024-03-01", StaffCount: 2, Price: 120})
		require.NoError(t, err)
		assert.Equal(t, request.PhaseConfirming, d.Phase())
		require.NotNil(t, d.Selection())
		assert.Equal(t, 120.0, d.Selection().Price)
	})

	t.Run("reselection while confirming is allowed", func(t *testing.T) {
		d := newForecastDraft(t)

		require.NoError(t, d.SelectPrice(pricing.Selection{Date: "2024-03-01", StaffCount: 2, Price: 120}))
		require.NoError(t, d.SelectPrice(pricing.Selection{Date: "2024-03-01", StaffCount: 1, Price: 85}))
		assert.Equal(t, 1, d.Selection().StaffCount)
	})

	t.Run("price mismatch rejected", func(t *testing.T) {
		d := newForecastDraft(t)

		err := d.SelectPrice(pricing.Selection{Date: "2024-03-01", StaffCount: 2, Price: 119.99})
		assert.ErrorIs(t, err, request.ErrSelectionMismatch)
		assert.Nil(t, d.Selection())
	})

	t.Run("unknown cell rejected", func(t *testing.T) {
		d := newForecastDraft(t)

		err := d.SelectPrice(pricing.Selection{Date: "2024-03-02", StaffCount: 2, Price: 120})
		assert.ErrorIs(t, err, request.ErrSelectionMismatch)
	})

	t.Run("not allowed while editing", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().BuildDraft()
		require.NoError(t, err)

		selErr := d.SelectPrice(pricing.Selection{Date: "2024-03-01", StaffCount: 2, Price: 120})
		assert.ErrorIs(t, selErr, request.ErrIllegalPhase)
	})
}

func TestDiscardForecast(t *testing.T) {
	forecast := builder.ForecastFor("2024-03-01", map[int]float64{2: 120})

	d, err := builder.NewRequestBuilder().WithForecast(forecast).BuildDraft()
	require.NoError(t, err)
	idBefore := d.ID()

	require.NoError(t, d.SelectPrice(pricing.Selection{Date: "2024-03-01", StaffCount: 2, Price: 120}))
	require.NoError(t, d.DiscardForecast())

	assert.Equal(t, request.PhaseEditing, d.Phase())
	assert.Equal(t, request.StepsTotal-1, d.CompletedSteps())
	assert.Nil(t, d.Forecast())
	assert.Nil(t, d.Selection())
	// Back to the schedule step keeps the same request.
	assert.Equal(t, idBefore, d.ID())
}

func TestConfirmBooked(t *testing.T) {
	forecast := builder.ForecastFor("2024-03-01", map[int]float64{2: 120})

	t.Run("requires a selection in confirming phase", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithForecast(forecast).BuildDraft()
		require.NoError(t, err)

		assert.ErrorIs(t, d.ConfirmBooked(), request.ErrIllegalPhase)
	})

	t.Run("books once and only once", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithForecast(forecast).BuildDraft()
		require.NoError(t, err)

		require.NoError(t, d.SelectPrice(pricing.Selection{Date: "2024-03-01", StaffCount: 2, Price: 120}))
		require.NoError(t, d.ConfirmBooked())

		assert.Equal(t, request.StatusBooked, d.Status())
		assert.Equal(t, request.PhaseDone, d.Phase())
		assert.ErrorIs(t, d.ConfirmBooked(), request.ErrAlreadyBooked)
	})
}

func TestSetSchedule(t *testing.T) {
	forecast := builder.ForecastFor("2024-03-01", map[int]float64{2: 120})

	t.Run("new schedule invalidates forecast and selection", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithForecast(forecast).BuildDraft()
		require.NoError(t, err)
		require.NoError(t, d.SelectPrice(pricing.Selection{Date: "2024-03-01", StaffCount: 2, Price: 120}))
		require.NoError(t, d.DiscardForecast())

		require.NoError(t, d.BeginSubmission())
		require.NoError(t, d.SetSchedule(request.Schedule{
			PreferredDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			TimeWindow:    request.WindowAfternoon,
			Speed:         request.SpeedExpress,
		}))

		assert.Nil(t, d.Forecast())
		assert.Nil(t, d.Selection())
	})

	t.Run("rejects invalid enums", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithCompletedSteps(2).BuildDraft()
		require.NoError(t, err)

		assert.Error(t, d.SetSchedule(request.Schedule{TimeWindow: "midnight", Speed: request.SpeedStandard}))
		assert.Error(t, d.SetSchedule(request.Schedule{TimeWindow: request.WindowAny, Speed: "teleport"}))
	})
}

func TestSetRequestType(t *testing.T) {
	t.Run("switching journey to instant clears stops", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().With(func(b *builder.RequestBuilder) {
			b.RequestType = "journey"
		}).WithCompletedSteps(1).BuildDraft()
		require.NoError(t, err)

		d.InitializeJourneyStops()
		require.NotEmpty(t, d.Stops())

		require.NoError(t, d.SetRequestType(request.TypeInstant))
		assert.Empty(t, d.Stops())
	})

	t.Run("switching instant to journey keeps addresses", func(t *testing.T) {
		d, err := builder.NewRequestBuilder().WithCompletedSteps(1).BuildDraft()
		require.NoError(t, err)
		pickupBefore := d.Pickup()

		require.NoError(t, d.SetRequestType(request.TypeJourney))
		assert.Equal(t, pickupBefore, d.Pickup())
	})
}
