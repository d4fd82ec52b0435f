//go:build unit

package commands_test

import (
	"context"
	"testing"

	reqdto "wasteops/internal/handler/dto/request"
	"wasteops/internal/usecase/commands"
	"wasteops/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *commands.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestLocationsStepValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reports every missing field at once", func(t *testing.T) {
		env := newCommandsEnv()

		_, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{
			Locations: &reqdto.LocationsStep{RequestType: "teleport"},
		}, guestActor("guest-abc"))

		fields := fieldsOf(t, err)
		assert.Contains(t, fields, "request_type")
		assert.Contains(t, fields, "pickup_address")
		assert.Contains(t, fields, "dropoff_address")
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("instant requests reject a stop list", func(t *testing.T) {
		env := newCommandsEnv()

		payload := builder.LocationsPayload()
		payload.Stops = []reqdto.StopPayload{{Type: "pickup", Address: "somewhere"}}
		_, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: payload}, guestActor("guest-abc"))

		assert.Contains(t, fieldsOf(t, err), "stops")
	})

	t.Run("journey stop list needs pickup first and dropoff last", func(t *testing.T) {
		env := newCommandsEnv()

		payload := builder.JourneyLocationsPayload()
		payload.Stops = []reqdto.StopPayload{
			{Type: "dropoff", Address: "3 Quay Street, Galway"},
			{Type: "waypoint", Address: ""},
			{Type: "pickup", Address: "12 Harbour Road, Dublin"},
		}
		_, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: payload}, guestActor("guest-abc"))

		fields := fieldsOf(t, err)
		assert.Contains(t, fields, "stops[0].type")
		assert.Contains(t, fields, "stops[1].type")
		assert.Contains(t, fields, "stops[1].address")
		assert.Contains(t, fields, "stops[2].type")
	})

	t.Run("journey with a single stop is rejected outright", func(t *testing.T) {
		env := newCommandsEnv()

		payload := builder.JourneyLocationsPayload()
		payload.Stops = []reqdto.StopPayload{{Type: "pickup", Address: "12 Harbour Road, Dublin"}}
		_, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: payload}, guestActor("guest-abc"))

		assert.Equal(t, "journey requires at least two stops", fieldsOf(t, err)["stops"])
	})
}

func TestItemsStepValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("per-item problems carry indexed field keys", func(t *testing.T) {
		env := newCommandsEnv()
		id := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(1)).ID()

		weight := -4.5
		_, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{
			RequestID: &id,
			Items: &reqdto.ItemsStep{Items: []reqdto.ItemPayload{
				{Name: "sofa", Category: "furniture", Quantity: 1},
				{Name: " ", Quantity: 0, WeightKG: &weight},
			}},
		}, guestActor("guest-abc"))

		fields := fieldsOf(t, err)
		assert.NotContains(t, fields, "items[0].name")
		assert.Contains(t, fields, "items[1].name")
		assert.Contains(t, fields, "items[1].quantity")
		assert.Contains(t, fields, "items[1].weight_kg")
	})

	t.Run("an empty item list is rejected", func(t *testing.T) {
		env := newCommandsEnv()
		id := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(1)).ID()

		_, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{
			RequestID: &id,
			Items:     &reqdto.ItemsStep{},
		}, guestActor("guest-abc"))

		assert.Contains(t, fieldsOf(t, err), "items")
	})
}

func TestScheduleStepValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		payload reqdto.ScheduleStep
		field   string
	}{
		{
			name:    "missing date",
			payload: reqdto.ScheduleStep{TimeWindow: "morning", ServiceSpeed: "standard"},
			field:   "preferred_date",
		},
		{
			name:    "malformed date",
			payload: reqdto.ScheduleStep{PreferredDate: "01/03/2024", TimeWindow: "morning", ServiceSpeed: "standard"},
			field:   "preferred_date",
		},
		{
			name:    "date in the past",
			payload: reqdto.ScheduleStep{PreferredDate: "2024-02-20", TimeWindow: "morning", ServiceSpeed: "standard"},
			field:   "preferred_date",
		},
		{
			name:    "unknown time window",
			payload: reqdto.ScheduleStep{PreferredDate: "2024-03-01", TimeWindow: "midnight", ServiceSpeed: "standard"},
			field:   "time_window",
		},
		{
			name:    "unknown service speed",
			payload: reqdto.ScheduleStep{PreferredDate: "2024-03-01", TimeWindow: "morning", ServiceSpeed: "warp"},
			field:   "service_speed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCommandsEnv()
			id := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(2)).ID()

			payload := tt.payload
			_, err := env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{
				RequestID: &id,
				Schedule:  &payload,
			}, guestActor("guest-abc"))

			assert.Contains(t, fieldsOf(t, err), tt.field)
			assert.Zero(t, env.drafts.casCalls, "invalid payloads must not reach the guard")
		})
	}
}
