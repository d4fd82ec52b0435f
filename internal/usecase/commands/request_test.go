//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"wasteops/internal/domain/identity"
	"wasteops/internal/domain/pricing"
	"wasteops/internal/domain/request"
	reqdto "wasteops/internal/handler/dto/request"
	"wasteops/internal/infra"
	"wasteops/internal/pkg/clock"
	"wasteops/internal/usecase/commands"
	"wasteops/internal/usecase/queries"
	"wasteops/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// in-memory fakes
// ---------------------------------------------------------------------------

type fakeTxRunner struct{}

func (fakeTxRunner) Within(ctx context.Context, fn func(ctx context.Context, db infra.DBTX) error) error {
	return fn(ctx, nil)
}

func (fakeTxRunner) DB() infra.DBTX { return nil }

type fakeDraftRepo struct {
	drafts   map[uuid.UUID]*request.Draft
	phases   map[uuid.UUID]request.Phase
	creates  int
	saves    int
	casCalls int
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{
		drafts: map[uuid.UUID]*request.Draft{},
		phases: map[uuid.UUID]request.Phase{},
	}
}

func (f *fakeDraftRepo) seed(d *request.Draft) {
	f.drafts[d.ID()] = d
	f.phases[d.ID()] = d.Phase()
}

func (f *fakeDraftRepo) Create(_ context.Context, _ infra.DBTX, d *request.Draft) error {
	f.creates++
	f.seed(d)
	return nil
}

func (f *fakeDraftRepo) Find(_ context.Context, id uuid.UUID) (*request.Draft, error) {
	d, ok := f.drafts[id]
	if !ok {
		return nil, infra.WrapRepoErr("request not found", nil, infra.KindNotFound)
	}
	return d, nil
}

func (f *fakeDraftRepo) Save(_ context.Context, _ infra.DBTX, d *request.Draft) error {
	f.saves++
	f.drafts[d.ID()] = d
	f.phases[d.ID()] = d.Phase()
	return nil
}

func (f *fakeDraftRepo) CompareAndSetPhase(_ context.Context, id uuid.UUID, from, to request.Phase) error {
	f.casCalls++
	if f.phases[id] != from {
		return infra.WrapRepoErr("request phase changed concurrently", nil, infra.KindConflict)
	}
	f.phases[id] = to
	return nil
}

type fakeBookingRepo struct {
	byRequest map[uuid.UUID]*request.Booking
	creates   int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byRequest: map[uuid.UUID]*request.Booking{}}
}

func (f *fakeBookingRepo) Create(_ context.Context, _ infra.DBTX, b *request.Booking) error {
	f.creates++
	f.byRequest[b.RequestID()] = b
	return nil
}

func (f *fakeBookingRepo) FindByRequestID(_ context.Context, requestID uuid.UUID) (*request.Booking, error) {
	b, ok := f.byRequest[requestID]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return b, nil
}

type notificationJob struct {
	kind    string
	topic   string
	payload []byte
}

type fakeNotificationRepo struct {
	jobs []notificationJob
}

func (f *fakeNotificationRepo) CreateJob(_ context.Context, _ infra.DBTX, kind, topic string, payload []byte, _ time.Time) error {
	f.jobs = append(f.jobs, notificationJob{kind: kind, topic: topic, payload: payload})
	return nil
}

type fakeGuestStore struct {
	stored map[string]identity.Guest
	legacy map[string]string
	puts   int
}

func newFakeGuestStore() *fakeGuestStore {
	return &fakeGuestStore{stored: map[string]identity.Guest{}, legacy: map[string]string{}}
}

func (f *fakeGuestStore) Get(_ context.Context, guestKey string) (*identity.Guest, error) {
	g, ok := f.stored[guestKey]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeGuestStore) GetLegacy(_ context.Context, guestKey string) (string, error) {
	return f.legacy[guestKey], nil
}

func (f *fakeGuestStore) Put(_ context.Context, guestKey string, g identity.Guest) error {
	f.puts++
	f.stored[guestKey] = g
	return nil
}

type fakeUserDirectory struct {
	users map[uuid.UUID]*queries.AuthorizedUserView
}

func (f *fakeUserDirectory) FindByID(_ context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	view, ok := f.users[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return view, nil
}

type fakeForecaster struct {
	forecast *pricing.Forecast
	err      error
	calls    int
}

func (f *fakeForecaster) Forecast(_ context.Context, _ pricing.Quote) (*pricing.Forecast, error) {
	f.calls++
	return f.forecast, f.err
}

// ---------------------------------------------------------------------------
// test harness
// ---------------------------------------------------------------------------

type commandsEnv struct {
	cmds       commands.RequestCommands
	drafts     *fakeDraftRepo
	bookings   *fakeBookingRepo
	jobs       *fakeNotificationRepo
	guests     *fakeGuestStore
	users      *fakeUserDirectory
	forecaster *fakeForecaster
	clock      *clock.MockClock
}

func newCommandsEnv() *commandsEnv {
	mockClock := clock.NewMockClock(time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC))
	drafts := newFakeDraftRepo()
	bookings := newFakeBookingRepo()
	jobs := &fakeNotificationRepo{}
	guests := newFakeGuestStore()
	users := &fakeUserDirectory{users: map[uuid.UUID]*queries.AuthorizedUserView{}}
	forecaster := &fakeForecaster{
		forecast: builder.ForecastFor("2024-03-01", map[int]float64{1: 80.00, 2: 120.00}),
	}
	resolver := commands.NewContactResolver(users, guests, mockClock)

	return &commandsEnv{
		cmds:       commands.NewRequestCommands(drafts, bookings, jobs, guests, resolver, forecaster, fakeTxRunner{}, mockClock),
		drafts:     drafts,
		bookings:   bookings,
		jobs:       jobs,
		guests:     guests,
		users:      users,
		forecaster: forecaster,
		clock:      mockClock,
	}
}

func guestActor(key string) commands.Actor {
	return commands.Actor{GuestKey: key}
}

func (e *commandsEnv) registerUser(name, email string) (uuid.UUID, commands.Actor) {
	id := uuid.New()
	phone := "0861112222"
	e.users.users[id] = &queries.AuthorizedUserView{
		ID:       id,
		Email:    email,
		Role:     "operator",
		Name:     name,
		Phone:    &phone,
		IsActive: true,
	}
	return id, commands.Actor{UserID: &id}
}

func (e *commandsEnv) seedDraft(t *testing.T, b *builder.RequestBuilder) *request.Draft {
	t.Helper()
	d, err := b.BuildDraft()
	require.NoError(t, err)
	e.drafts.seed(d)
	return d
}

// ---------------------------------------------------------------------------
// SubmitStep
// ---------------------------------------------------------------------------

func TestSubmitStepCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("first step without id creates the draft", func(t *testing.T) {
		env := newCommandsEnv()

		res, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, guestActor("guest-abc"))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, res.RequestID)
		assert.Equal(t, 1, res.CompletedSteps)
		assert.Equal(t, request.PhaseEditing, res.Phase)
		assert.Equal(t, 1, env.drafts.creates)
	})

	t.Run("endpoint details land on the synthesized journey stops", func(t *testing.T) {
		env := newCommandsEnv()

		payload := builder.LocationsPayload()
		payload.RequestType = "journey"
		payload.PickupDetails = &reqdto.StopPayload{Floor: 3, HasElevator: true, Instructions: "ring twice"}

		res, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: payload}, guestActor("guest-abc"))
		require.NoError(t, err)

		stops := env.drafts.drafts[res.RequestID].Stops()
		require.Len(t, stops, 2)
		assert.Equal(t, payload.PickupAddress, stops[0].Location.Address)
		assert.Equal(t, 3, stops[0].Floor)
		assert.True(t, stops[0].HasElevator)
		assert.Equal(t, "ring twice", stops[0].Instructions)
		assert.Equal(t, 0, stops[1].Floor)
	})

	t.Run("later steps keep the id issued on create", func(t *testing.T) {
		env := newCommandsEnv()

		first, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, guestActor("guest-abc"))
		require.NoError(t, err)

		second, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{RequestID: &first.RequestID, Items: builder.ItemsPayload()}, guestActor("guest-abc"))
		require.NoError(t, err)

		assert.Equal(t, first.RequestID, second.RequestID)
		assert.Equal(t, 2, second.CompletedSteps)
		assert.Equal(t, 1, env.drafts.creates)
	})

	t.Run("missing id on a later step is rejected", func(t *testing.T) {
		env := newCommandsEnv()

		_, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{Items: builder.ItemsPayload()}, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrRequestIDRequired)
	})

	t.Run("anonymous actor cannot create a draft", func(t *testing.T) {
		env := newCommandsEnv()

		_, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, commands.Actor{})
		assert.ErrorIs(t, err, commands.ErrRequestNotFound)
		assert.Equal(t, 0, env.drafts.creates)
	})

	t.Run("step out of range", func(t *testing.T) {
		env := newCommandsEnv()

		for _, step := range []int{0, 4, -1} {
			_, err := env.cmds.SubmitStep(ctx, step, reqdto.SubmitStepRequest{}, guestActor("guest-abc"))
			assert.ErrorIs(t, err, commands.ErrUnknownStep)
		}
	})
}

func TestSubmitStepGating(t *testing.T) {
	ctx := context.Background()

	t.Run("validation failure writes nothing", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(1))
		id := d.ID()

		_, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{RequestID: &id, Items: &reqdto.ItemsStep{}}, guestActor("guest-abc"))

		var verr *commands.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "items")
		assert.Equal(t, 0, env.drafts.saves)
		assert.Equal(t, 0, env.drafts.casCalls)
	})

	t.Run("skipping ahead is out of order", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(1))
		id := d.ID()

		_, err := env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload("2024-03-01")}, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrStepOutOfOrder)
		assert.Equal(t, 0, env.drafts.saves)
	})

	t.Run("concurrent submission loses the phase race", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(1))
		id := d.ID()
		env.drafts.phases[id] = request.PhaseSubmitting

		_, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrSubmissionInFlight)
		assert.Equal(t, 0, env.drafts.saves)
	})

	t.Run("non-owner sees not found", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(1))
		id := d.ID()

		_, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, guestActor("guest-other"))
		assert.ErrorIs(t, err, commands.ErrRequestNotFound)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		env := newCommandsEnv()
		id := uuid.New()

		_, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrRequestNotFound)
	})

	t.Run("resubmitting a finished step is allowed", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(2))
		id := d.ID()

		res, err := env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, guestActor("guest-abc"))
		require.NoError(t, err)
		assert.Equal(t, 2, res.CompletedSteps)
		assert.Equal(t, request.PhaseEditing, env.drafts.phases[id])
	})
}

func TestSubmitScheduleStep(t *testing.T) {
	ctx := context.Background()

	t.Run("session user gets a forecast without capture", func(t *testing.T) {
		env := newCommandsEnv()
		userID, actor := env.registerUser("Aoife Kelly", "operator@example.com")
		d := env.seedDraft(t, builder.NewRequestBuilder().With(func(b *builder.RequestBuilder) {
			b.UserID = &userID
			b.GuestKey = ""
			b.CompletedSteps = 2
		}))
		id := d.ID()

		res, err := env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload("2024-03-01")}, actor)
		require.NoError(t, err)

		assert.Equal(t, request.PhaseForecast, res.Phase)
		assert.Equal(t, request.StepsTotal, res.CompletedSteps)
		require.NotNil(t, res.Forecast)
		assert.Equal(t, "operator@example.com", d.Contact().Email)
		assert.Equal(t, request.PhaseForecast, env.drafts.phases[id])
	})

	t.Run("guest with stored identity skips capture", func(t *testing.T) {
		env := newCommandsEnv()
		env.guests.stored["guest-abc"] = identity.Guest{
			Name:    "Sam Byrne",
			Email:   "sam@example.com",
			Phone:   "0851234567",
			SavedAt: env.clock.Now().AddDate(0, 0, -3),
		}
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(2))
		id := d.ID()

		res, err := env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload("2024-03-01")}, guestActor("guest-abc"))
		require.NoError(t, err)

		assert.Equal(t, request.PhaseForecast, res.Phase)
		assert.Equal(t, "sam@example.com", d.Contact().Email)
	})

	t.Run("unknown guest parks the draft on contact capture", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(2))
		id := d.ID()

		_, err := env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload("2024-03-01")}, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrContactDetailsRequired)

		assert.Equal(t, request.PhaseAwaitingContact, env.drafts.phases[id])
		assert.Equal(t, 0, env.forecaster.calls)
	})

	t.Run("forecaster failure surfaces and releases the guard", func(t *testing.T) {
		env := newCommandsEnv()
		env.forecaster.forecast = nil
		env.forecaster.err = assert.AnError
		userID, actor := env.registerUser("Aoife Kelly", "operator@example.com")
		d := env.seedDraft(t, builder.NewRequestBuilder().With(func(b *builder.RequestBuilder) {
			b.UserID = &userID
			b.GuestKey = ""
			b.CompletedSteps = 2
		}))
		id := d.ID()

		_, err := env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload("2024-03-01")}, actor)
		assert.ErrorIs(t, err, commands.ErrForecastUnavailable)
		assert.Equal(t, request.PhaseEditing, env.drafts.phases[id])
	})
}

// ---------------------------------------------------------------------------
// CaptureContact
// ---------------------------------------------------------------------------

func TestCaptureContact(t *testing.T) {
	ctx := context.Background()
	contact := reqdto.CaptureContactRequest{Name: "Sam Byrne", Email: "sam@example.com", Phone: "0851234567"}

	parkOnCapture := func(t *testing.T, env *commandsEnv) uuid.UUID {
		t.Helper()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(2))
		id := d.ID()
		_, err := env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload("2024-03-01")}, guestActor("guest-abc"))
		require.ErrorIs(t, err, commands.ErrContactDetailsRequired)
		return id
	}

	t.Run("capture resumes the parked submission", func(t *testing.T) {
		env := newCommandsEnv()
		id := parkOnCapture(t, env)

		res, err := env.cmds.CaptureContact(ctx, id, contact, guestActor("guest-abc"))
		require.NoError(t, err)

		assert.Equal(t, request.PhaseForecast, res.Phase)
		require.NotNil(t, res.Forecast)
		assert.Equal(t, 1, env.guests.puts)
		assert.Equal(t, "sam@example.com", env.guests.stored["guest-abc"].Email)
	})

	t.Run("second capture finds nothing pending", func(t *testing.T) {
		env := newCommandsEnv()
		id := parkOnCapture(t, env)

		_, err := env.cmds.CaptureContact(ctx, id, contact, guestActor("guest-abc"))
		require.NoError(t, err)

		_, err = env.cmds.CaptureContact(ctx, id, contact, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrNoCapturePending)
		assert.Equal(t, 1, env.forecaster.calls)
	})

	t.Run("capture on an editing draft finds nothing pending", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(2))

		_, err := env.cmds.CaptureContact(ctx, d.ID(), contact, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrNoCapturePending)
	})

	t.Run("invalid contact details fail before any write", func(t *testing.T) {
		env := newCommandsEnv()
		id := parkOnCapture(t, env)
		savesBefore := env.drafts.saves

		_, err := env.cmds.CaptureContact(ctx, id, reqdto.CaptureContactRequest{Name: "Sam"}, guestActor("guest-abc"))

		var verr *commands.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "phone")
		assert.Equal(t, savesBefore, env.drafts.saves)
		assert.Equal(t, request.PhaseAwaitingContact, env.drafts.phases[id])
	})
}

// ---------------------------------------------------------------------------
// SelectPrice / DiscardForecast
// ---------------------------------------------------------------------------

func TestSelectPrice(t *testing.T) {
	ctx := context.Background()
	forecast := builder.ForecastFor("2024-03-01", map[int]float64{1: 80.00, 2: 120.00})

	t.Run("matching cell is recorded", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithForecast(forecast))

		res, err := env.cmds.SelectPrice(ctx, d.ID(), reqdto.SelectPriceRequest{Date: "2024-03-01", StaffCount: 2, Price: 120.00}, guestActor("guest-abc"))
		require.NoError(t, err)

		assert.Equal(t, request.PhaseConfirming, res.Phase)
		require.NotNil(t, d.Selection())
		assert.Equal(t, 2, d.Selection().StaffCount)
	})

	t.Run("stale price is rejected", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithForecast(forecast))

		_, err := env.cmds.SelectPrice(ctx, d.ID(), reqdto.SelectPriceRequest{Date: "2024-03-01", StaffCount: 2, Price: 119.99}, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrSelectionInvalid)
		assert.Equal(t, 0, env.drafts.saves)
	})

	t.Run("selection without a forecast", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(2))

		_, err := env.cmds.SelectPrice(ctx, d.ID(), reqdto.SelectPriceRequest{Date: "2024-03-01", StaffCount: 2, Price: 120.00}, guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrForecastUnavailable)
	})
}

func TestDiscardForecast(t *testing.T) {
	ctx := context.Background()

	t.Run("returns to the schedule step with the same id", func(t *testing.T) {
		env := newCommandsEnv()
		forecast := builder.ForecastFor("2024-03-01", map[int]float64{2: 120.00})
		d := env.seedDraft(t, builder.NewRequestBuilder().WithForecast(forecast))

		res, err := env.cmds.DiscardForecast(ctx, d.ID(), guestActor("guest-abc"))
		require.NoError(t, err)

		assert.Equal(t, d.ID(), res.RequestID)
		assert.Equal(t, request.PhaseEditing, res.Phase)
		assert.Equal(t, request.StepsTotal-1, res.CompletedSteps)
		assert.Nil(t, res.Forecast)
	})

	t.Run("nothing to discard while editing", func(t *testing.T) {
		env := newCommandsEnv()
		d := env.seedDraft(t, builder.NewRequestBuilder().WithCompletedSteps(1))

		_, err := env.cmds.DiscardForecast(ctx, d.ID(), guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrIllegalState)
	})
}

// ---------------------------------------------------------------------------
// Confirm
// ---------------------------------------------------------------------------

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	selectedDraft := func(t *testing.T, env *commandsEnv) *request.Draft {
		t.Helper()
		forecast := builder.ForecastFor("2024-03-01", map[int]float64{2: 120.00})
		d := env.seedDraft(t, builder.NewRequestBuilder().WithForecast(forecast))
		_, err := env.cmds.SelectPrice(ctx, d.ID(), reqdto.SelectPriceRequest{Date: "2024-03-01", StaffCount: 2, Price: 120.00}, guestActor("guest-abc"))
		require.NoError(t, err)
		return d
	}

	t.Run("books the selection and queues a notification", func(t *testing.T) {
		env := newCommandsEnv()
		d := selectedDraft(t, env)

		res, err := env.cmds.Confirm(ctx, d.ID(), guestActor("guest-abc"))
		require.NoError(t, err)

		assert.NotEmpty(t, res.BookingReference)
		assert.Equal(t, 120.00, res.TotalPrice)
		assert.False(t, res.IsReplayed)
		assert.Equal(t, request.StatusBooked, d.Status())

		require.Len(t, env.jobs.jobs, 1)
		assert.Equal(t, "email", env.jobs.jobs[0].kind)
		assert.Equal(t, "request_booked", env.jobs.jobs[0].topic)
		assert.Contains(t, string(env.jobs.jobs[0].payload), res.BookingReference)
	})

	t.Run("confirming again replays the booking", func(t *testing.T) {
		env := newCommandsEnv()
		d := selectedDraft(t, env)

		first, err := env.cmds.Confirm(ctx, d.ID(), guestActor("guest-abc"))
		require.NoError(t, err)

		second, err := env.cmds.Confirm(ctx, d.ID(), guestActor("guest-abc"))
		require.NoError(t, err)

		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.BookingReference, second.BookingReference)
		assert.Equal(t, first.TotalPrice, second.TotalPrice)
		assert.Equal(t, 1, env.bookings.creates)
		assert.Len(t, env.jobs.jobs, 1)
	})

	t.Run("confirm without a selection", func(t *testing.T) {
		env := newCommandsEnv()
		forecast := builder.ForecastFor("2024-03-01", map[int]float64{2: 120.00})
		d := env.seedDraft(t, builder.NewRequestBuilder().WithForecast(forecast))

		_, err := env.cmds.Confirm(ctx, d.ID(), guestActor("guest-abc"))
		assert.ErrorIs(t, err, commands.ErrIllegalState)
		assert.Equal(t, 0, env.bookings.creates)
	})

	t.Run("non-owner cannot confirm", func(t *testing.T) {
		env := newCommandsEnv()
		d := selectedDraft(t, env)

		_, err := env.cmds.Confirm(ctx, d.ID(), guestActor("guest-other"))
		assert.ErrorIs(t, err, commands.ErrRequestNotFound)
	})
}

// ---------------------------------------------------------------------------
// full wizard walk
// ---------------------------------------------------------------------------

func TestGuestWizardFlow(t *testing.T) {
	ctx := context.Background()
	env := newCommandsEnv()
	actor := guestActor("guest-flow")

	first, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: builder.JourneyLocationsPayload()}, actor)
	require.NoError(t, err)
	id := first.RequestID

	_, err = env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{RequestID: &id, Items: builder.ItemsPayload()}, actor)
	require.NoError(t, err)

	_, err = env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{RequestID: &id, Schedule: builder.SchedulePayload("2024-03-01")}, actor)
	require.ErrorIs(t, err, commands.ErrContactDetailsRequired)

	captured, err := env.cmds.CaptureContact(ctx, id, reqdto.CaptureContactRequest{
		Name:  "Sam Byrne",
		Email: "sam@example.com",
		Phone: "0851234567",
	}, actor)
	require.NoError(t, err)
	require.NotNil(t, captured.Forecast)
	assert.Equal(t, id, captured.RequestID)

	_, err = env.cmds.SelectPrice(ctx, id, reqdto.SelectPriceRequest{Date: "2024-03-01", StaffCount: 2, Price: 120.00}, actor)
	require.NoError(t, err)

	confirmed, err := env.cmds.Confirm(ctx, id, actor)
	require.NoError(t, err)
	assert.NotEmpty(t, confirmed.BookingReference)
	assert.Equal(t, 120.00, confirmed.TotalPrice)

	// The identity captured mid-flow is reusable on the next request from
	// the same device.
	second, err := env.cmds.SubmitStep(ctx, 1, reqdto.SubmitStepRequest{Locations: builder.LocationsPayload()}, actor)
	require.NoError(t, err)
	_, err = env.cmds.SubmitStep(ctx, 2, reqdto.SubmitStepRequest{RequestID: &second.RequestID, Items: builder.ItemsPayload()}, actor)
	require.NoError(t, err)
	res, err := env.cmds.SubmitStep(ctx, 3, reqdto.SubmitStepRequest{RequestID: &second.RequestID, Schedule: builder.SchedulePayload("2024-03-02")}, actor)
	require.NoError(t, err)
	assert.Equal(t, request.PhaseForecast, res.Phase)
}
