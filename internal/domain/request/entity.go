package request

import (
	"errors"
	"time"

	"wasteops/internal/domain/pricing"
	"wasteops/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrInvalidRequestType  = errors.New("invalid request type")
	ErrInvalidStopRole     = errors.New("invalid stop role")
	ErrNotJourneyRequest   = errors.New("stop list only valid for journey requests")
	ErrTooFewStops         = errors.New("journey requires at least two stops")
	ErrFirstStopNotPickup  = errors.New("first stop must be a pickup")
	ErrLastStopNotDropoff  = errors.New("last stop must be a dropoff")
	ErrItemNameRequired    = errors.New("item name is required")
	ErrItemQuantityInvalid = errors.New("item quantity must be at least 1")
	ErrIllegalPhase        = errors.New("operation not allowed in current phase")
	ErrStepOutOfOrder      = errors.New("step submitted out of order")
	ErrUnknownStep         = errors.New("unknown step")
	ErrNoForecast          = errors.New("no price forecast on draft")
	ErrSelectionMismatch   = errors.New("selection does not match forecast")
	ErrContactUnresolved   = errors.New("contact identity unresolved")
	ErrAlreadyBooked       = errors.New("request already booked")
)

// Draft is the in-progress service request: single source of truth for the
// wizard. Every mutation goes through a named operation so the dual-write
// address sync, mode-switch clearing and phase transitions live here and
// nowhere else.
type Draft struct {
	id             uuid.UUID
	requestType    Type
	status         Status
	phase          Phase
	completedSteps int
	userID         *uuid.UUID
	guestKey       string
	pickup         Location
	dropoff        Location
	stops          []JourneyStop
	items          []MovingItem
	schedule       *Schedule
	contact        Contact
	forecast       *pricing.Forecast
	selection      *pricing.Selection
	createdAt      time.Time
	updatedAt      time.Time
	clock          clock.Clock
}

// NewDraft creates an empty draft owned by either a session user or a
// guest key. The id doubles as the request id returned by step 1.
func NewDraft(requestType Type, userID *uuid.UUID, guestKey string, clk clock.Clock) (*Draft, error) {
	if !requestType.IsValid() {
		return nil, ErrInvalidRequestType
	}
	now := clk.Now()
	return &Draft{
		id:          uuid.New(),
		requestType: requestType,
		status:      StatusDraft,
		phase:       PhaseEditing,
		userID:      userID,
		guestKey:    guestKey,
		createdAt:   now,
		updatedAt:   now,
		clock:       clk,
	}, nil
}

func ReconstructDraft(
	id uuid.UUID,
	requestType Type,
	status Status,
	phase Phase,
	completedSteps int,
	userID *uuid.UUID,
	guestKey string,
	pickup, dropoff Location,
	stops []JourneyStop,
	items []MovingItem,
	schedule *Schedule,
	contact Contact,
	forecast *pricing.Forecast,
	selection *pricing.Selection,
	createdAt, updatedAt time.Time,
	clk clock.Clock,
) *Draft {
	return &Draft{
		id:             id,
		requestType:    requestType,
		status:         status,
		phase:          phase,
		completedSteps: completedSteps,
		userID:         userID,
		guestKey:       guestKey,
		pickup:         pickup,
		dropoff:        dropoff,
		stops:          stops,
		items:          items,
		schedule:       schedule,
		contact:        contact,
		forecast:       forecast,
		selection:      selection,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		clock:          clk,
	}
}

func (d *Draft) ID() uuid.UUID                 { return d.id }
func (d *Draft) RequestType() Type             { return d.requestType }
func (d *Draft) Status() Status                { return d.status }
func (d *Draft) Phase() Phase                  { return d.phase }
func (d *Draft) CompletedSteps() int           { return d.completedSteps }
func (d *Draft) UserID() *uuid.UUID            { return d.userID }
func (d *Draft) GuestKey() string              { return d.guestKey }
func (d *Draft) Pickup() Location              { return d.pickup }
func (d *Draft) Dropoff() Location             { return d.dropoff }
func (d *Draft) Stops() []JourneyStop          { return d.stops }
func (d *Draft) Items() []MovingItem           { return d.items }
func (d *Draft) Schedule() *Schedule           { return d.schedule }
func (d *Draft) Contact() Contact              { return d.contact }
func (d *Draft) Forecast() *pricing.Forecast   { return d.forecast }
func (d *Draft) Selection() *pricing.Selection { return d.selection }
func (d *Draft) CreatedAt() time.Time          { return d.createdAt }
func (d *Draft) UpdatedAt() time.Time          { return d.updatedAt }

func (d *Draft) touch() {
	d.updatedAt = d.clock.Now()
}

// OwnedBy reports whether the given actor may operate on this draft.
func (d *Draft) OwnedBy(userID *uuid.UUID, guestKey string) bool {
	if d.userID != nil {
		return userID != nil && *d.userID == *userID
	}
	return d.guestKey != "" && d.guestKey == guestKey
}

// SetRequestType switches between instant and journey mode. Switching away
// from journey clears the stop list; the instant pair is synthesized
// server-side at submission time.
func (d *Draft) SetRequestType(t Type) error {
	if !t.IsValid() {
		return ErrInvalidRequestType
	}
	if d.requestType == TypeJourney && t != TypeJourney {
		d.stops = nil
	}
	d.requestType = t
	d.touch()
	return nil
}

// SetStopDetails overwrites the property metadata of every stop in the
// given endpoint role. Address, sequence and role survive the overwrite;
// only the per-stop detail fields change.
func (d *Draft) SetStopDetails(role StopType, details JourneyStop) error {
	if role != StopPickup && role != StopDropoff {
		return ErrInvalidStopRole
	}
	for i := range d.stops {
		if d.stops[i].Type == role {
			loc := d.stops[i].Location
			seq := d.stops[i].Sequence
			d.stops[i] = details
			d.stops[i].Type = role
			d.stops[i].Location = loc
			d.stops[i].Sequence = seq
		}
	}
	d.touch()
	return nil
}

func (d *Draft) SetItems(items []MovingItem) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	d.items = items
	d.touch()
	return nil
}

// SetSchedule commits the schedule step data. A resubmitted schedule
// invalidates any previously returned forecast and selection.
func (d *Draft) SetSchedule(s Schedule) error {
	if !s.TimeWindow.IsValid() {
		return errors.New("invalid time window")
	}
	if !s.Speed.IsValid() {
		return errors.New("invalid service speed")
	}
	sc := s
	d.schedule = &sc
	d.forecast = nil
	d.selection = nil
	d.touch()
	return nil
}

func (d *Draft) SetContact(c Contact) {
	d.contact = c
	d.touch()
}

// ---------------------------------------------------------------------------
// Phase transitions. The submitting phase is the persisted re-entrancy
// guard; CompareAndSetPhase in the repository makes it race-safe, these
// methods keep the in-memory copy coherent and reject illegal jumps.
// ---------------------------------------------------------------------------

// CanSubmitStep gates a step submission before any payload is applied.
func (d *Draft) CanSubmitStep(step int) error {
	if step < 1 || step > StepsTotal {
		return ErrUnknownStep
	}
	if d.phase != PhaseEditing {
		return ErrIllegalPhase
	}
	if step > d.completedSteps+1 {
		return ErrStepOutOfOrder
	}
	return nil
}

func (d *Draft) BeginSubmission() error {
	if d.phase != PhaseEditing {
		return ErrIllegalPhase
	}
	d.phase = PhaseSubmitting
	return nil
}

// FinishStep records a completed non-terminal step and returns to editing.
func (d *Draft) FinishStep(step int) error {
	if d.phase != PhaseSubmitting {
		return ErrIllegalPhase
	}
	if step > d.completedSteps {
		d.completedSteps = step
	}
	d.phase = PhaseEditing
	d.touch()
	return nil
}

// AbortSubmission returns the draft to editing on any submission failure,
// so no exit path leaves it stuck in submitting.
func (d *Draft) AbortSubmission() {
	if d.phase == PhaseSubmitting {
		d.phase = PhaseEditing
	}
}

// AwaitContact parks the terminal submission until identity is captured.
// The parked draft is the resume token: capture resumes it exactly once.
func (d *Draft) AwaitContact() error {
	if d.phase != PhaseSubmitting {
		return ErrIllegalPhase
	}
	d.phase = PhaseAwaitingContact
	d.touch()
	return nil
}

// ResumeFromContact re-enters the suspended terminal submission.
func (d *Draft) ResumeFromContact() error {
	if d.phase != PhaseAwaitingContact {
		return ErrIllegalPhase
	}
	d.phase = PhaseSubmitting
	return nil
}

// AcceptForecast stores the priced matrix and completes the terminal step.
func (d *Draft) AcceptForecast(f *pricing.Forecast) error {
	if d.phase != PhaseSubmitting {
		return ErrIllegalPhase
	}
	if !d.contact.IsResolved() {
		return ErrContactUnresolved
	}
	if f == nil || len(f.Days) == 0 {
		return ErrNoForecast
	}
	d.forecast = f
	d.completedSteps = StepsTotal
	d.phase = PhaseForecast
	d.touch()
	return nil
}

// SelectPrice records a forecast cell choice. Pure local selection: no
// booking side effects until Confirm.
func (d *Draft) SelectPrice(sel pricing.Selection) error {
	if d.phase != PhaseForecast && d.phase != PhaseConfirming {
		return ErrIllegalPhase
	}
	if d.forecast == nil {
		return ErrNoForecast
	}
	if err := d.forecast.ValidateSelection(sel); err != nil {
		return ErrSelectionMismatch
	}
	s := sel
	d.selection = &s
	d.phase = PhaseConfirming
	d.touch()
	return nil
}

// DiscardForecast is the back action from the forecast: the matrix and any
// selection are dropped and the draft returns to the schedule step. The
// request id is untouched.
func (d *Draft) DiscardForecast() error {
	if d.phase != PhaseForecast && d.phase != PhaseConfirming {
		return ErrIllegalPhase
	}
	d.forecast = nil
	d.selection = nil
	d.completedSteps = StepsTotal - 1
	d.phase = PhaseEditing
	d.touch()
	return nil
}

// ConfirmBooked finalizes the draft after booking creation succeeded.
func (d *Draft) ConfirmBooked() error {
	if d.status == StatusBooked {
		return ErrAlreadyBooked
	}
	if d.phase != PhaseConfirming {
		return ErrIllegalPhase
	}
	if d.selection == nil {
		return ErrSelectionMismatch
	}
	d.status = StatusBooked
	d.phase = PhaseDone
	d.touch()
	return nil
}
