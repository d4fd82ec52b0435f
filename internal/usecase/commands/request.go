package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"wasteops/internal/domain/identity"
	"wasteops/internal/domain/pricing"
	"wasteops/internal/domain/request"
	reqdto "wasteops/internal/handler/dto/request"
	"wasteops/internal/infra"
	"wasteops/internal/pkg/clock"
	"wasteops/internal/pkg/errs"
	"wasteops/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrRequestNotFound         = errs.New("request not found")
	ErrRequestIDRequired       = errs.New("request id required")
	ErrUnknownStep             = errs.New("unknown step")
	ErrStepOutOfOrder          = errs.New("step out of order")
	ErrSubmissionInFlight      = errs.New("submission already in flight")
	ErrContactDetailsRequired  = errs.New("contact details required")
	ErrContactCapturePending   = errs.New("contact capture pending")
	ErrNoCapturePending        = errs.New("no contact capture pending")
	ErrForecastUnavailable     = errs.New("price forecast unavailable")
	ErrSelectionInvalid        = errs.New("price selection invalid")
	ErrIllegalState            = errs.New("operation not allowed in current state")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

type SubmitStepResult struct {
	RequestID      uuid.UUID
	CompletedSteps int
	Phase          request.Phase
	Forecast       *pricing.Forecast
}

type ConfirmResult struct {
	BookingReference string
	TotalPrice       float64
	IsReplayed       bool
}

type RequestCommands interface {
	SubmitStep(ctx context.Context, step int, req reqdto.SubmitStepRequest, actor Actor) (*SubmitStepResult, error)
	CaptureContact(ctx context.Context, requestID uuid.UUID, req reqdto.CaptureContactRequest, actor Actor) (*SubmitStepResult, error)
	SelectPrice(ctx context.Context, requestID uuid.UUID, req reqdto.SelectPriceRequest, actor Actor) (*SubmitStepResult, error)
	DiscardForecast(ctx context.Context, requestID uuid.UUID, actor Actor) (*SubmitStepResult, error)
	Confirm(ctx context.Context, requestID uuid.UUID, actor Actor) (*ConfirmResult, error)
}

type requestCommandsImpl struct {
	drafts        DraftRepository
	bookings      BookingRepository
	notifications NotificationRepository
	guests        GuestIdentityStore
	resolver      ContactResolver
	forecaster    pricing.Forecaster
	tx            shared.TxRunner
	clock         clock.Clock
}

func NewRequestCommands(
	drafts DraftRepository,
	bookings BookingRepository,
	notifications NotificationRepository,
	guests GuestIdentityStore,
	resolver ContactResolver,
	forecaster pricing.Forecaster,
	tx shared.TxRunner,
	clock clock.Clock,
) RequestCommands {
	return &requestCommandsImpl{
		drafts:        drafts,
		bookings:      bookings,
		notifications: notifications,
		guests:        guests,
		resolver:      resolver,
		forecaster:    forecaster,
		tx:            tx,
		clock:         clock,
	}
}

// SubmitStep validates and applies one wizard step. The step's validator
// runs before any write: a validation failure never touches storage. The
// persisted submitting phase is the re-entrancy guard and is cleared on
// every exit path.
func (r *requestCommandsImpl) SubmitStep(ctx context.Context, step int, req reqdto.SubmitStepRequest, actor Actor) (*SubmitStepResult, error) {
	if step < 1 || step > request.StepsTotal {
		return nil, ErrUnknownStep
	}

	if req.RequestID == nil {
		if step != request.StepLocations {
			return nil, ErrRequestIDRequired
		}
		return r.createDraft(ctx, req, actor)
	}

	d, err := r.loadOwned(ctx, *req.RequestID, actor)
	if err != nil {
		return nil, err
	}

	if err := d.CanSubmitStep(step); err != nil {
		return nil, r.mapGateError(d, err)
	}

	apply, err := r.stepApplier(step, req)
	if err != nil {
		return nil, err
	}

	if err := r.drafts.CompareAndSetPhase(ctx, d.ID(), request.PhaseEditing, request.PhaseSubmitting); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrSubmissionInFlight
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	released := false
	defer r.releaseGuard(ctx, d.ID(), &released)

	if err := d.BeginSubmission(); err != nil {
		return nil, ErrIllegalState
	}
	if err := apply(d); err != nil {
		return nil, err
	}

	if step < request.StepsTotal {
		if err := d.FinishStep(step); err != nil {
			return nil, ErrIllegalState
		}
		if err := r.drafts.Save(ctx, r.tx.DB(), d); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		released = true
		return resultFromDraft(d), nil
	}

	return r.completeScheduleStep(ctx, d, actor, &released)
}

func (r *requestCommandsImpl) createDraft(ctx context.Context, req reqdto.SubmitStepRequest, actor Actor) (*SubmitStepResult, error) {
	if actor.UserID == nil && actor.GuestKey == "" {
		return nil, ErrRequestNotFound
	}
	if err := validateLocationsStep(req.Locations); err != nil {
		return nil, err
	}

	rt, err := request.NewType(req.Locations.RequestType)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"request_type": "must be instant or journey"}}
	}

	d, err := request.NewDraft(rt, actor.UserID, actor.GuestKey, r.clock)
	if err != nil {
		return nil, ErrIllegalState
	}

	if err := d.BeginSubmission(); err != nil {
		return nil, ErrIllegalState
	}
	if err := applyLocations(d, req.Locations); err != nil {
		return nil, err
	}
	if err := d.FinishStep(request.StepLocations); err != nil {
		return nil, ErrIllegalState
	}

	if err := r.drafts.Create(ctx, r.tx.DB(), d); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return resultFromDraft(d), nil
}

// CaptureContact resumes a terminal submission parked on identity capture.
// The awaiting_contact→submitting transition is compare-and-set, so the
// suspended continuation runs exactly once no matter how often the capture
// form is resubmitted.
func (r *requestCommandsImpl) CaptureContact(ctx context.Context, requestID uuid.UUID, req reqdto.CaptureContactRequest, actor Actor) (*SubmitStepResult, error) {
	if err := validateContact(req); err != nil {
		return nil, err
	}

	d, err := r.loadOwned(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	if err := r.drafts.CompareAndSetPhase(ctx, d.ID(), request.PhaseAwaitingContact, request.PhaseSubmitting); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrNoCapturePending
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	released := false
	defer r.releaseGuard(ctx, d.ID(), &released)

	if err := d.ResumeFromContact(); err != nil {
		return nil, ErrIllegalState
	}

	g := identity.Guest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		SavedAt: r.clock.Now(),
	}
	d.SetContact(request.Contact{Name: g.Name, Email: g.Email, Phone: g.Phone})

	if actor.GuestKey != "" {
		// Cache for the next request from this device. Not worth failing
		// the submission over.
		if putErr := r.guests.Put(ctx, actor.GuestKey, g); putErr != nil {
			slog.Warn("failed to cache guest identity", "error", putErr)
		}
	}

	return r.completeScheduleStep(ctx, d, actor, &released)
}

// completeScheduleStep runs the terminal half of the wizard: resolve
// identity, synthesize stops, fetch the forecast and store it.
func (r *requestCommandsImpl) completeScheduleStep(ctx context.Context, d *request.Draft, actor Actor, released *bool) (*SubmitStepResult, error) {
	res, err := r.resolver.Resolve(ctx, d, actor)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if !res.Resolved {
		if err := d.AwaitContact(); err != nil {
			return nil, ErrIllegalState
		}
		if err := r.drafts.Save(ctx, r.tx.DB(), d); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		*released = true
		return nil, ErrContactDetailsRequired
	}

	d.SetContact(request.Contact{
		Name:   res.Identity.Name,
		Email:  res.Identity.Email,
		Phone:  res.Identity.Phone,
		UserID: res.Identity.UserID,
	})
	d.EnsureStopsForSubmission()

	forecast, err := r.forecaster.Forecast(ctx, quoteFromDraft(d))
	if err != nil {
		return nil, errs.Mark(err, ErrForecastUnavailable)
	}
	if forecast == nil || len(forecast.Days) == 0 {
		return nil, ErrForecastUnavailable
	}

	if err := d.AcceptForecast(forecast); err != nil {
		return nil, ErrIllegalState
	}
	if err := r.drafts.Save(ctx, r.tx.DB(), d); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	*released = true

	return resultFromDraft(d), nil
}

// SelectPrice records a forecast cell choice on the draft. Pure local
// state: the backend is not asked to book anything yet.
func (r *requestCommandsImpl) SelectPrice(ctx context.Context, requestID uuid.UUID, req reqdto.SelectPriceRequest, actor Actor) (*SubmitStepResult, error) {
	if err := validateSelection(req); err != nil {
		return nil, err
	}

	d, err := r.loadOwned(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	sel := pricing.Selection{Date: req.Date, StaffCount: req.StaffCount, Price: req.Price}
	if err := d.SelectPrice(sel); err != nil {
		switch {
		case errors.Is(err, request.ErrSelectionMismatch):
			return nil, ErrSelectionInvalid
		case errors.Is(err, request.ErrNoForecast), d.Forecast() == nil:
			// A draft still on the schedule step has no stored matrix to
			// select from, whatever phase it is in.
			return nil, ErrForecastUnavailable
		default:
			return nil, ErrIllegalState
		}
	}

	if err := r.drafts.Save(ctx, r.tx.DB(), d); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return resultFromDraft(d), nil
}

// DiscardForecast is the back action from the forecast display: the matrix
// and selection are dropped, the draft returns to the schedule step and
// keeps its request id.
func (r *requestCommandsImpl) DiscardForecast(ctx context.Context, requestID uuid.UUID, actor Actor) (*SubmitStepResult, error) {
	d, err := r.loadOwned(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	if err := d.DiscardForecast(); err != nil {
		return nil, ErrIllegalState
	}
	if err := r.drafts.Save(ctx, r.tx.DB(), d); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return resultFromDraft(d), nil
}

// Confirm finalizes the booking: booking row, notification job and draft
// completion in one transaction. Confirming an already-booked request
// replays the existing booking reference.
func (r *requestCommandsImpl) Confirm(ctx context.Context, requestID uuid.UUID, actor Actor) (*ConfirmResult, error) {
	d, err := r.loadOwned(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	if d.Status() == request.StatusBooked {
		existing, findErr := r.bookings.FindByRequestID(ctx, d.ID())
		if findErr != nil {
			return nil, errs.Mark(findErr, ErrDatabaseOperationFailed)
		}
		return &ConfirmResult{
			BookingReference: existing.Reference(),
			TotalPrice:       existing.TotalPrice(),
			IsReplayed:       true,
		}, nil
	}

	if err := d.ConfirmBooked(); err != nil {
		return nil, ErrIllegalState
	}

	booking, err := request.NewBooking(d, r.clock.Now())
	if err != nil {
		return nil, ErrIllegalState
	}

	payload, err := json.Marshal(map[string]any{
		"request_id": d.ID(),
		"reference":  booking.Reference(),
		"email":      d.Contact().Email,
		"type":       "request_booked",
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	err = r.tx.Within(ctx, func(ctx context.Context, db infra.DBTX) error {
		if err := r.bookings.Create(ctx, db, booking); err != nil {
			return err
		}
		if err := r.notifications.CreateJob(ctx, db, "email", "request_booked", payload, r.clock.Now()); err != nil {
			return err
		}
		return r.drafts.Save(ctx, db, d)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return &ConfirmResult{
		BookingReference: booking.Reference(),
		TotalPrice:       booking.TotalPrice(),
	}, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (r *requestCommandsImpl) loadOwned(ctx context.Context, id uuid.UUID, actor Actor) (*request.Draft, error) {
	d, err := r.drafts.Find(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !d.OwnedBy(actor.UserID, actor.GuestKey) {
		// Hide existence from non-owners.
		return nil, ErrRequestNotFound
	}
	return d, nil
}

func (r *requestCommandsImpl) mapGateError(d *request.Draft, err error) error {
	switch {
	case errors.Is(err, request.ErrUnknownStep):
		return ErrUnknownStep
	case errors.Is(err, request.ErrStepOutOfOrder):
		return ErrStepOutOfOrder
	case errors.Is(err, request.ErrIllegalPhase):
		switch d.Phase() {
		case request.PhaseSubmitting:
			return ErrSubmissionInFlight
		case request.PhaseAwaitingContact:
			return ErrContactCapturePending
		default:
			return ErrIllegalState
		}
	default:
		return ErrIllegalState
	}
}

// releaseGuard returns a draft stuck in submitting back to editing. Runs
// deferred so no exit path leaves the guard set.
func (r *requestCommandsImpl) releaseGuard(ctx context.Context, id uuid.UUID, released *bool) {
	if *released {
		return
	}
	if err := r.drafts.CompareAndSetPhase(ctx, id, request.PhaseSubmitting, request.PhaseEditing); err != nil && !infra.IsKind(err, infra.KindConflict) {
		slog.Error("failed to release submission guard", "request_id", id, "error", err)
	}
}

func (r *requestCommandsImpl) stepApplier(step int, req reqdto.SubmitStepRequest) (func(*request.Draft) error, error) {
	switch step {
	case request.StepLocations:
		if err := validateLocationsStep(req.Locations); err != nil {
			return nil, err
		}
		return func(d *request.Draft) error {
			return applyLocations(d, req.Locations)
		}, nil

	case request.StepItems:
		if err := validateItemsStep(req.Items); err != nil {
			return nil, err
		}
		return func(d *request.Draft) error {
			return applyItems(d, req.Items)
		}, nil

	case request.StepSchedule:
		if err := validateScheduleStep(req.Schedule, r.clock.Now()); err != nil {
			return nil, err
		}
		return func(d *request.Draft) error {
			return applySchedule(d, req.Schedule)
		}, nil

	default:
		return nil, ErrUnknownStep
	}
}

func applyLocations(d *request.Draft, p *reqdto.LocationsStep) error {
	if err := d.SetRequestType(request.Type(p.RequestType)); err != nil {
		return ErrIllegalState
	}

	if err := d.UpdateStopAddress(request.StopPickup, p.PickupAddress, p.PickupPostcode, p.PickupLat, p.PickupLng); err != nil {
		return ErrIllegalState
	}
	if err := d.UpdateStopAddress(request.StopDropoff, p.DropoffAddress, p.DropoffPostcode, p.DropoffLat, p.DropoffLng); err != nil {
		return ErrIllegalState
	}

	if d.RequestType() == request.TypeJourney {
		if len(p.Stops) > 0 {
			if err := d.ReplaceStops(stopsFromPayload(p.Stops)); err != nil {
				return &ValidationError{Fields: map[string]string{"stops": err.Error()}}
			}
		} else {
			d.InitializeJourneyStops()
		}
		if p.PickupDetails != nil {
			if err := d.SetStopDetails(request.StopPickup, stopFromPayload(*p.PickupDetails)); err != nil {
				return ErrIllegalState
			}
		}
		if p.DropoffDetails != nil {
			if err := d.SetStopDetails(request.StopDropoff, stopFromPayload(*p.DropoffDetails)); err != nil {
				return ErrIllegalState
			}
		}
	}
	return nil
}

func applyItems(d *request.Draft, p *reqdto.ItemsStep) error {
	items := make([]request.MovingItem, len(p.Items))
	for i, item := range p.Items {
		items[i] = request.MovingItem{
			Name:        item.Name,
			Category:    item.Category,
			Quantity:    item.Quantity,
			WeightKG:    item.WeightKG,
			Dimensions:  item.Dimensions,
			ValueEUR:    item.ValueEUR,
			Fragile:     item.Fragile,
			Disassembly: item.Disassembly,
			PhotoRef:    item.PhotoRef,
		}
	}
	if err := d.SetItems(items); err != nil {
		return &ValidationError{Fields: map[string]string{"items": err.Error()}}
	}
	return nil
}

func applySchedule(d *request.Draft, p *reqdto.ScheduleStep) error {
	date, err := time.Parse(pricing.DateLayout, p.PreferredDate)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"preferred_date": "must be formatted YYYY-MM-DD"}}
	}
	if err := d.SetSchedule(request.Schedule{
		PreferredDate: date,
		TimeWindow:    request.TimeWindow(p.TimeWindow),
		Speed:         request.ServiceSpeed(p.ServiceSpeed),
		Flexible:      p.Flexible,
	}); err != nil {
		return &ValidationError{Fields: map[string]string{"schedule": err.Error()}}
	}
	return nil
}

func stopsFromPayload(payload []reqdto.StopPayload) []request.JourneyStop {
	stops := make([]request.JourneyStop, len(payload))
	for i, s := range payload {
		stops[i] = stopFromPayload(s)
	}
	return stops
}

func stopFromPayload(s reqdto.StopPayload) request.JourneyStop {
	return request.JourneyStop{
		Type: request.StopType(s.Type),
		Location: request.Location{
			Address:  s.Address,
			Postcode: s.Postcode,
			Lat:      s.Lat,
			Lng:      s.Lng,
		},
		UnitNumber:     s.UnitNumber,
		Floor:          s.Floor,
		HasElevator:    s.HasElevator,
		ParkingInfo:    s.ParkingInfo,
		Instructions:   s.Instructions,
		PropertyType:   s.PropertyType,
		NumberOfRooms:  s.NumberOfRooms,
		NumberOfFloors: s.NumberOfFloors,
	}
}

func quoteFromDraft(d *request.Draft) pricing.Quote {
	items := make([]pricing.ItemSpec, len(d.Items()))
	for i, item := range d.Items() {
		items[i] = pricing.ItemSpec{
			Quantity:    item.Quantity,
			WeightKG:    item.WeightKG,
			Fragile:     item.Fragile,
			Disassembly: item.Disassembly,
		}
	}

	q := pricing.Quote{
		StopCount: len(d.Stops()),
		Items:     items,
	}
	if s := d.Schedule(); s != nil {
		q.PreferredDate = s.PreferredDate
		q.Speed = string(s.Speed)
		q.Flexible = s.Flexible
	}
	return q
}

func resultFromDraft(d *request.Draft) *SubmitStepResult {
	return &SubmitStepResult{
		RequestID:      d.ID(),
		CompletedSteps: d.CompletedSteps(),
		Phase:          d.Phase(),
		Forecast:       d.Forecast(),
	}
}
