package request

// Wizard step numbers. Step payloads are strict per-step subsets of the
// draft; the sequencer never accepts step n before n-1 completed.
const (
	StepLocations = 1
	StepItems     = 2
	StepSchedule  = 3

	StepsTotal = 3
)

type Type string

const (
	TypeInstant Type = "instant"
	TypeJourney Type = "journey"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeInstant, TypeJourney:
		return true
	default:
		return false
	}
}

func NewType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", ErrInvalidRequestType
	}
	return t, nil
}

type StopType string

const (
	StopPickup       StopType = "pickup"
	StopDropoff      StopType = "dropoff"
	StopIntermediate StopType = "stop"
)

func (s StopType) IsValid() bool {
	switch s {
	case StopPickup, StopDropoff, StopIntermediate:
		return true
	default:
		return false
	}
}

type ServiceSpeed string

const (
	SpeedStandard  ServiceSpeed = "standard"
	SpeedExpress   ServiceSpeed = "express"
	SpeedSameDay   ServiceSpeed = "same_day"
	SpeedScheduled ServiceSpeed = "scheduled"
)

func (s ServiceSpeed) IsValid() bool {
	switch s {
	case SpeedStandard, SpeedExpress, SpeedSameDay, SpeedScheduled:
		return true
	default:
		return false
	}
}

type TimeWindow string

const (
	WindowMorning   TimeWindow = "morning"
	WindowAfternoon TimeWindow = "afternoon"
	WindowEvening   TimeWindow = "evening"
	WindowAny       TimeWindow = "any"
)

func (w TimeWindow) IsValid() bool {
	switch w {
	case WindowMorning, WindowAfternoon, WindowEvening, WindowAny:
		return true
	default:
		return false
	}
}

// Phase is the tagged wizard state. Scattered in-flight booleans are
// collapsed into one value so every transition is checked in one place.
type Phase string

const (
	PhaseEditing         Phase = "editing"
	PhaseSubmitting      Phase = "submitting"
	PhaseAwaitingContact Phase = "awaiting_contact"
	PhaseForecast        Phase = "forecast"
	PhaseConfirming      Phase = "confirming"
	PhaseDone            Phase = "done"
)

func (p Phase) IsValid() bool {
	switch p {
	case PhaseEditing, PhaseSubmitting, PhaseAwaitingContact, PhaseForecast, PhaseConfirming, PhaseDone:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusDraft  Status = "draft"
	StatusBooked Status = "booked"
)

func (s Status) String() string {
	return string(s)
}
