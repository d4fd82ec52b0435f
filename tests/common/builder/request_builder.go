//go:build unit || e2e

package builder

import (
	"time"

	"wasteops/internal/domain/pricing"
	"wasteops/internal/domain/request"
	reqdto "wasteops/internal/handler/dto/request"
	"wasteops/internal/pkg/clock"

	"github.com/google/uuid"
)

// RequestBuilder assembles drafts by walking the real transitions, so every
// built draft satisfies the aggregate's own invariants.
type RequestBuilder struct {
	RequestType    string
	UserID         *uuid.UUID
	GuestKey       string
	CompletedSteps int
	Contact        request.Contact
	Forecast       *pricing.Forecast
	Now            time.Time
}

func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		RequestType: "instant",
		GuestKey:    "guest-abc",
		Now:         time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC),
	}
}

func (b *RequestBuilder) With(mutate func(*RequestBuilder)) *RequestBuilder {
	mutate(b)
	return b
}

func (b *RequestBuilder) WithUser(id uuid.UUID) *RequestBuilder {
	b.UserID = &id
	b.GuestKey = ""
	return b
}

func (b *RequestBuilder) WithCompletedSteps(n int) *RequestBuilder {
	b.CompletedSteps = n
	return b
}

func (b *RequestBuilder) WithContact(name, email, phone string) *RequestBuilder {
	b.Contact = request.Contact{Name: name, Email: email, Phone: phone}
	return b
}

func (b *RequestBuilder) WithForecast(f *pricing.Forecast) *RequestBuilder {
	b.Forecast = f
	return b
}

// BuildDraft returns a draft in phase editing with the requested number of
// completed steps. With a forecast set, the draft lands in phase forecast
// with all steps done.
func (b *RequestBuilder) BuildDraft() (*request.Draft, error) {
	d, err := request.NewDraft(request.Type(b.RequestType), b.UserID, b.GuestKey, clock.NewMockClock(b.Now))
	if err != nil {
		return nil, err
	}

	steps := b.CompletedSteps
	if b.Forecast != nil && steps < request.StepsTotal-1 {
		steps = request.StepsTotal - 1
	}

	for step := 1; step <= steps && step < request.StepsTotal; step++ {
		if err := d.BeginSubmission(); err != nil {
			return nil, err
		}
		switch step {
		case request.StepLocations:
			if err := d.UpdateStopAddress(request.StopPickup, "12 Harbour Road, Dublin, D02 XY45", "", nil, nil); err != nil {
				return nil, err
			}
			if err := d.UpdateStopAddress(request.StopDropoff, "3 Quay Street, Galway, H91 AB12", "", nil, nil); err != nil {
				return nil, err
			}
		case request.StepItems:
			if err := d.SetItems([]request.MovingItem{{Name: "sofa", Category: "furniture", Quantity: 1}}); err != nil {
				return nil, err
			}
		}
		if err := d.FinishStep(step); err != nil {
			return nil, err
		}
	}

	if b.Forecast != nil {
		if err := d.BeginSubmission(); err != nil {
			return nil, err
		}
		if err := d.SetSchedule(request.Schedule{
			PreferredDate: b.Now.AddDate(0, 0, 5),
			TimeWindow:    request.WindowMorning,
			Speed:         request.SpeedStandard,
		}); err != nil {
			return nil, err
		}
		contact := b.Contact
		if contact.Email == "" {
			contact = request.Contact{Name: "Sam Byrne", Email: "sam@example.com", Phone: "0851234567"}
		}
		d.SetContact(contact)
		d.EnsureStopsForSubmission()
		if err := d.AcceptForecast(b.Forecast); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// DTO builders for the wizard endpoints.

func LocationsPayload() *reqdto.LocationsStep {
	return &reqdto.LocationsStep{
		RequestType:    "instant",
		PickupAddress:  "12 Harbour Road, Dublin, D02 XY45",
		DropoffAddress: "3 Quay Street, Galway, H91 AB12",
	}
}

func JourneyLocationsPayload() *reqdto.LocationsStep {
	p := LocationsPayload()
	p.RequestType = "journey"
	p.Stops = []reqdto.StopPayload{
		{Type: "pickup", Address: p.PickupAddress, Floor: 2, HasElevator: true},
		{Type: "stop", Address: "7 Mill Lane, Athlone, N37 C12", Instructions: "side gate"},
		{Type: "dropoff", Address: p.DropoffAddress, NumberOfRooms: 3},
	}
	return p
}

func ItemsPayload() *reqdto.ItemsStep {
	return &reqdto.ItemsStep{
		Items: []reqdto.ItemPayload{
			{Name: "sofa", Category: "furniture", Quantity: 1},
			{Name: "boxes", Category: "misc", Quantity: 8},
		},
	}
}

func SchedulePayload(date string) *reqdto.ScheduleStep {
	return &reqdto.ScheduleStep{
		PreferredDate: date,
		TimeWindow:    "morning",
		ServiceSpeed:  "standard",
	}
}

// ForecastFor builds a one-day forecast carrying exact prices for staff
// counts 1 through 4, anchored so selection tests can assert exact match.
func ForecastFor(date string, prices map[int]float64) *pricing.Forecast {
	staffPrices := make(map[string]pricing.StaffPrice, len(prices))
	for staff, total := range prices {
		staffPrices[pricing.StaffKey(staff)] = pricing.StaffPrice{Total: total}
	}
	return &pricing.Forecast{
		Days: []pricing.DayPrice{
			{Date: date, StaffPrices: staffPrices},
		},
		GeneratedAt: time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC),
	}
}
