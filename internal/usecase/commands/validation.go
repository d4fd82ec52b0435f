package commands

import (
	"fmt"
	"strings"
	"time"

	"wasteops/internal/domain/pricing"
	"wasteops/internal/domain/request"
	reqdto "wasteops/internal/handler/dto/request"
)

// ValidationError carries the field→message mapping a step validator
// produced. It never reaches the database: a draft is only mutated after
// its step payload validated clean.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) toError() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func validateLocationsStep(p *reqdto.LocationsStep) error {
	errs := fieldErrors{}
	if p == nil {
		errs.add("locations", "locations payload is required")
		return errs.toError()
	}

	rt := request.Type(p.RequestType)
	if !rt.IsValid() {
		errs.add("request_type", "must be instant or journey")
	}
	if strings.TrimSpace(p.PickupAddress) == "" {
		errs.add("pickup_address", "pickup address is required")
	}
	if strings.TrimSpace(p.DropoffAddress) == "" {
		errs.add("dropoff_address", "dropoff address is required")
	}

	if rt == request.TypeInstant && len(p.Stops) > 0 {
		errs.add("stops", "instant requests do not carry a stop list")
	}
	if rt == request.TypeJourney && len(p.Stops) > 0 {
		validateStopList(errs, p.Stops)
	}

	return errs.toError()
}

func validateStopList(errs fieldErrors, stops []reqdto.StopPayload) {
	if len(stops) < 2 {
		errs.add("stops", "journey requires at least two stops")
		return
	}
	if request.StopType(stops[0].Type) != request.StopPickup {
		errs.add("stops[0].type", "first stop must be a pickup")
	}
	if request.StopType(stops[len(stops)-1].Type) != request.StopDropoff {
		errs.add(fmt.Sprintf("stops[%d].type", len(stops)-1), "last stop must be a dropoff")
	}
	for i, s := range stops {
		if !request.StopType(s.Type).IsValid() {
			errs.add(fmt.Sprintf("stops[%d].type", i), "must be pickup, dropoff or stop")
		}
		if strings.TrimSpace(s.Address) == "" {
			errs.add(fmt.Sprintf("stops[%d].address", i), "address is required")
		}
	}
}

func validateItemsStep(p *reqdto.ItemsStep) error {
	errs := fieldErrors{}
	if p == nil {
		errs.add("items", "items payload is required")
		return errs.toError()
	}
	if len(p.Items) == 0 {
		errs.add("items", "at least one item is required")
	}
	for i, item := range p.Items {
		if strings.TrimSpace(item.Name) == "" {
			errs.add(fmt.Sprintf("items[%d].name", i), "name is required")
		}
		if item.Quantity < 1 {
			errs.add(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1")
		}
		if item.WeightKG != nil && *item.WeightKG <= 0 {
			errs.add(fmt.Sprintf("items[%d].weight_kg", i), "weight must be positive")
		}
	}
	return errs.toError()
}

func validateScheduleStep(p *reqdto.ScheduleStep, now time.Time) error {
	errs := fieldErrors{}
	if p == nil {
		errs.add("schedule", "schedule payload is required")
		return errs.toError()
	}

	if p.PreferredDate == "" {
		errs.add("preferred_date", "preferred date is required")
	} else if date, err := time.Parse(pricing.DateLayout, p.PreferredDate); err != nil {
		errs.add("preferred_date", "must be formatted YYYY-MM-DD")
	} else if date.Before(now.Truncate(24 * time.Hour)) {
		errs.add("preferred_date", "must not be in the past")
	}

	if !request.TimeWindow(p.TimeWindow).IsValid() {
		errs.add("time_window", "must be morning, afternoon, evening or any")
	}
	if !request.ServiceSpeed(p.ServiceSpeed).IsValid() {
		errs.add("service_speed", "must be standard, express, same_day or scheduled")
	}

	return errs.toError()
}

func validateContact(p reqdto.CaptureContactRequest) error {
	errs := fieldErrors{}
	if strings.TrimSpace(p.Name) == "" {
		errs.add("name", "name is required")
	}
	if strings.TrimSpace(p.Email) == "" || !strings.Contains(p.Email, "@") {
		errs.add("email", "a valid email is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		errs.add("phone", "phone is required")
	}
	return errs.toError()
}

func validateSelection(p reqdto.SelectPriceRequest) error {
	errs := fieldErrors{}
	if p.Date == "" {
		errs.add("date", "date is required")
	} else if _, err := time.Parse(pricing.DateLayout, p.Date); err != nil {
		errs.add("date", "must be formatted YYYY-MM-DD")
	}
	if p.StaffCount < 1 {
		errs.add("staff_count", "staff count must be at least 1")
	}
	if p.Price <= 0 {
		errs.add("price", "price must be positive")
	}
	return errs.toError()
}
