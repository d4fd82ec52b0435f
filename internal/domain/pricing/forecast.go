package pricing

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyForecast     = errors.New("forecast has no priced days")
	ErrUnknownCell       = errors.New("no such forecast cell")
	ErrPriceMismatch     = errors.New("selected price does not match forecast cell")
	ErrInvalidStaffCount = errors.New("invalid staff count")
)

// DateLayout is the wire format for forecast dates.
const DateLayout = "2006-01-02"

// Breakdown itemizes a staff price cell.
type Breakdown struct {
	Base            float64 `json:"base"`
	Labor           float64 `json:"labor"`
	StopSurcharge   float64 `json:"stop_surcharge"`
	SpeedAdjustment float64 `json:"speed_adjustment"`
}

type StaffPrice struct {
	Total     float64   `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// DayPrice is one forecast row: calendar context, external multipliers and
// the staff-count → price mapping keyed "staff_1".."staff_N".
type DayPrice struct {
	Date              string                `json:"date"`
	IsWeekend         bool                  `json:"is_weekend"`
	IsHoliday         bool                  `json:"is_holiday"`
	WeatherMultiplier float64               `json:"weather_multiplier"`
	TrafficMultiplier float64               `json:"traffic_multiplier"`
	StaffPrices       map[string]StaffPrice `json:"staff_prices"`
}

// Forecast is immutable once attached to a draft; a new schedule
// submission replaces it wholesale.
type Forecast struct {
	Days        []DayPrice `json:"days"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// StaffKey builds the staff-count map key, e.g. StaffKey(2) == "staff_2".
func StaffKey(staffCount int) string {
	return fmt.Sprintf("staff_%d", staffCount)
}

// Cell looks up the price for a (date, staffCount) pair.
func (f *Forecast) Cell(date string, staffCount int) (StaffPrice, bool) {
	for _, day := range f.Days {
		if day.Date != date {
			continue
		}
		sp, ok := day.StaffPrices[StaffKey(staffCount)]
		return sp, ok
	}
	return StaffPrice{}, false
}

// Selection is the user's chosen forecast cell.
type Selection struct {
	Date       string  `json:"date"`
	StaffCount int     `json:"staff_count"`
	Price      float64 `json:"price"`
}

// ValidateSelection checks a selection against the matrix: the cell must
// exist and the submitted price must match it exactly, guarding against a
// stale client working off a replaced forecast.
func (f *Forecast) ValidateSelection(sel Selection) error {
	if sel.StaffCount < 1 {
		return ErrInvalidStaffCount
	}
	cell, ok := f.Cell(sel.Date, sel.StaffCount)
	if !ok {
		return ErrUnknownCell
	}
	if cell.Total != sel.Price {
		return ErrPriceMismatch
	}
	return nil
}
