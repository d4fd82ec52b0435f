package pricing

import (
	"context"
	"math"
	"time"

	"wasteops/internal/pkg/clock"
)

// Quote carries the pricing inputs extracted from a draft. Kept primitive
// so the pricing package stays free of the request aggregate.
type Quote struct {
	StopCount     int
	Items         []ItemSpec
	PreferredDate time.Time
	Speed         string
	Flexible      bool
}

type ItemSpec struct {
	Quantity    int
	WeightKG    *float64
	Fragile     bool
	Disassembly bool
}

// Forecaster is the external pricing service contract. The real algorithm
// is opaque; the default implementation below is a deterministic stand-in.
type Forecaster interface {
	Forecast(ctx context.Context, q Quote) (*Forecast, error)
}

const (
	forecastDays  = 5
	minStaffCount = 1
	maxStaffCount = 4
)

// DefaultForecaster prices a window of days around the preferred date for
// staff counts 1..4.
type DefaultForecaster struct {
	Clock clock.Clock

	BaseFee         float64
	PerItemFee      float64
	FragileFee      float64
	DisassemblyFee  float64
	ExtraStopFee    float64
	PerStaffFee     float64
	WeightFeePerKG  float64
	WeekendUplift   float64
	HolidayUplift   float64
	FlexibleRebate  float64
	SpeedMultiplier map[string]float64
}

func NewDefaultForecaster(c clock.Clock) *DefaultForecaster {
	return &DefaultForecaster{
		Clock:          c,
		BaseFee:        40,
		PerItemFee:     15,
		FragileFee:     6,
		DisassemblyFee: 10,
		ExtraStopFee:   18,
		PerStaffFee:    35,
		WeightFeePerKG: 0.25,
		WeekendUplift:  1.15,
		HolidayUplift:  1.25,
		FlexibleRebate: 0.95,
		SpeedMultiplier: map[string]float64{
			"standard":  1.0,
			"express":   1.25,
			"same_day":  1.5,
			"scheduled": 0.95,
		},
	}
}

func (f *DefaultForecaster) Forecast(_ context.Context, q Quote) (*Forecast, error) {
	base := f.basePrice(q)

	days := make([]DayPrice, 0, forecastDays)
	for offset := range forecastDays {
		date := q.PreferredDate.AddDate(0, 0, offset)
		days = append(days, f.priceDay(date, base, q))
	}

	return &Forecast{
		Days:        days,
		GeneratedAt: f.Clock.Now(),
	}, nil
}

func (f *DefaultForecaster) basePrice(q Quote) float64 {
	base := f.BaseFee
	for _, item := range q.Items {
		base += f.PerItemFee * float64(item.Quantity)
		if item.WeightKG != nil {
			base += f.WeightFeePerKG * *item.WeightKG * float64(item.Quantity)
		}
		if item.Fragile {
			base += f.FragileFee
		}
		if item.Disassembly {
			base += f.DisassemblyFee
		}
	}
	if q.StopCount > 2 {
		base += f.ExtraStopFee * float64(q.StopCount-2)
	}
	return base
}

func (f *DefaultForecaster) priceDay(date time.Time, base float64, q Quote) DayPrice {
	weekend := isWeekend(date)
	holiday := isHoliday(date)

	calendar := 1.0
	if weekend {
		calendar = f.WeekendUplift
	}
	if holiday {
		calendar = f.HolidayUplift
	}

	speed := f.SpeedMultiplier[q.Speed]
	if speed == 0 {
		speed = 1.0
	}

	flex := 1.0
	if q.Flexible {
		flex = f.FlexibleRebate
	}

	prices := make(map[string]StaffPrice, maxStaffCount)
	for staff := minStaffCount; staff <= maxStaffCount; staff++ {
		labor := f.PerStaffFee * float64(staff)
		raw := (base + labor) * calendar * speed * flex
		prices[StaffKey(staff)] = StaffPrice{
			Total: round2(raw),
			Breakdown: Breakdown{
				Base:            round2(base * calendar * flex),
				Labor:           round2(labor * calendar * flex),
				StopSurcharge:   round2(f.ExtraStopFee * float64(max(q.StopCount-2, 0))),
				SpeedAdjustment: round2((base + labor) * calendar * flex * (speed - 1.0)),
			},
		}
	}

	return DayPrice{
		Date:              date.Format(DateLayout),
		IsWeekend:         weekend,
		IsHoliday:         holiday,
		WeatherMultiplier: 1.0,
		TrafficMultiplier: 1.0,
		StaffPrices:       prices,
	}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Fixed-date public holidays; enough for calendar context in pricing.
var holidays = map[string]bool{
	"01-01": true, // New Year's Day
	"05-01": true, // Labour Day
	"12-25": true, // Christmas Day
	"12-26": true, // Boxing Day
}

func isHoliday(t time.Time) bool {
	return holidays[t.Format("01-02")]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
