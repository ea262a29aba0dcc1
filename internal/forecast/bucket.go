package forecast

import (
	"math"
	"time"
)

// NumDays is the width of the forecast window: today through six days out.
const NumDays = 7

// Period identifies a slice of a forecast day.
type Period string

const (
	Period24h       Period = "24h"
	PeriodAM        Period = "am"
	PeriodPM        Period = "pm"
	PeriodOvernight Period = "overnight"
)

// Schedule defines the local-time day boundary and period windows. It is an
// explicit configuration value so the engine can be tested with synthetic
// schedules instead of reading ambient process state.
type Schedule struct {
	// DayStartHour is the local hour at which a forecast day begins.
	// Samples before this hour belong to the previous day's overnight period.
	DayStartHour int `json:"dayStartHour"`
	// AMEndHour and PMEndHour bound the am and pm periods.
	AMEndHour int `json:"amEndHour"`
	PMEndHour int `json:"pmEndHour"`
	// DetailDays is how many leading days get am/pm/overnight period buckets
	// in addition to the 24h bucket. Later days are 24h only.
	DetailDays int `json:"detailDays"`
}

// DefaultSchedule returns the reference schedule: days anchored at 06:00
// local, am 06-12, pm 12-18, overnight 18-06, periods for the first 3 days.
func DefaultSchedule() Schedule {
	return Schedule{DayStartHour: 6, AMEndHour: 12, PMEndHour: 18, DetailDays: 3}
}

// AssignDay maps a sample time to a day index 0..6 relative to the reference
// time, both interpreted in tz. The cutoff instant is the reference date at
// DayStartHour local; samples at or after the cutoff hour on the reference
// date, or before it on the following date, belong to day 0, and each
// subsequent local calendar day span is the next index. Samples outside the
// window return ok=false and must be dropped.
func (s Schedule) AssignDay(ref, t time.Time, tz *time.Location) (int, bool) {
	refLocal := ref.In(tz)
	// Shifting the sample back by the day-start hour turns the 06:00-06:00
	// forecast day into a plain calendar-date comparison.
	shifted := t.In(tz).Add(-time.Duration(s.DayStartHour) * time.Hour)

	refMidnight := time.Date(refLocal.Year(), refLocal.Month(), refLocal.Day(), 0, 0, 0, 0, tz)
	sampleMidnight := time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, tz)

	// Rounding absorbs the 23/25 hour days around DST transitions.
	day := int(math.Round(sampleMidnight.Sub(refMidnight).Hours() / 24))
	if day < 0 || day >= NumDays {
		return 0, false
	}
	return day, true
}

// AssignPeriod maps a sample time to its sub-daily period as a pure function
// of local hour. Hours outside [DayStartHour, PMEndHour) are overnight,
// which spans midnight into the next calendar date.
func (s Schedule) AssignPeriod(t time.Time, tz *time.Location) Period {
	h := t.In(tz).Hour()
	switch {
	case h >= s.DayStartHour && h < s.AMEndHour:
		return PeriodAM
	case h >= s.AMEndHour && h < s.PMEndHour:
		return PeriodPM
	default:
		return PeriodOvernight
	}
}

// Periods returns the buckets populated for a day index: all four for the
// leading detail days, 24h only for the rest.
func (s Schedule) Periods(day int) []Period {
	if day < s.DetailDays {
		return []Period{Period24h, PeriodAM, PeriodPM, PeriodOvernight}
	}
	return []Period{Period24h}
}

// PropertySamples is the raw material for one (property, day, period) bucket
// before reduction.
type PropertySamples struct {
	Unit       Unit
	Samples    []Sample
	Conditions []WeatherCondition // weather property only
	// Nulls counts placeholder values the upstream forecast emitted without
	// data (e.g. snowLevel beyond its horizon). A bucket holding only nulls
	// resolves to the missing-data sentinel.
	Nulls int
}

// Buckets holds raw samples grouped by day, period, and property for one
// location's forecast. All bucket state is derived per refresh cycle and
// discarded after the table row is produced.
type Buckets struct {
	days [NumDays]map[Period]map[Property]*PropertySamples
}

func (b *Buckets) at(day int, period Period, prop Property, unit Unit) *PropertySamples {
	if b.days[day] == nil {
		b.days[day] = make(map[Period]map[Property]*PropertySamples)
	}
	if b.days[day][period] == nil {
		b.days[day][period] = make(map[Property]*PropertySamples)
	}
	ps := b.days[day][period][prop]
	if ps == nil {
		ps = &PropertySamples{Unit: unit}
		b.days[day][period][prop] = ps
	}
	return ps
}

// Get returns the samples for a bucket, or nil when nothing qualified.
func (b *Buckets) Get(day int, period Period, prop Property) *PropertySamples {
	if day < 0 || day >= NumDays || b.days[day] == nil {
		return nil
	}
	return b.days[day][period][prop]
}
