package table

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alpinewx/skicast/internal/forecast"
)

// Renderer turns a location's day aggregates into table rows. It carries the
// same schedule and time zone the engine bucketed with.
type Renderer struct {
	schedule forecast.Schedule
	tz       *time.Location
}

// NewRenderer creates a Renderer for the given schedule and time zone.
func NewRenderer(schedule forecast.Schedule, tz *time.Location) *Renderer {
	return &Renderer{schedule: schedule, tz: tz}
}

// Build assembles the full table from rendered rows.
func (r *Renderer) Build(ref time.Time, rows []Row) Table {
	t := Table{GeneratedAt: ref.In(r.tz), Rows: rows}
	for day := 0; day < forecast.NumDays; day++ {
		date := ref.In(r.tz).AddDate(0, 0, day)
		t.Columns[day] = Column{
			Label: r.dayLabel(day, ref),
			Date:  date.Format("Jan 2"),
		}
	}
	return t
}

// Row renders one location's aggregates into a table row: a header cell with
// name, elevation band, and link, then one cell per forecast day. rowRef is
// the reference time the row's aggregates were computed against; when its
// local date no longer matches tableRef (a row built from a stale blob), the
// relative "Today"/"Tomorrow" labels give way to weekday names.
func (r *Renderer) Row(loc forecast.Location, aggs forecast.DayAggregates, rowRef, tableRef time.Time) Row {
	relative := sameLocalDate(rowRef, tableRef, r.tz)
	row := Row{
		Header: Cell{
			Display: loc.Name,
			Detail:  fmt.Sprintf("Base %.0f ft / Summit %.0f ft", loc.Base, loc.Summit),
			Status:  forecast.StatusGood,
			Link:    loc.Href,
		},
	}
	for day := 0; day < forecast.NumDays; day++ {
		row.Days[day] = r.dayCell(loc, aggs, day, rowRef, relative)
	}
	return row
}

func (r *Renderer) dayCell(loc forecast.Location, aggs forecast.DayAggregates, day int, ref time.Time, relative bool) Cell {
	full := aggs[day][forecast.Period24h]

	precip := precipLine(full)
	level := snowLevelDescriptor(full.Aggregates[forecast.SnowLevel])
	temp := r.tempDescriptor(aggs, day)

	detail := fmt.Sprintf("%s %s: %s; %s; %s; %s",
		loc.Name, r.label(day, ref, relative), precip, level,
		highLowPhrase(full.Aggregates[forecast.Temperature]),
		windDescriptor(full))
	if sky := full.Aggregates[forecast.SkyCover].Label; sky != "" {
		detail += "; " + strings.ToLower(sky)
	}

	return Cell{
		Display: precip + "\n" + level + "\n" + temp,
		Detail:  detail,
		Status:  full.Overall,
	}
}

// dayLabel returns "Today"/"Tomorrow" for the first two days and the weekday
// name beyond that.
func (r *Renderer) dayLabel(day int, ref time.Time) string {
	return r.label(day, ref, true)
}

func (r *Renderer) label(day int, ref time.Time, relative bool) string {
	if relative {
		switch day {
		case 0:
			return "Today"
		case 1:
			return "Tomorrow"
		}
	}
	return ref.In(r.tz).AddDate(0, 0, day).Weekday().String()
}

func sameLocalDate(a, b time.Time, tz *time.Location) bool {
	ay, am, ad := a.In(tz).Date()
	by, bm, bd := b.In(tz).Date()
	return ay == by && am == bm && ad == bd
}

// precipLine is the full precipitation cell line: the descriptor plus the
// probability when one was resolved.
func precipLine(pa forecast.PeriodAggregates) string {
	s := precipDescriptor(pa)
	if pop := pa.Aggregates[forecast.ProbabilityOfPrecipitation]; !pop.Missing && pop.Max != nil {
		s += fmt.Sprintf(", %.0f%%", pop.Max.Value)
	}
	return s
}

// precipDescriptor classifies the day's precipitation as rain, snow, mixed,
// or none, and reports the relevant accumulation. Mixed days report the
// larger of the two sums as an upper bound. NONE means neither the weather
// conditions nor the accumulation sums carry any rain or snow signal.
func precipDescriptor(pa forecast.PeriodAggregates) string {
	hasRain, hasSnow := forecast.ClassifyPrecipType(pa.Aggregates[forecast.Weather].Conditions)
	rainSum, rainOK := pa.Aggregates[forecast.QuantitativePrecipitation].SumValue()
	snowSum, snowOK := pa.Aggregates[forecast.SnowfallAmount].SumValue()

	if !hasRain && !hasSnow {
		// No usable weather conditions; fall back to inferring the type from
		// the accumulation sums. Both positive splits on the day's max
		// temperature: above freezing reads as mixed, at or below as snow.
		switch {
		case rainOK && snowOK && rainSum > 0 && snowSum > 0:
			hasSnow = true
			if maxTemp := pa.Aggregates[forecast.Temperature].Max; maxTemp != nil && maxTemp.Value > 32 {
				hasRain = true
			}
		case rainOK && rainSum > 0:
			hasRain = true
		case snowOK && snowSum > 0:
			hasSnow = true
		}
	}

	switch {
	case hasRain && hasSnow:
		amt, ok := rainSum, rainOK
		if snowOK && (!rainOK || snowSum > rainSum) {
			amt, ok = snowSum, snowOK
		}
		if !ok {
			return "MIX: --"
		}
		if amt < 0.1 {
			return "MIX: trace"
		}
		return fmt.Sprintf("MIX: <%.1fin", amt)
	case hasRain:
		return "RAIN: " + amount(rainSum, rainOK)
	case hasSnow:
		return "SNOW: " + amount(snowSum, snowOK)
	default:
		return "NONE"
	}
}

func amount(v float64, ok bool) string {
	if !ok {
		return "--"
	}
	if v < 0.1 {
		return "trace"
	}
	return fmt.Sprintf("%.1fin", v)
}

// snowLevelDescriptor renders the day's snow level range with a trend arrow
// derived from whether the maximum came before or after the minimum.
func snowLevelDescriptor(agg forecast.Aggregate) string {
	if agg.Missing || agg.Max == nil || agg.Min == nil {
		return "SLVL: --"
	}
	arrow := "→" // steady
	switch {
	case agg.Max.Time.After(agg.Min.Time):
		arrow = "↑" // rising
	case agg.Max.Time.Before(agg.Min.Time):
		arrow = "↓" // falling
	}
	lo := roundElevation(agg.Min.Value)
	hi := roundElevation(agg.Max.Value)
	if lo == hi {
		return fmt.Sprintf("SLVL: %.0fft %s", hi, arrow)
	}
	return fmt.Sprintf("SLVL: %.0f-%.0fft %s", lo, hi, arrow)
}

// roundElevation rounds to the nearest 10 ft below 1000 ft and the nearest
// 100 ft above.
func roundElevation(v float64) float64 {
	if v < 1000 {
		return math.Round(v/10) * 10
	}
	return math.Round(v/100) * 100
}

// tempDescriptor renders per-period average temperatures for detail days and
// a min/max pair for the rest, with "--" where data is missing.
func (r *Renderer) tempDescriptor(aggs forecast.DayAggregates, day int) string {
	if day < r.schedule.DetailDays {
		parts := make([]string, 0, 3)
		for _, p := range []forecast.Period{forecast.PeriodAM, forecast.PeriodPM, forecast.PeriodOvernight} {
			agg := aggs[day][p].Aggregates[forecast.Temperature]
			if v, ok := agg.AvgValue(); ok && !agg.Missing {
				parts = append(parts, fmt.Sprintf("%.0f", v))
			} else {
				parts = append(parts, "--")
			}
		}
		return "AM|PM|ON: " + strings.Join(parts, "|") + " F"
	}

	agg := aggs[day][forecast.Period24h].Aggregates[forecast.Temperature]
	lo, hi := "--", "--"
	if !agg.Missing {
		if agg.Min != nil {
			lo = fmt.Sprintf("%.0f", agg.Min.Value)
		}
		if agg.Max != nil {
			hi = fmt.Sprintf("%.0f", agg.Max.Value)
		}
	}
	return fmt.Sprintf("MIN|MAX: %s|%s F", lo, hi)
}

// highLowPhrase is the alternate temperature wording used in the detail string.
func highLowPhrase(agg forecast.Aggregate) string {
	if agg.Missing || agg.Max == nil || agg.Min == nil {
		return "temperature --"
	}
	return fmt.Sprintf("high %.0fF / low %.0fF", agg.Max.Value, agg.Min.Value)
}

// windDescriptor renders direction, sustained speed, and gusts, or a fixed
// marker when any of the three is unavailable.
func windDescriptor(pa forecast.PeriodAggregates) string {
	dir := pa.Aggregates[forecast.WindDirection]
	speed := pa.Aggregates[forecast.WindSpeed]
	gust := pa.Aggregates[forecast.WindGust]

	avg, avgOK := speed.AvgValue()
	if dir.Missing || dir.Label == "" || speed.Missing || !avgOK || gust.Missing || gust.Max == nil {
		return "wind data incomplete"
	}
	return fmt.Sprintf("%s %.0fmph, gusts to %.0fmph", dir.Label, avg, gust.Max.Value)
}
