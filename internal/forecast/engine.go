package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Engine aggregates a location's raw grid forecast into classified per-day,
// per-period results. It is purely functional over its inputs: configuration
// is fixed at construction, no state survives between runs, and two runs over
// identical input and reference time produce identical output.
type Engine struct {
	rules    map[Property]Rule
	schedule Schedule
	tz       *time.Location
	logger   *slog.Logger
}

// NewEngine builds an engine from explicit configuration. The property rules
// are validated against the conversion table here so an unsupported
// (property, unit) combination fails at startup rather than mid-refresh.
func NewEngine(rules map[Property]Rule, schedule Schedule, tz *time.Location, logger *slog.Logger) (*Engine, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if tz == nil {
		return nil, errors.New("forecast: time zone is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if schedule.DayStartHour < 0 || schedule.DayStartHour >= 24 ||
		schedule.AMEndHour <= schedule.DayStartHour || schedule.PMEndHour <= schedule.AMEndHour ||
		schedule.PMEndHour > 24 || schedule.DetailDays < 0 || schedule.DetailDays > NumDays {
		return nil, fmt.Errorf("forecast: invalid schedule %+v", schedule)
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return &Engine{rules: rules, schedule: schedule, tz: tz, logger: logger}, nil
}

// Schedule returns the engine's period schedule.
func (e *Engine) Schedule() Schedule { return e.schedule }

// TZ returns the engine's local time zone.
func (e *Engine) TZ() *time.Location { return e.tz }

// PeriodAggregates holds every property aggregate for one (day, period)
// bucket plus the pessimistically merged overall status.
type PeriodAggregates struct {
	Aggregates map[Property]Aggregate
	Overall    Status
}

// DayAggregates is the engine output for one location: one map of period
// aggregates per day in the 7-day window.
type DayAggregates [NumDays]map[Period]PeriodAggregates

// Aggregate runs the full reduction for one location: bucket the raw samples,
// reduce and convert each property per bucket, classify, and merge statuses.
// Properties absent from the payload are skipped entirely and reported in the
// stats; empty buckets resolve to the missing-data sentinel.
func (e *Engine) Aggregate(gd GridData, loc Location, ref time.Time) (DayAggregates, CollectStats, error) {
	buckets, stats := e.CollectSamples(gd, ref)

	missing := make(map[Property]bool, len(stats.MissingProperties))
	for _, p := range stats.MissingProperties {
		missing[p] = true
		e.logger.Warn("property missing from forecast payload",
			"location", loc.ID, "property", string(p))
	}

	var out DayAggregates
	for day := 0; day < NumDays; day++ {
		out[day] = make(map[Period]PeriodAggregates)
		for _, period := range e.schedule.Periods(day) {
			pa := PeriodAggregates{Aggregates: make(map[Property]Aggregate)}
			statuses := make([]Status, 0, len(e.rules))

			for _, prop := range trackedOrder(e.rules) {
				if missing[prop] {
					continue
				}
				ps := buckets.Get(day, period, prop)
				agg, err := e.aggregateProperty(prop, e.rules[prop], ps, loc)
				if err != nil {
					return DayAggregates{}, stats, fmt.Errorf("aggregate %s day %d %s: %w", loc.ID, day, period, err)
				}
				if agg.Missing {
					stats.EmptyBuckets++
					e.logger.Debug("empty bucket",
						"location", loc.ID, "property", string(prop), "day", day, "period", string(period))
				}
				pa.Aggregates[prop] = agg
				statuses = append(statuses, agg.Status)
			}

			pa.Overall = OverallStatus(statuses)
			out[day][period] = pa
		}
	}
	return out, stats, nil
}
