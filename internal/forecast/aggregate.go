package forecast

import (
	"fmt"
	"time"
)

// Extremum is a reducer result that keeps the timestamp of the extreme sample.
type Extremum struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Aggregate is the reduced, unit-converted result for one property in one
// (day, period) bucket. A Missing aggregate is the sentinel for buckets with
// no qualifying samples; it carries a fixed neutral status and no data.
type Aggregate struct {
	Property Property `json:"property"`
	Unit     Unit     `json:"unit,omitempty"`
	Missing  bool     `json:"missing,omitempty"`
	Status   Status   `json:"status"`

	Max *Extremum `json:"max,omitempty"`
	Min *Extremum `json:"min,omitempty"`
	Avg *float64  `json:"avg,omitempty"`
	Sum *float64  `json:"sum,omitempty"`

	// Label is the ordinal-scale rendering of the reduced value for
	// properties whose target unit is a scale (compass point, sky cover
	// level, precipitation likelihood).
	Label string `json:"label,omitempty"`

	// Conditions holds the collected weather triples for the weather property.
	Conditions []WeatherCondition `json:"conditions,omitempty"`
}

// AvgValue returns the average if present.
func (a Aggregate) AvgValue() (float64, bool) {
	if a.Avg == nil {
		return 0, false
	}
	return *a.Avg, true
}

// SumValue returns the sum if present.
func (a Aggregate) SumValue() (float64, bool) {
	if a.Sum == nil {
		return 0, false
	}
	return *a.Sum, true
}

// sentinel builds the missing-data aggregate for a bucket with no qualifying
// samples. This is a well-defined placeholder, not a failure.
func sentinel(prop Property, target Unit) Aggregate {
	return Aggregate{Property: prop, Unit: target, Missing: true, Status: StatusCaution}
}

// aggregateProperty reduces one bucket's samples for a property, converting
// each reducer's scalar output exactly once, and derives the property status.
func (e *Engine) aggregateProperty(prop Property, rule Rule, ps *PropertySamples, loc Location) (Aggregate, error) {
	if prop == Weather {
		if ps == nil || len(ps.Conditions) == 0 {
			return sentinel(prop, rule.Target), nil
		}
		return Aggregate{
			Property:   prop,
			Status:     classifyWeather(ps.Conditions),
			Conditions: ps.Conditions,
		}, nil
	}

	if ps == nil || len(ps.Samples) == 0 {
		// Covers both empty buckets and buckets whose only points were null
		// placeholders; reducers must never see an empty sequence.
		return sentinel(prop, rule.Target), nil
	}

	agg := Aggregate{Property: prop, Unit: rule.Target}
	for _, r := range rule.Reducers {
		switch r {
		case ReduceMax:
			s, _ := MaxSample(ps.Samples)
			v, label, err := e.convertOnce(prop, ps.Unit, rule.Target, s.Value)
			if err != nil {
				return Aggregate{}, err
			}
			agg.Max = &Extremum{Time: s.Time, Value: v}
			if label != "" {
				agg.Label = label
			}
		case ReduceMin:
			s, _ := MinSample(ps.Samples)
			v, _, err := e.convertOnce(prop, ps.Unit, rule.Target, s.Value)
			if err != nil {
				return Aggregate{}, err
			}
			agg.Min = &Extremum{Time: s.Time, Value: v}
		case ReduceAvg:
			m, _ := Mean(ps.Samples)
			v, label, err := e.convertOnce(prop, ps.Unit, rule.Target, m)
			if err != nil {
				return Aggregate{}, err
			}
			agg.Avg = &v
			if label != "" {
				agg.Label = label
			}
		case ReduceSum:
			t, _ := Sum(ps.Samples)
			v, _, err := e.convertOnce(prop, ps.Unit, rule.Target, t)
			if err != nil {
				return Aggregate{}, err
			}
			agg.Sum = &v
		default:
			return Aggregate{}, fmt.Errorf("property %s: unknown reducer %q", prop, r)
		}
	}

	agg.Status = e.classify(prop, agg, loc)
	return agg, nil
}

// convertOnce converts a reducer's scalar output to the target unit. Values
// already in the target unit pass through; scale targets keep the numeric
// value and attach the scale label.
func (e *Engine) convertOnce(prop Property, from, target Unit, v float64) (float64, string, error) {
	if from == target || target == "" {
		return v, "", nil
	}
	c, err := Convert(prop, from, v)
	if err != nil {
		return 0, "", err
	}
	if c.Unit != target {
		return 0, "", fmt.Errorf("property %s: conversion from %s yields %s, want %s", prop, from, c.Unit, target)
	}
	return c.Value, c.Label, nil
}

// classify derives the property-level status from the reduced values.
// Properties without an active rule are informational only and never degrade
// the bucket: their thresholds exist in configuration but the reference
// behavior resolves them to the best status.
func (e *Engine) classify(prop Property, agg Aggregate, loc Location) Status {
	switch prop {
	case Temperature:
		if agg.Max != nil && agg.Min != nil {
			return classifyTemperature(agg.Max.Value, agg.Min.Value)
		}
	case WindSpeed:
		if agg.Avg != nil {
			return classifyWindSpeed(*agg.Avg)
		}
	case WindGust:
		if agg.Max != nil {
			return classifyWindGust(agg.Max.Value)
		}
	case SnowLevel:
		if agg.Max != nil {
			return classifySnowLevel(agg.Max.Value, loc)
		}
	}
	return StatusGood
}
