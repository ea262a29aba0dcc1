package forecast

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GridData is the per-location forecast envelope persisted to the blob store:
// location metadata plus the raw NWS grid properties.
type GridData struct {
	LatLong [2]float64     `json:"lat_long"`
	Elev    [2]float64     `json:"elev"` // base, summit in feet
	Href    string         `json:"href"`
	Data    GridProperties `json:"data"`
}

// GridProperties wraps the property map from the NWS gridpoints payload.
type GridProperties struct {
	Properties map[string]GridProperty `json:"properties"`
}

// GridProperty is one property's raw time series.
type GridProperty struct {
	UOM    string      `json:"uom"`
	Values []GridValue `json:"values"`
}

// GridValue is a single forecast point. Value is numeric for most properties,
// null for placeholder points, or a list of condition objects for weather.
type GridValue struct {
	ValidTime string          `json:"validTime"`
	Value     json.RawMessage `json:"value"`
}

// WeatherCondition is one entry of a weather property value.
type WeatherCondition struct {
	Coverage  string `json:"coverage,omitempty"`
	Weather   string `json:"weather,omitempty"`
	Intensity string `json:"intensity,omitempty"`
}

// ParseGridData decodes a stored grid data blob.
func ParseGridData(b []byte) (GridData, error) {
	var gd GridData
	if err := json.Unmarshal(b, &gd); err != nil {
		return GridData{}, fmt.Errorf("parse grid data: %w", err)
	}
	if gd.Data.Properties == nil {
		return GridData{}, fmt.Errorf("parse grid data: no properties")
	}
	return gd, nil
}

// BuildGridData wraps a raw NWS gridpoints response in the storage envelope
// for a location. The raw payload's top-level "properties" object is carried
// over verbatim.
func BuildGridData(loc Location, nwsPayload []byte) (GridData, error) {
	var raw struct {
		Properties map[string]GridProperty `json:"properties"`
	}
	if err := json.Unmarshal(nwsPayload, &raw); err != nil {
		return GridData{}, fmt.Errorf("parse gridpoints payload for %s: %w", loc.ID, err)
	}
	if raw.Properties == nil {
		return GridData{}, fmt.Errorf("gridpoints payload for %s has no properties", loc.ID)
	}
	return GridData{
		LatLong: [2]float64{loc.Lat, loc.Lon},
		Elev:    [2]float64{loc.Base, loc.Summit},
		Href:    loc.Href,
		Data:    GridProperties{Properties: raw.Properties},
	}, nil
}

// parseValidTime extracts the start instant from an ISO-8601 validTime,
// which may carry a duration suffix such as "2024-01-05T06:00:00+00:00/PT3H".
func parseValidTime(v string) (time.Time, error) {
	if i := strings.IndexByte(v, '/'); i >= 0 {
		v = v[:i]
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse validTime %q: %w", v, err)
	}
	return t, nil
}

// CollectStats reports what was skipped or dropped while bucketing a
// location's samples. The caller logs and counts these; none of them abort
// the row.
type CollectStats struct {
	MissingProperties []Property
	MalformedDropped  int
	OutOfWindow       int
	NullValues        int
	// EmptyBuckets counts (property, day, period) buckets resolved to the
	// missing-data sentinel during aggregation.
	EmptyBuckets int
}

// CollectSamples distributes a location's raw forecast points into day and
// period buckets. Tracked properties absent from the payload are recorded as
// missing and skipped; samples with malformed timestamps or outside the
// 7-day window are dropped and counted.
func (e *Engine) CollectSamples(gd GridData, ref time.Time) (*Buckets, CollectStats) {
	buckets := &Buckets{}
	var stats CollectStats

	for _, prop := range trackedOrder(e.rules) {
		gp, ok := gd.Data.Properties[string(prop)]
		if !ok {
			stats.MissingProperties = append(stats.MissingProperties, prop)
			continue
		}
		unit := NormalizeUnit(gp.UOM)

		for _, gv := range gp.Values {
			t, err := parseValidTime(gv.ValidTime)
			if err != nil {
				stats.MalformedDropped++
				continue
			}
			day, ok := e.schedule.AssignDay(ref, t, e.tz)
			if !ok {
				stats.OutOfWindow++
				continue
			}

			if prop == Weather {
				var conds []WeatherCondition
				if err := json.Unmarshal(gv.Value, &conds); err != nil {
					stats.MalformedDropped++
					continue
				}
				e.addConditions(buckets, day, t, unit, conds)
				continue
			}

			var val *float64
			if err := json.Unmarshal(gv.Value, &val); err != nil {
				stats.MalformedDropped++
				continue
			}
			if val == nil {
				// Null placeholder: mark the bucket as seen but empty so the
				// aggregator resolves it to the sentinel.
				e.eachPeriod(day, t, func(period Period) {
					buckets.at(day, period, prop, unit).Nulls++
				})
				stats.NullValues++
				continue
			}
			sample := Sample{Time: t, Value: *val}
			e.eachPeriod(day, t, func(period Period) {
				ps := buckets.at(day, period, prop, unit)
				ps.Samples = append(ps.Samples, sample)
			})
		}
	}
	return buckets, stats
}

// eachPeriod invokes fn for the 24h bucket and, on detail days, the sample's
// sub-daily period bucket.
func (e *Engine) eachPeriod(day int, t time.Time, fn func(Period)) {
	fn(Period24h)
	if day < e.schedule.DetailDays {
		fn(e.schedule.AssignPeriod(t, e.tz))
	}
}

func (e *Engine) addConditions(buckets *Buckets, day int, t time.Time, unit Unit, conds []WeatherCondition) {
	e.eachPeriod(day, t, func(period Period) {
		ps := buckets.at(day, period, Weather, unit)
		ps.Conditions = append(ps.Conditions, conds...)
	})
}

// trackedOrder returns the configured properties in a fixed order so two runs
// over identical input produce identical logs and aggregates.
func trackedOrder(rules map[Property]Rule) []Property {
	all := []Property{
		Temperature, SkyCover, WindDirection, WindSpeed, WindGust,
		Weather, ProbabilityOfPrecipitation, QuantitativePrecipitation,
		SnowfallAmount, SnowLevel,
	}
	out := make([]Property, 0, len(rules))
	for _, p := range all {
		if _, ok := rules[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
