package forecast

import (
	"fmt"
	"math"
	"strings"
)

// Unit names a measurement unit. Raw units use the WMO identifiers from the
// NWS payload with the "wmoUnit:" prefix stripped; display units are the
// project's own identifiers.
type Unit string

const (
	UnitDegC    Unit = "degC"
	UnitDegF    Unit = "degF"
	UnitKmh     Unit = "km_h-1"
	UnitMph     Unit = "mph"
	UnitMm      Unit = "mm"
	UnitIn      Unit = "in"
	UnitM       Unit = "m"
	UnitFt      Unit = "ft"
	UnitPercent Unit = "percent"
	UnitDegrees Unit = "degree_(angle)"

	// Display-only units backed by ordinal scales.
	UnitCompass     Unit = "compass"
	UnitDescriptive Unit = "descriptive"
	UnitQualitative Unit = "qualitative"
)

// NormalizeUnit maps a raw uom string such as "wmoUnit:degC" to a Unit.
func NormalizeUnit(uom string) Unit {
	if i := strings.IndexByte(uom, ':'); i >= 0 {
		uom = uom[i+1:]
	}
	return Unit(uom)
}

// Converted is the result of a unit conversion. Label is set for conversions
// onto ordinal scales (compass, descriptive, qualitative); Value carries the
// numeric result otherwise.
type Converted struct {
	Unit  Unit
	Value float64
	Label string
}

// compassPoints is the 16-point compass rose, clockwise from north.
// Sector boundaries fall at 22.5 degree increments; the north sector wraps
// across 0 degrees.
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// skyCoverLabel maps a sky cover percentage onto the six-level descriptive
// condition scale.
func skyCoverLabel(pct float64) string {
	switch {
	case pct >= 88:
		return "Overcast"
	case pct >= 70:
		return "Considerable Cloudiness"
	case pct >= 51:
		return "Mostly Cloudy"
	case pct >= 26:
		return "Partly Cloudy"
	case pct >= 6:
		return "Mostly Clear"
	default:
		return "Clear"
	}
}

// skyCoverMidpoints maps each condition back to a representative percentage
// for the lossy reverse direction.
var skyCoverMidpoints = map[string]float64{
	"Overcast":                100,
	"Considerable Cloudiness": 87,
	"Mostly Cloudy":           69,
	"Partly Cloudy":           49,
	"Mostly Clear":            25,
	"Clear":                   5,
}

// popLabel maps a precipitation probability percentage onto the five-level
// qualitative scale.
func popLabel(pct float64) string {
	switch {
	case pct > 70:
		return "very likely"
	case pct > 50:
		return "likely"
	case pct >= 30:
		return "chance"
	case pct > 10:
		return "slight chance"
	default:
		return "unlikely"
	}
}

var popMidpoints = map[string]float64{
	"very likely":   99,
	"likely":        70,
	"chance":        50,
	"slight chance": 29,
	"unlikely":      10,
}

type convKey struct {
	prop Property
	from Unit
}

type conversion struct {
	to Unit
	fn func(float64) Converted
}

// convTable is the closed, property-specific conversion table. Every mapping
// is symmetric: the reverse direction is registered explicitly, as a numeric
// inverse for the measurement units and as a midpoint mapping (lossy) for the
// ordinal scales.
var convTable = map[convKey]conversion{
	{Temperature, UnitDegC}: {UnitDegF, func(v float64) Converted {
		return Converted{Unit: UnitDegF, Value: v*9/5 + 32}
	}},
	{Temperature, UnitDegF}: {UnitDegC, func(v float64) Converted {
		return Converted{Unit: UnitDegC, Value: (v - 32) * 5 / 9}
	}},

	{WindSpeed, UnitKmh}: {UnitMph, kmhToMph},
	{WindSpeed, UnitMph}: {UnitKmh, mphToKmh},
	{WindGust, UnitKmh}:  {UnitMph, kmhToMph},
	{WindGust, UnitMph}:  {UnitKmh, mphToKmh},

	{QuantitativePrecipitation, UnitMm}: {UnitIn, mmToIn},
	{QuantitativePrecipitation, UnitIn}: {UnitMm, inToMm},
	{SnowfallAmount, UnitMm}:            {UnitIn, mmToIn},
	{SnowfallAmount, UnitIn}:            {UnitMm, inToMm},

	{SnowLevel, UnitM}: {UnitFt, func(v float64) Converted {
		return Converted{Unit: UnitFt, Value: v / 0.3048}
	}},
	{SnowLevel, UnitFt}: {UnitM, func(v float64) Converted {
		return Converted{Unit: UnitM, Value: v * 0.3048}
	}},

	{WindDirection, UnitDegrees}: {UnitCompass, func(v float64) Converted {
		idx := int(math.Mod(math.Mod(v, 360)+360+11.25, 360) / 22.5)
		return Converted{Unit: UnitCompass, Value: v, Label: compassPoints[idx%16]}
	}},

	{SkyCover, UnitPercent}: {UnitDescriptive, func(v float64) Converted {
		return Converted{Unit: UnitDescriptive, Value: v, Label: skyCoverLabel(v)}
	}},
	{ProbabilityOfPrecipitation, UnitPercent}: {UnitQualitative, func(v float64) Converted {
		return Converted{Unit: UnitQualitative, Value: v, Label: popLabel(v)}
	}},
}

func kmhToMph(v float64) Converted { return Converted{Unit: UnitMph, Value: v / 1.609344} }
func mphToKmh(v float64) Converted { return Converted{Unit: UnitKmh, Value: v * 1.609344} }
func mmToIn(v float64) Converted   { return Converted{Unit: UnitIn, Value: v / 25.4} }
func inToMm(v float64) Converted   { return Converted{Unit: UnitMm, Value: v * 25.4} }

// Convert converts a numeric value of the given property from the given unit.
// The destination unit is fixed by the conversion table. An unregistered
// (property, unit) pair is a configuration defect; ValidateRules surfaces
// those at startup, so a runtime miss is returned as an error rather than
// defaulting.
func Convert(prop Property, from Unit, v float64) (Converted, error) {
	c, ok := convTable[convKey{prop, from}]
	if !ok {
		return Converted{}, fmt.Errorf("unsupported conversion: property %s from %s", prop, from)
	}
	return c.fn(v), nil
}

// ConvertLabel is the reverse direction for the ordinal-scale units: it maps
// a compass point or scale label back to a representative numeric value (the
// sector or bucket midpoint). The mapping is lossy: a round trip lands in the
// same bucket, not on the original value.
func ConvertLabel(prop Property, from Unit, label string) (Converted, error) {
	switch {
	case prop == WindDirection && from == UnitCompass:
		for i, p := range compassPoints {
			if p == label {
				return Converted{Unit: UnitDegrees, Value: float64(i) * 22.5}, nil
			}
		}
	case prop == SkyCover && from == UnitDescriptive:
		if mid, ok := skyCoverMidpoints[label]; ok {
			return Converted{Unit: UnitPercent, Value: mid}, nil
		}
	case prop == ProbabilityOfPrecipitation && from == UnitQualitative:
		if mid, ok := popMidpoints[label]; ok {
			return Converted{Unit: UnitPercent, Value: mid}, nil
		}
	default:
		return Converted{}, fmt.Errorf("unsupported conversion: property %s from %s", prop, from)
	}
	return Converted{}, fmt.Errorf("unknown %s label %q for property %s", from, label, prop)
}

// CanConvert reports whether the table converts the property from one unit to
// another, in either the numeric or the label direction.
func CanConvert(prop Property, from, to Unit) bool {
	if c, ok := convTable[convKey{prop, from}]; ok && c.to == to {
		return true
	}
	switch from {
	case UnitCompass:
		return prop == WindDirection && to == UnitDegrees
	case UnitDescriptive:
		return prop == SkyCover && to == UnitPercent
	case UnitQualitative:
		return prop == ProbabilityOfPrecipitation && to == UnitPercent
	}
	return false
}
