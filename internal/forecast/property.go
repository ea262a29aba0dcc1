package forecast

import "fmt"

// Property identifies a tracked grid forecast property. The names match the
// keys used by the NWS gridpoints payload.
type Property string

const (
	Temperature                Property = "temperature"
	SkyCover                   Property = "skyCover"
	WindDirection              Property = "windDirection"
	WindSpeed                  Property = "windSpeed"
	WindGust                   Property = "windGust"
	Weather                    Property = "weather"
	ProbabilityOfPrecipitation Property = "probabilityOfPrecipitation"
	QuantitativePrecipitation  Property = "quantitativePrecipitation"
	SnowfallAmount             Property = "snowfallAmount"
	SnowLevel                  Property = "snowLevel"
)

// Reducer names a statistical reduction applied to a bucket of samples.
type Reducer string

const (
	ReduceMax Reducer = "max"
	ReduceMin Reducer = "min"
	ReduceAvg Reducer = "avg"
	ReduceSum Reducer = "sum"
	// ReduceCollect gathers weather condition triples without numeric reduction.
	ReduceCollect Reducer = "collect"
)

// Rule configures how one property is aggregated: which reducers run over
// each bucket and which unit the reduced values are displayed in.
type Rule struct {
	Target   Unit      `json:"target"`
	Reducers []Reducer `json:"reducers"`
}

// DefaultRules returns the property rules used by the reference deployment.
func DefaultRules() map[Property]Rule {
	return map[Property]Rule{
		Temperature:                {Target: UnitDegF, Reducers: []Reducer{ReduceMax, ReduceMin, ReduceAvg}},
		SkyCover:                   {Target: UnitDescriptive, Reducers: []Reducer{ReduceAvg}},
		WindDirection:              {Target: UnitCompass, Reducers: []Reducer{ReduceAvg}},
		WindSpeed:                  {Target: UnitMph, Reducers: []Reducer{ReduceAvg, ReduceMax}},
		WindGust:                   {Target: UnitMph, Reducers: []Reducer{ReduceMax}},
		Weather:                    {Reducers: []Reducer{ReduceCollect}},
		ProbabilityOfPrecipitation: {Target: UnitQualitative, Reducers: []Reducer{ReduceMax}},
		QuantitativePrecipitation:  {Target: UnitIn, Reducers: []Reducer{ReduceSum}},
		SnowfallAmount:             {Target: UnitIn, Reducers: []Reducer{ReduceSum}},
		SnowLevel:                  {Target: UnitFt, Reducers: []Reducer{ReduceMax, ReduceMin, ReduceAvg}},
	}
}

// sourceUnits lists the raw units each property may arrive in. Used by
// ValidateRules to prove conversion coverage before any forecast is processed.
var sourceUnits = map[Property][]Unit{
	Temperature:                {UnitDegC, UnitDegF},
	SkyCover:                   {UnitPercent},
	WindDirection:              {UnitDegrees},
	WindSpeed:                  {UnitKmh, UnitMph},
	WindGust:                   {UnitKmh, UnitMph},
	ProbabilityOfPrecipitation: {UnitPercent},
	QuantitativePrecipitation:  {UnitMm, UnitIn},
	SnowfallAmount:             {UnitMm, UnitIn},
	SnowLevel:                  {UnitM, UnitFt},
}

// ValidateRules checks every configured (property, source unit, target unit)
// combination against the conversion table. An unsupported combination is a
// configuration defect and must fail at startup, not at aggregation time.
func ValidateRules(rules map[Property]Rule) error {
	for prop, rule := range rules {
		if len(rule.Reducers) == 0 {
			return fmt.Errorf("property %s: no reducers configured", prop)
		}
		if prop == Weather {
			continue
		}
		if rule.Target == "" {
			return fmt.Errorf("property %s: no target unit configured", prop)
		}
		for _, src := range sourceUnits[prop] {
			if src == rule.Target {
				continue
			}
			if !CanConvert(prop, src, rule.Target) {
				return fmt.Errorf("property %s: no conversion from %s to %s", prop, src, rule.Target)
			}
		}
	}
	return nil
}
