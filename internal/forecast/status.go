package forecast

import "strings"

// Status is the ordinal condition classification for a property or a bucket.
// Lower is worse; the overall bucket status merges pessimistically.
type Status int

const (
	StatusPoor    Status = 1
	StatusCaution Status = 2
	StatusGood    Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusPoor:
		return "poor"
	case StatusCaution:
		return "caution"
	case StatusGood:
		return "good"
	default:
		return "unknown"
	}
}

// OverallStatus merges property statuses pessimistically: the worst status
// present wins. An empty set yields StatusGood.
func OverallStatus(statuses []Status) Status {
	overall := StatusGood
	for _, s := range statuses {
		if s < overall {
			overall = s
		}
	}
	return overall
}

// classifyTemperature applies the temperature rule to max/min in degF.
// Warm days (max at or above 35F) and brutally cold ones (min below 10F)
// are poor; the caution band covers a max above 33F or a min below 15F.
func classifyTemperature(maxF, minF float64) Status {
	switch {
	case maxF >= 35 || minF < 10:
		return StatusPoor
	case maxF > 33 || minF < 15:
		return StatusCaution
	default:
		return StatusGood
	}
}

// classifyWindSpeed applies the sustained wind rule to the bucket average in mph.
func classifyWindSpeed(avgMph float64) Status {
	switch {
	case avgMph >= 30:
		return StatusPoor
	case avgMph >= 20:
		return StatusCaution
	default:
		return StatusGood
	}
}

// classifyWindGust applies the gust rule to the bucket maximum in mph.
func classifyWindGust(maxMph float64) Status {
	switch {
	case maxMph >= 40:
		return StatusPoor
	case maxMph >= 30:
		return StatusCaution
	default:
		return StatusGood
	}
}

// classifySnowLevel compares the bucket's maximum snow level in feet against
// the location's elevation band: above the summit is poor, at or above the
// base is caution, below the base is good.
func classifySnowLevel(maxFt float64, loc Location) Status {
	switch {
	case maxFt > loc.Summit:
		return StatusPoor
	case maxFt >= loc.Base:
		return StatusCaution
	default:
		return StatusGood
	}
}

// ClassifyPrecipType reports whether the bucket's weather conditions include
// rain and/or snow. Drizzle counts as rain.
func ClassifyPrecipType(conds []WeatherCondition) (hasRain, hasSnow bool) {
	for _, c := range conds {
		name := strings.ToLower(c.Weather)
		if strings.Contains(name, "rain") || strings.Contains(name, "drizzle") {
			hasRain = true
		}
		if strings.Contains(name, "snow") {
			hasSnow = true
		}
	}
	return hasRain, hasSnow
}

// classifyWeather derives the weather property status from rain/snow
// presence: rain without snow is poor, mixed precipitation is caution,
// snow-only or dry is good.
func classifyWeather(conds []WeatherCondition) Status {
	hasRain, hasSnow := ClassifyPrecipType(conds)
	switch {
	case hasRain && !hasSnow:
		return StatusPoor
	case hasRain && hasSnow:
		return StatusCaution
	default:
		return StatusGood
	}
}
