// Package forecast turns raw NWS grid forecasts into classified daily
// aggregates for ski-area locations.
//
// # Data source
//
// Forecasts come from the NWS gridpoints API (api.weather.gov). Each tracked
// property is an irregular time series of points whose validTime is an
// ISO-8601 instant, optionally with a duration suffix ("/PT3H"); only the
// start instant is used. Values use WMO unit identifiers ("wmoUnit:degC");
// the weather property carries coverage/weather/intensity triples instead of
// a number.
//
// # Day and period buckets
//
// A forecast day runs 06:00 to 06:00 local time. Samples are assigned to one
// of seven day buckets relative to the reference date's 06:00 cutoff; the
// first three days additionally split into am (06-12), pm (12-18), and
// overnight (18-06, spanning midnight) periods. Samples outside the window
// are dropped.
//
// # Reduction and classification
//
// Each property has configured reducers (max and min keep the timestamp of
// the extremum; avg and sum discard timestamps). Reducer outputs are
// converted to the display unit exactly once. Each property then classifies
// into a status of 1 (poor), 2 (caution), or 3 (good):
//
//	temperature: poor when max >= 35F or min < 10F; caution when max > 33F or min < 15F
//	windSpeed:   poor when avg >= 30 mph; caution when >= 20
//	windGust:    poor when max >= 40 mph; caution when >= 30
//	snowLevel:   poor above the summit, caution within the elevation band
//	weather:     poor for rain without snow, caution for mixed, good otherwise
//
// The remaining properties are informational only and always classify good.
// A bucket's overall status is the minimum of its property statuses; buckets
// with no qualifying samples resolve to a missing-data sentinel with a fixed
// caution status instead of running a reducer over empty input.
package forecast
