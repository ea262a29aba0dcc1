package table

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpinewx/skicast/internal/forecast"
)

func mustTZ(t *testing.T) *time.Location {
	t.Helper()
	tz, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return tz
}

func f(v float64) *float64 { return &v }

func periodAggs(aggs map[forecast.Property]forecast.Aggregate) forecast.PeriodAggregates {
	statuses := make([]forecast.Status, 0, len(aggs))
	for _, a := range aggs {
		statuses = append(statuses, a.Status)
	}
	return forecast.PeriodAggregates{Aggregates: aggs, Overall: forecast.OverallStatus(statuses)}
}

func TestBuild_Columns(t *testing.T) {
	tz := mustTZ(t)
	r := NewRenderer(forecast.DefaultSchedule(), tz)
	ref := time.Date(2026, 1, 5, 7, 0, 0, 0, tz) // Monday

	tbl := r.Build(ref, nil)
	assert.Equal(t, "Today", tbl.Columns[0].Label)
	assert.Equal(t, "Jan 5", tbl.Columns[0].Date)
	assert.Equal(t, "Tomorrow", tbl.Columns[1].Label)
	assert.Equal(t, "Wednesday", tbl.Columns[2].Label)
	assert.Equal(t, "Sunday", tbl.Columns[6].Label)
	assert.Equal(t, "Jan 11", tbl.Columns[6].Date)
}

func TestRow_HeaderAndStaleLabels(t *testing.T) {
	tz := mustTZ(t)
	r := NewRenderer(forecast.DefaultSchedule(), tz)
	loc := forecast.Location{
		ID: "baker", Name: "Mt. Baker",
		Base: 3500, Summit: 5089,
		Href: "https://example.com/baker",
	}
	ref := time.Date(2026, 1, 5, 7, 0, 0, 0, tz)

	var aggs forecast.DayAggregates
	for day := range aggs {
		aggs[day] = map[forecast.Period]forecast.PeriodAggregates{}
	}

	row := r.Row(loc, aggs, ref, ref)
	assert.Equal(t, "Mt. Baker", row.Header.Display)
	assert.Equal(t, "Base 3500 ft / Summit 5089 ft", row.Header.Detail)
	assert.Equal(t, loc.Href, row.Header.Link)
	assert.Contains(t, row.Days[0].Detail, "Mt. Baker Today:")

	// A row computed against yesterday's reference must not claim "Today".
	stale := ref.AddDate(0, 0, -1)
	row = r.Row(loc, aggs, stale, ref)
	assert.Contains(t, row.Days[0].Detail, "Mt. Baker Sunday:")
	assert.NotContains(t, row.Days[0].Detail, "Today")
}

func TestPrecipDescriptor(t *testing.T) {
	rain := forecast.WeatherCondition{Weather: "rain_showers"}
	snow := forecast.WeatherCondition{Weather: "snow_showers"}

	tests := []struct {
		name string
		pa   forecast.PeriodAggregates
		want string
	}{
		{
			"no precip signal at all",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.QuantitativePrecipitation: {Sum: f(0)},
				forecast.SnowfallAmount:            {Sum: f(0)},
			}),
			"NONE",
		},
		{
			"snow with accumulation",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.Weather:        {Conditions: []forecast.WeatherCondition{snow}},
				forecast.SnowfallAmount: {Sum: f(6.4)},
			}),
			"SNOW: 6.4in",
		},
		{
			"rain trace",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.Weather:                   {Conditions: []forecast.WeatherCondition{rain}},
				forecast.QuantitativePrecipitation: {Sum: f(0.05)},
			}),
			"RAIN: trace",
		},
		{
			"mixed reports the larger sum as upper bound",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.Weather:                   {Conditions: []forecast.WeatherCondition{rain, snow}},
				forecast.QuantitativePrecipitation: {Sum: f(0.3)},
				forecast.SnowfallAmount:            {Sum: f(2.1)},
			}),
			"MIX: <2.1in",
		},
		{
			"rain signal without a sum",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.Weather: {Conditions: []forecast.WeatherCondition{rain}},
			}),
			"RAIN: --",
		},
		{
			"snow inferred from sums when weather is unavailable",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.Weather:                   {Missing: true, Status: forecast.StatusCaution},
				forecast.QuantitativePrecipitation: {Sum: f(0)},
				forecast.SnowfallAmount:            {Sum: f(5.0)},
			}),
			"SNOW: 5.0in",
		},
		{
			"rain inferred from sums when weather is unavailable",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.QuantitativePrecipitation: {Sum: f(0.4)},
				forecast.SnowfallAmount:            {Sum: f(0)},
			}),
			"RAIN: 0.4in",
		},
		{
			"both sums positive above freezing reads as mixed",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.Temperature:               {Max: &forecast.Extremum{Value: 38}, Min: &forecast.Extremum{Value: 30}},
				forecast.QuantitativePrecipitation: {Sum: f(0.3)},
				forecast.SnowfallAmount:            {Sum: f(2.1)},
			}),
			"MIX: <2.1in",
		},
		{
			"both sums positive below freezing reads as snow",
			periodAggs(map[forecast.Property]forecast.Aggregate{
				forecast.Temperature:               {Max: &forecast.Extremum{Value: 28}, Min: &forecast.Extremum{Value: 20}},
				forecast.QuantitativePrecipitation: {Sum: f(0.3)},
				forecast.SnowfallAmount:            {Sum: f(2.1)},
			}),
			"SNOW: 2.1in",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, precipDescriptor(tt.pa))
		})
	}
}

func TestPrecipLine(t *testing.T) {
	snow := forecast.WeatherCondition{Weather: "snow_showers"}

	withPop := periodAggs(map[forecast.Property]forecast.Aggregate{
		forecast.Weather:                    {Conditions: []forecast.WeatherCondition{snow}},
		forecast.SnowfallAmount:             {Sum: f(6.4)},
		forecast.ProbabilityOfPrecipitation: {Max: &forecast.Extremum{Value: 72}, Label: "very likely"},
	})
	assert.Equal(t, "SNOW: 6.4in, 72%", precipLine(withPop))

	withoutPop := periodAggs(map[forecast.Property]forecast.Aggregate{
		forecast.Weather:                    {Conditions: []forecast.WeatherCondition{snow}},
		forecast.SnowfallAmount:             {Sum: f(6.4)},
		forecast.ProbabilityOfPrecipitation: {Missing: true, Status: forecast.StatusCaution},
	})
	assert.Equal(t, "SNOW: 6.4in", precipLine(withoutPop))
}

func TestSnowLevelDescriptor(t *testing.T) {
	base := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	t.Run("rising", func(t *testing.T) {
		got := snowLevelDescriptor(forecast.Aggregate{
			Min: &forecast.Extremum{Time: base, Value: 2340},
			Max: &forecast.Extremum{Time: base.Add(6 * time.Hour), Value: 3460},
		})
		assert.Equal(t, "SLVL: 2300-3500ft ↑", got)
	})
	t.Run("falling", func(t *testing.T) {
		got := snowLevelDescriptor(forecast.Aggregate{
			Max: &forecast.Extremum{Time: base, Value: 3460},
			Min: &forecast.Extremum{Time: base.Add(6 * time.Hour), Value: 2340},
		})
		assert.Equal(t, "SLVL: 2300-3500ft ↓", got)
	})
	t.Run("steady low elevation rounds to 10ft", func(t *testing.T) {
		got := snowLevelDescriptor(forecast.Aggregate{
			Max: &forecast.Extremum{Time: base, Value: 842},
			Min: &forecast.Extremum{Time: base, Value: 842},
		})
		assert.Equal(t, "SLVL: 840ft →", got)
	})
	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, "SLVL: --", snowLevelDescriptor(forecast.Aggregate{Missing: true}))
	})
}

func TestTempDescriptor(t *testing.T) {
	tz := mustTZ(t)
	r := NewRenderer(forecast.DefaultSchedule(), tz)

	var aggs forecast.DayAggregates
	aggs[0] = map[forecast.Period]forecast.PeriodAggregates{
		forecast.PeriodAM: periodAggs(map[forecast.Property]forecast.Aggregate{
			forecast.Temperature: {Avg: f(21.4)},
		}),
		forecast.PeriodPM: periodAggs(map[forecast.Property]forecast.Aggregate{
			forecast.Temperature: {Avg: f(28.0)},
		}),
		forecast.PeriodOvernight: periodAggs(map[forecast.Property]forecast.Aggregate{
			forecast.Temperature: {Missing: true, Status: forecast.StatusCaution},
		}),
	}
	aggs[4] = map[forecast.Period]forecast.PeriodAggregates{
		forecast.Period24h: periodAggs(map[forecast.Property]forecast.Aggregate{
			forecast.Temperature: {
				Min: &forecast.Extremum{Value: 12.6},
				Max: &forecast.Extremum{Value: 30.2},
			},
		}),
	}

	assert.Equal(t, "AM|PM|ON: 21|28|-- F", r.tempDescriptor(aggs, 0))
	assert.Equal(t, "MIN|MAX: 13|30 F", r.tempDescriptor(aggs, 4))
}

func TestWindDescriptor(t *testing.T) {
	complete := periodAggs(map[forecast.Property]forecast.Aggregate{
		forecast.WindDirection: {Label: "NW"},
		forecast.WindSpeed:     {Avg: f(12.3)},
		forecast.WindGust:      {Max: &forecast.Extremum{Value: 25.4}},
	})
	assert.Equal(t, "NW 12mph, gusts to 25mph", windDescriptor(complete))

	missingGust := periodAggs(map[forecast.Property]forecast.Aggregate{
		forecast.WindDirection: {Label: "NW"},
		forecast.WindSpeed:     {Avg: f(12.3)},
		forecast.WindGust:      {Missing: true, Status: forecast.StatusCaution},
	})
	assert.Equal(t, "wind data incomplete", windDescriptor(missingGust))
}

func TestDayCell_StatusAndLayout(t *testing.T) {
	tz := mustTZ(t)
	r := NewRenderer(forecast.DefaultSchedule(), tz)
	ref := time.Date(2026, 1, 5, 7, 0, 0, 0, tz)
	loc := forecast.Location{ID: "baker", Name: "Mt. Baker", Base: 3500, Summit: 5089}
	base := time.Date(2026, 1, 5, 8, 0, 0, 0, tz)

	var aggs forecast.DayAggregates
	for day := range aggs {
		aggs[day] = map[forecast.Period]forecast.PeriodAggregates{}
	}
	aggs[0][forecast.Period24h] = periodAggs(map[forecast.Property]forecast.Aggregate{
		forecast.Weather: {
			Status:     forecast.StatusPoor,
			Conditions: []forecast.WeatherCondition{{Weather: "rain"}},
		},
		forecast.QuantitativePrecipitation: {Status: forecast.StatusGood, Sum: f(0.8)},
		forecast.ProbabilityOfPrecipitation: {
			Status: forecast.StatusGood,
			Max:    &forecast.Extremum{Time: base, Value: 65},
			Label:  "likely",
		},
		forecast.SnowLevel: {
			Status: forecast.StatusCaution,
			Min:    &forecast.Extremum{Time: base, Value: 3800},
			Max:    &forecast.Extremum{Time: base.Add(8 * time.Hour), Value: 4600},
		},
	})

	row := r.Row(loc, aggs, ref, ref)
	cell := row.Days[0]

	lines := strings.Split(cell.Display, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "RAIN: 0.8in, 65%", lines[0])
	assert.Equal(t, "SLVL: 3800-4600ft ↑", lines[1])
	assert.Equal(t, "AM|PM|ON: --|--|-- F", lines[2])

	// The worst property status colors the cell.
	assert.Equal(t, forecast.StatusPoor, cell.Status)
	assert.Contains(t, cell.Detail, "SLVL: 3800-4600ft ↑")
}
