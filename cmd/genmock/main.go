// Command genmock generates synthetic grid forecast blobs for the configured
// locations and writes them into the blob store. It uses the real forecast
// domain package so the fixtures exercise the same parsing and bucketing
// paths as live data, which makes offline development with
// "refresh -offline" possible.
//
// Usage:
//
//	go run ./cmd/genmock -ref 2026-01-05T06:00:00-08:00
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/alpinewx/skicast/internal/adapter/blob"
	"github.com/alpinewx/skicast/internal/config"
	"github.com/alpinewx/skicast/internal/forecast"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	refFlag := flag.String("ref", "", "reference time (RFC3339); defaults to now")
	flag.Parse()

	ref := time.Now()
	if *refFlag != "" {
		var err error
		ref, err = time.Parse(time.RFC3339, *refFlag)
		if err != nil {
			return fmt.Errorf("invalid -ref: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := blob.Open(cfg.BlobDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	for i, loc := range cfg.Locations {
		gd := syntheticGridData(loc, ref, int64(i))
		data, err := json.Marshal(gd)
		if err != nil {
			return err
		}
		if err := store.Write(ctx, loc.BlobName(), data); err != nil {
			return err
		}
		log.Printf("%s: wrote %d bytes", loc.ID, len(data))
	}
	return nil
}

// syntheticGridData builds a 7-day forecast at 3-hour resolution with a
// plausible winter pattern: cold nights, wind picking up midweek, and a snow
// event on days 1-2. The seed offsets phases per location so rows differ.
func syntheticGridData(loc forecast.Location, ref time.Time, seed int64) forecast.GridData {
	start := ref.Truncate(time.Hour)
	props := map[string]forecast.GridProperty{
		"temperature":                series(start, "wmoUnit:degC", seed, tempAt),
		"skyCover":                   series(start, "wmoUnit:percent", seed, skyAt),
		"windDirection":              series(start, "wmoUnit:degree_(angle)", seed, windDirAt),
		"windSpeed":                  series(start, "wmoUnit:km_h-1", seed, windSpeedAt),
		"windGust":                   series(start, "wmoUnit:km_h-1", seed, gustAt),
		"probabilityOfPrecipitation": series(start, "wmoUnit:percent", seed, popAt),
		"quantitativePrecipitation":  series(start, "wmoUnit:mm", seed, qpfAt),
		"snowfallAmount":             series(start, "wmoUnit:mm", seed, snowAt),
		"snowLevel":                  series(start, "wmoUnit:m", seed, snowLevelAt),
		"weather":                    weatherSeries(start),
	}
	return forecast.GridData{
		LatLong: [2]float64{loc.Lat, loc.Lon},
		Elev:    [2]float64{loc.Base, loc.Summit},
		Href:    loc.Href,
		Data:    forecast.GridProperties{Properties: props},
	}
}

const stepHours = 3

func series(start time.Time, uom string, seed int64, at func(h float64, seed int64) float64) forecast.GridProperty {
	var values []forecast.GridValue
	for h := 0; h < forecast.NumDays*24; h += stepHours {
		v := at(float64(h), seed)
		raw, _ := json.Marshal(v)
		values = append(values, forecast.GridValue{
			ValidTime: start.Add(time.Duration(h) * time.Hour).Format(time.RFC3339) + "/PT3H",
			Value:     raw,
		})
	}
	return forecast.GridProperty{UOM: uom, Values: values}
}

func weatherSeries(start time.Time) forecast.GridProperty {
	var values []forecast.GridValue
	for h := 0; h < forecast.NumDays*24; h += stepHours {
		var conds []forecast.WeatherCondition
		// Snow event through days 1-2, trailing rain showers late day 2.
		switch {
		case h >= 30 && h < 60:
			conds = append(conds, forecast.WeatherCondition{Coverage: "likely", Weather: "snow_showers", Intensity: "moderate"})
		case h >= 60 && h < 66:
			conds = append(conds, forecast.WeatherCondition{Coverage: "chance", Weather: "rain_showers", Intensity: "light"})
		}
		raw, _ := json.Marshal(conds)
		values = append(values, forecast.GridValue{
			ValidTime: start.Add(time.Duration(h) * time.Hour).Format(time.RFC3339) + "/PT3H",
			Value:     raw,
		})
	}
	return forecast.GridProperty{UOM: "wmoUnit:percent", Values: values}
}

func diurnal(h float64) float64 {
	return math.Sin((h - 9) * math.Pi / 12)
}

func tempAt(h float64, seed int64) float64 {
	return -6 + 4*diurnal(h) + float64(seed%3) - h/72
}

func skyAt(h float64, seed int64) float64 {
	return math.Min(100, 40+30*math.Sin(h/20+float64(seed)))
}

func windDirAt(h float64, seed int64) float64 {
	return math.Mod(225+20*math.Sin(h/15)+float64(seed*10), 360)
}

func windSpeedAt(h float64, seed int64) float64 {
	return 15 + 10*math.Sin(h/30) + float64(seed%4)
}

func gustAt(h float64, seed int64) float64 {
	return windSpeedAt(h, seed) * 1.8
}

func popAt(h float64, _ int64) float64 {
	if h >= 30 && h < 66 {
		return 70
	}
	return 15
}

func qpfAt(h float64, _ int64) float64 {
	if h >= 60 && h < 66 {
		return 1.5
	}
	return 0
}

func snowAt(h float64, _ int64) float64 {
	if h >= 30 && h < 60 {
		return 8
	}
	return 0
}

func snowLevelAt(h float64, seed int64) float64 {
	return 900 + 150*diurnal(h) + 20*float64(seed)
}
