// Package goldenhours reweights 24-hour busyness curves by when traffic
// is commercially valuable for each machine category. A gym busy at
// 6 AM outranks a gym equally busy at 2 PM.
package goldenhours

import (
	"fmt"
	"math"

	"github.com/sells-group/vendscout/internal/category"
)

const (
	baselineWeight  = 0.5
	primaryWeight   = 1.5
	secondaryWeight = 1.2
	deadZoneWeight  = 0.15
)

// Window is a half-open hour range [Start, End). Dead-zone windows may
// wrap past midnight (End < Start).
type Window struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// Config defines the time-of-day profile for one category.
type Config struct {
	PrimaryPeak   Window   `json:"primary_peak"`
	SecondaryPeak Window   `json:"secondary_peak"`
	DeadZones     []Window `json:"dead_zones"`
	WeekendFactor float64  `json:"weekend_factor"`
}

// HourlyCurve holds 24 weekday and 24 weekend busyness values (0-100).
type HourlyCurve struct {
	Weekday [24]int `json:"weekday"`
	Weekend [24]int `json:"weekend"`
}

// Score is the result of golden-hours weighting.
type Score struct {
	Weighted        int     `json:"weighted"`         // time-aware 0-100 score
	RawAverage      int     `json:"raw_average"`      // unweighted 7-day average
	WeekendFactor   float64 `json:"weekend_factor"`
	SeasonalWarning string  `json:"seasonal_warning,omitempty"`
}

var configs = map[category.Category]Config{
	category.Office: {
		PrimaryPeak:   Window{Start: 11, End: 13, Label: "11 AM - 1 PM"},
		SecondaryPeak: Window{Start: 15, End: 16, Label: "3 - 4 PM"},
		DeadZones: []Window{
			{Start: 0, End: 7, Label: "Before 7 AM"},
			{Start: 19, End: 24, Label: "After 7 PM"},
		},
		WeekendFactor: 0.1,
	},
	category.Gym: {
		PrimaryPeak:   Window{Start: 6, End: 9, Label: "6 - 9 AM"},
		SecondaryPeak: Window{Start: 16, End: 19, Label: "4 - 7 PM"},
		DeadZones:     []Window{{Start: 10, End: 15, Label: "10 AM - 3 PM"}},
		WeekendFactor: 0.8,
	},
	category.Hospital: {
		// Hospitals are always active; no dead zones.
		PrimaryPeak:   Window{Start: 0, End: 24, Label: "All hours (24/7)"},
		SecondaryPeak: Window{Start: 7, End: 8, Label: "Shift change: 7 AM"},
		WeekendFactor: 0.9,
	},
	category.School: {
		PrimaryPeak:   Window{Start: 11, End: 14, Label: "11 AM - 2 PM"},
		SecondaryPeak: Window{Start: 15, End: 17, Label: "3 - 5 PM"},
		DeadZones: []Window{
			{Start: 0, End: 8, Label: "Before 8 AM"},
			{Start: 21, End: 24, Label: "After 9 PM"},
		},
		WeekendFactor: 0.15,
	},
	category.Manufacturing: {
		PrimaryPeak:   Window{Start: 6, End: 7, Label: "Shift start: 6 AM"},
		SecondaryPeak: Window{Start: 14, End: 15, Label: "Shift change: 2 PM"},
		DeadZones:     []Window{{Start: 9, End: 13, Label: "Between shifts"}},
		WeekendFactor: 0.3,
	},
	category.Apartment: {
		PrimaryPeak:   Window{Start: 17, End: 21, Label: "5 - 9 PM"},
		SecondaryPeak: Window{Start: 12, End: 15, Label: "Weekend afternoons"},
		DeadZones:     []Window{{Start: 7, End: 11, Label: "Weekday mornings"}},
		WeekendFactor: 1.3,
	},
	category.Hotel: {
		PrimaryPeak:   Window{Start: 7, End: 10, Label: "7 - 10 AM"},
		SecondaryPeak: Window{Start: 21, End: 24, Label: "9 PM - 12 AM"},
		DeadZones:     []Window{{Start: 14, End: 17, Label: "2 - 5 PM"}},
		WeekendFactor: 1.2,
	},
	category.Transit: {
		PrimaryPeak:   Window{Start: 7, End: 9, Label: "7 - 9 AM"},
		SecondaryPeak: Window{Start: 17, End: 19, Label: "5 - 7 PM"},
		DeadZones:     []Window{{Start: 22, End: 5, Label: "10 PM - 5 AM"}},
		WeekendFactor: 0.5,
	},
}

// ConfigFor returns the golden-hours config for a category.
func ConfigFor(cat category.Category) Config {
	if c, ok := configs[cat]; ok {
		return c
	}
	return configs[category.Office]
}

// HourWeights builds the 24-element weight array for a config.
// Primary peak beats secondary; dead zones are applied last and
// override both.
func HourWeights(cfg Config) [24]float64 {
	var w [24]float64
	for h := range w {
		w[h] = baselineWeight
	}
	for h := cfg.PrimaryPeak.Start; h < min(cfg.PrimaryPeak.End, 24); h++ {
		w[h] = primaryWeight
	}
	for h := cfg.SecondaryPeak.Start; h < min(cfg.SecondaryPeak.End, 24); h++ {
		if w[h] < secondaryWeight {
			w[h] = secondaryWeight
		}
	}
	for _, dz := range cfg.DeadZones {
		if dz.End > dz.Start {
			for h := dz.Start; h < dz.End; h++ {
				w[h] = deadZoneWeight
			}
			continue
		}
		// Wraps past midnight (e.g. 22-5).
		for h := dz.Start; h < 24; h++ {
			w[h] = deadZoneWeight
		}
		for h := 0; h < dz.End; h++ {
			w[h] = deadZoneWeight
		}
	}
	return w
}

// Compute produces the time-aware traffic score for a curve. The blend
// models a 5-weekday/2-weekend cycle with the weekend contribution
// scaled by the category's weekend factor before blending.
func Compute(curve HourlyCurve, cat category.Category) Score {
	cfg := ConfigFor(cat)
	weights := HourWeights(cfg)

	var weightedSum, weightSum float64
	for h := 0; h < 24; h++ {
		weightedSum += float64(curve.Weekday[h]) * weights[h]
		weightSum += weights[h]
	}
	weekdayScore := 0.0
	if weightSum > 0 {
		weekdayScore = weightedSum / weightSum
	}

	weekdayAvg := mean(curve.Weekday)
	weekendAvg := mean(curve.Weekend)

	blended := (weekdayScore*5 + weekendAvg*cfg.WeekendFactor*2) / (5 + 2*cfg.WeekendFactor)

	return Score{
		Weighted:        int(math.Round(math.Min(100, math.Max(0, blended)))),
		RawAverage:      int(math.Round((weekdayAvg*5 + weekendAvg*2) / 7)),
		WeekendFactor:   cfg.WeekendFactor,
		SeasonalWarning: seasonalWarning(cat, cfg),
	}
}

// seasonalWarning flags categories with known strong seasonal swings.
func seasonalWarning(cat category.Category, cfg Config) string {
	switch {
	case cat == category.School:
		return "Revenue may drop 40-60% during summer break and holidays"
	case cat == category.Hotel && cfg.WeekendFactor > 1.0:
		return "Revenue varies by tourism season. Check local event calendars."
	default:
		return ""
	}
}

// Description returns a human-readable golden-hours summary for a category.
func Description(cat category.Category) string {
	cfg := ConfigFor(cat)
	return fmt.Sprintf("Peak: %s. Secondary: %s. Weekend: %d%% of weekday.",
		cfg.PrimaryPeak.Label, cfg.SecondaryPeak.Label, int(math.Round(cfg.WeekendFactor*100)))
}

func mean(vals [24]int) float64 {
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / 24
}
