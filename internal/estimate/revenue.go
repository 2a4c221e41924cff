// Package estimate translates composite location scores into weekly
// revenue ranges using NAMA (National Automatic Merchandising
// Association) industry benchmarks and score-percentile mapping.
package estimate

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/vendscout/internal/category"
)

// Benchmark holds weekly gross revenue percentiles, in USD, for a
// single machine at a typical location of one category.
type Benchmark struct {
	P25        int    `json:"p25"`
	P50        int    `json:"p50"`
	P75        int    `json:"p75"`
	P90        int    `json:"p90"`
	BasisLabel string `json:"basis_label"`
}

// Confidence levels for an estimate. High is reserved for operators
// with enough reported outcomes to calibrate locally.
const (
	ConfidenceLow      = "low"
	ConfidenceModerate = "moderate"
	ConfidenceHigh     = "high"
)

// RevenueEstimate is a projected revenue range for a scored location.
type RevenueEstimate struct {
	WeeklyLow      int    `json:"weekly_low"`
	WeeklyHigh     int    `json:"weekly_high"`
	MonthlyMid     int    `json:"monthly_mid"`
	AnnualMid      int    `json:"annual_mid"`
	Basis          string `json:"basis"`
	Confidence     string `json:"confidence"`
	ConfidenceNote string `json:"confidence_note"`
}

// Source: NAMA State of the Industry reports plus operator surveys.
var benchmarks = map[category.Category]Benchmark{
	category.Office:        {P25: 125, P50: 250, P75: 400, P90: 550, BasisLabel: "Industry benchmarks for office building placements"},
	category.Gym:           {P25: 100, P50: 200, P75: 350, P90: 500, BasisLabel: "Industry benchmarks for gym/fitness center placements"},
	category.Hospital:      {P25: 200, P50: 375, P75: 550, P90: 750, BasisLabel: "Industry benchmarks for hospital/medical facility placements"},
	category.School:        {P25: 100, P50: 200, P75: 325, P90: 450, BasisLabel: "Industry benchmarks for school/university placements"},
	category.Manufacturing: {P25: 150, P50: 275, P75: 425, P90: 575, BasisLabel: "Industry benchmarks for manufacturing/warehouse placements"},
	category.Apartment:     {P25: 75, P50: 175, P75: 300, P90: 425, BasisLabel: "Industry benchmarks for apartment complex placements"},
	category.Hotel:         {P25: 150, P50: 300, P75: 475, P90: 650, BasisLabel: "Industry benchmarks for hotel/lodging placements"},
	category.Transit:       {P25: 175, P50: 325, P75: 500, P90: 700, BasisLabel: "Industry benchmarks for transit hub placements"},
}

// CategoryBenchmark returns the NAMA benchmark range for a category.
func CategoryBenchmark(cat category.Category) Benchmark {
	if b, ok := benchmarks[cat]; ok {
		return b
	}
	return benchmarks[category.Office]
}

// scoreToPercentile maps a composite score to an approximate percentile
// position within the benchmark range. Non-linear: below 40 maps to the
// bottom quartile, 80+ starts reaching the top decile.
func scoreToPercentile(score int) float64 {
	switch {
	case score >= 90:
		return 0.92
	case score >= 85:
		return 0.85
	case score >= 80:
		return 0.78
	case score >= 75:
		return 0.70
	case score >= 70:
		return 0.62
	case score >= 65:
		return 0.55
	case score >= 60:
		return 0.48
	case score >= 55:
		return 0.40
	case score >= 50:
		return 0.32
	case score >= 45:
		return 0.25
	case score >= 40:
		return 0.20
	default:
		return 0.15
	}
}

const spread = 0.20 // +/- around midpoint, real-world variance

type breakpoint struct {
	pct     float64
	revenue float64
}

// interpolate produces a point estimate by linear interpolation between
// benchmark breakpoints, then a range around it.
func interpolate(b Benchmark, percentile float64) (low, mid, high int) {
	bps := []breakpoint{
		{0.0, float64(b.P25) * 0.6},
		{0.25, float64(b.P25)},
		{0.50, float64(b.P50)},
		{0.75, float64(b.P75)},
		{0.90, float64(b.P90)},
		{1.0, float64(b.P90) * 1.15},
	}

	lower, upper := bps[0], bps[len(bps)-1]
	for i := 0; i < len(bps)-1; i++ {
		if percentile >= bps[i].pct && percentile <= bps[i+1].pct {
			lower, upper = bps[i], bps[i+1]
			break
		}
	}

	t := 0.5
	if span := upper.pct - lower.pct; span > 0 {
		t = (percentile - lower.pct) / span
	}
	m := math.Round(lower.revenue + t*(upper.revenue-lower.revenue))

	return int(math.Round(m * (1 - spread))), int(m), int(math.Round(m * (1 + spread)))
}

func confidence(score int) (level, note string) {
	// Always low-to-moderate until operator feedback exists to
	// calibrate against local outcomes.
	switch {
	case score >= 75:
		return ConfidenceModerate, "Based on industry benchmarks. Report your results to improve local estimates."
	case score >= 50:
		return ConfidenceLow, "Limited data for this score range. Actual results may vary significantly. Report your results to help calibrate."
	default:
		return ConfidenceLow, "Low-scoring locations have high revenue variance. Consider alternatives or report your results if you proceed."
	}
}

// Revenue estimates the weekly revenue range for an overall score and
// category. Dollar figures round to the nearest $5 for display.
func Revenue(overall int, cat category.Category) RevenueEstimate {
	b := CategoryBenchmark(cat)
	low, mid, high := interpolate(b, scoreToPercentile(overall))
	level, note := confidence(overall)

	weeklyMid := roundTo5(mid)
	return RevenueEstimate{
		WeeklyLow:      roundTo5(low),
		WeeklyHigh:     roundTo5(high),
		MonthlyMid:     int(math.Round(float64(weeklyMid) * 4.33)),
		AnnualMid:      weeklyMid * 52,
		Basis:          b.BasisLabel,
		Confidence:     level,
		ConfidenceNote: note,
	}
}

func roundTo5(v int) int {
	return int(math.Round(float64(v)/5)) * 5
}

var printer = message.NewPrinter(language.English)

// FormatRange renders an estimate as "$200 - $350/week".
func (e RevenueEstimate) FormatRange() string {
	return printer.Sprintf("$%d - $%d/week", e.WeeklyLow, e.WeeklyHigh)
}
