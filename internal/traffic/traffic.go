// Package traffic fuses up to seven availability-tolerant signals into
// a weighted foot-traffic score with a confidence grade. Signal fetch
// and signal math are split: Aggregate is pure, Aggregator owns the
// concurrent provider calls.
package traffic

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/signal"
)

// Weights is the per-category signal weight vector. Weights sum to 100.
type Weights struct {
	GoogleRatings int `json:"google_ratings"`
	PopularTimes  int `json:"popular_times"`
	YelpReviews   int `json:"yelp_reviews"`
	POIDensity    int `json:"poi_density"`
	Transit       int `json:"transit"`
	BuildingSize  int `json:"building_size"`
	CensusDensity int `json:"census_density"`
}

var categoryWeights = map[category.Category]Weights{
	category.Office:        {GoogleRatings: 15, PopularTimes: 30, YelpReviews: 5, POIDensity: 20, Transit: 15, BuildingSize: 10, CensusDensity: 5},
	category.Gym:           {GoogleRatings: 25, PopularTimes: 25, YelpReviews: 15, POIDensity: 10, Transit: 5, BuildingSize: 15, CensusDensity: 5},
	category.Hospital:      {GoogleRatings: 10, PopularTimes: 35, YelpReviews: 5, POIDensity: 15, Transit: 10, BuildingSize: 20, CensusDensity: 5},
	category.School:        {GoogleRatings: 10, PopularTimes: 30, YelpReviews: 5, POIDensity: 15, Transit: 15, BuildingSize: 20, CensusDensity: 5},
	category.Manufacturing: {GoogleRatings: 10, PopularTimes: 30, YelpReviews: 5, POIDensity: 10, Transit: 10, BuildingSize: 25, CensusDensity: 10},
	category.Apartment:     {GoogleRatings: 15, PopularTimes: 25, YelpReviews: 10, POIDensity: 15, Transit: 10, BuildingSize: 20, CensusDensity: 5},
	category.Hotel:         {GoogleRatings: 25, PopularTimes: 30, YelpReviews: 15, POIDensity: 15, Transit: 10, BuildingSize: 5, CensusDensity: 0},
	category.Transit:       {GoogleRatings: 10, PopularTimes: 40, YelpReviews: 5, POIDensity: 20, Transit: 25, BuildingSize: 0, CensusDensity: 0},
}

// WeightsFor returns the signal weights for a category.
func WeightsFor(cat category.Category) Weights {
	if w, ok := categoryWeights[cat]; ok {
		return w
	}
	return categoryWeights[category.Office]
}

// Confidence grades how many of the free signals were actually present.
type Confidence struct {
	Level      string `json:"level"` // HIGH, MEDIUM, LOW
	Percentage int    `json:"percentage"`
	Available  int    `json:"available"`
	Total      int    `json:"total"`
	Accuracy   string `json:"accuracy"`
}

// Breakdown echoes the inputs behind a score for display and debugging.
type Breakdown struct {
	Raw           signal.Raw        `json:"raw"`
	Normalized    signal.Normalized `json:"normalized"`
	Weights       Weights           `json:"weights"`
	WeightedScore int               `json:"weighted_score"`
}

// Insights split signal observations into tailwinds and headwinds.
type Insights struct {
	Helping []string `json:"helping"`
	Hurting []string `json:"hurting"`
}

// FootTraffic is the aggregated result.
type FootTraffic struct {
	Score              int        `json:"score"`
	PeakHours          []string   `json:"peak_hours"`
	DailyEstimate      int        `json:"daily_estimate"`
	DailyVisitRange    string     `json:"daily_visit_range"`
	ProximityToTransit bool       `json:"proximity_to_transit"`
	Confidence         Confidence `json:"confidence"`
	Breakdown          Breakdown  `json:"breakdown"`
	Insights           Insights   `json:"insights"`
}

var rangePrinter = message.NewPrinter(language.English)

// Aggregate combines raw signals into a foot-traffic score for a
// category. Pure: all provider fetching happens before this call.
func Aggregate(raw signal.Raw, cat category.Category) FootTraffic {
	weights := WeightsFor(cat)
	norm := signal.Normalize(raw, cat)

	score := float64(norm.GoogleRatings*weights.GoogleRatings+
		norm.Busyness*weights.PopularTimes+
		norm.YelpReviews*weights.YelpReviews+
		norm.POIDensity*weights.POIDensity+
		norm.Transit*weights.Transit+
		norm.BuildingSize*weights.BuildingSize+
		norm.CensusDensity*weights.CensusDensity) / 100
	score = math.Max(0, math.Min(100, score))

	visits := category.Get(cat).DailyVisits
	estimate := int(math.Round(visits.At(score / 100)))
	lower := int(math.Round(float64(estimate) * 0.8))
	upper := int(math.Round(float64(estimate) * 1.2))

	conf := assessConfidence(raw)

	return FootTraffic{
		Score:              int(math.Round(score)),
		PeakHours:          ExtractPeakHours(raw.Busyness),
		DailyEstimate:      estimate,
		DailyVisitRange:    rangePrinter.Sprintf("%d-%d", lower, upper),
		ProximityToTransit: norm.Transit >= 50,
		Confidence:         conf,
		Breakdown: Breakdown{
			Raw:           raw,
			Normalized:    norm,
			Weights:       weights,
			WeightedScore: int(math.Round(score)),
		},
		Insights: buildInsights(norm, cat, weights),
	}
}

// assessConfidence counts present signals. Yelp stays out of the
// denominator: the Fusion API has no free tier, so only six signals are
// expected in practice.
func assessConfidence(raw signal.Raw) Confidence {
	available := 0
	if raw.GoogleRatings != nil {
		available++
	}
	if len(raw.Busyness) > 0 {
		available++
	}
	if raw.POICount != nil {
		available++
	}
	if raw.TransitMiles != nil {
		available++
	}
	if raw.BuildingSqft != nil {
		available++
	}
	if raw.CensusDensity != nil {
		available++
	}

	const total = 6
	c := Confidence{
		Available:  available,
		Total:      total,
		Percentage: int(math.Round(float64(available) / total * 100)),
	}
	switch {
	case available >= 5:
		c.Level, c.Accuracy = "HIGH", "±10%"
	case available >= 3:
		c.Level, c.Accuracy = "MEDIUM", "±20%"
	default:
		c.Level, c.Accuracy = "LOW", "±30%"
	}
	return c
}

var defaultPeakHours = []string{"8am-10am", "12pm-2pm"}

// ExtractPeakHours finds runs of hours with busyness >= 70 and returns
// up to three formatted ranges. Without data it falls back to typical
// commercial peaks.
func ExtractPeakHours(busyness []int) []string {
	if len(busyness) == 0 {
		return defaultPeakHours
	}

	type run struct{ start, end int }
	var runs []run
	start := -1
	for i, v := range busyness {
		isPeak := v >= 70
		if isPeak && start < 0 {
			start = i
		}
		if start >= 0 && (!isPeak || i == len(busyness)-1) {
			end := i
			if isPeak && i == len(busyness)-1 {
				end = i + 1
			}
			runs = append(runs, run{start, end})
			start = -1
		}
	}

	if len(runs) == 0 {
		return defaultPeakHours
	}
	if len(runs) > 3 {
		runs = runs[:3]
	}
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = fmt.Sprintf("%s-%s", formatHour(r.start), formatHour(r.end))
	}
	return out
}

func formatHour(hour int) string {
	h := hour % 24
	suffix := "am"
	if h >= 12 {
		suffix = "pm"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d%s", display, suffix)
}

func buildInsights(n signal.Normalized, cat category.Category, w Weights) Insights {
	var helping, hurting []string

	if n.GoogleRatings >= 80 {
		helping = append(helping, fmt.Sprintf("High engagement volume (top 20%% for %ss)", cat))
	}
	if n.GoogleRatings < 40 {
		hurting = append(hurting, "Low review volume suggests less foot traffic")
	}
	if n.Busyness >= 80 {
		helping = append(helping, "Strong peak hour patterns aligned with demand")
	}
	if n.Busyness < 40 {
		hurting = append(hurting, "Inconsistent traffic patterns throughout the day")
	}
	if n.POIDensity >= 75 {
		helping = append(helping, "High-density area with many nearby businesses")
	}
	if n.POIDensity < 30 {
		hurting = append(hurting, "Isolated location with few nearby attractions")
	}
	if n.Transit >= 90 {
		helping = append(helping, "Excellent transit access (walking distance)")
	}
	if n.Transit == 25 {
		hurting = append(hurting, "No transit access nearby (requires vehicle)")
	}
	if n.BuildingSize >= 75 && w.BuildingSize >= 15 {
		helping = append(helping, "Large facility indicates high capacity")
	}
	if n.CensusDensity >= 75 {
		helping = append(helping, "Dense urban area with high population")
	}

	if len(helping) == 0 {
		helping = []string{"Moderate conditions for vending placement"}
	}
	if len(hurting) == 0 {
		hurting = []string{"No major concerns identified"}
	}
	return Insights{Helping: helping, Hurting: hurting}
}
