// Package scoring computes the composite viability score for a candidate
// site and machine category. Scores reflect real viability for a
// $3K-$10K vending investment: a residential address should land in the
// 20s, a busy office tower in a commercial district in the 75-90 band.
//
// Every function here is pure. Fetching, caching and retries live in the
// provider clients; the engine only ever sees their outputs.
package scoring

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/vendscout/internal/category"
)

// BusinessStatus mirrors the operational status reported by place data.
type BusinessStatus string

const (
	StatusOperational       BusinessStatus = "OPERATIONAL"
	StatusClosedTemporarily BusinessStatus = "CLOSED_TEMPORARILY"
	StatusClosedPermanently BusinessStatus = "CLOSED_PERMANENTLY"
)

// Demographics are the census figures for the site's tract.
type Demographics struct {
	PopulationDensity float64 `json:"population_density"` // people per square mile
	MedianIncome      float64 `json:"median_income"`
	MedianAge         float64 `json:"median_age"`
	EmploymentRate    float64 `json:"employment_rate"` // employed / labor force, 0-1
	Population        int     `json:"population"`
}

// Competition summarizes competing businesses around the site.
type Competition struct {
	Count              int     `json:"count"`
	NearestMiles       float64 `json:"nearest_miles"`
	PlaceCountInRadius int     `json:"place_count_in_radius"`
}

// Input carries everything the engine needs for one site/category pair.
// Optional data is expressed by zero values plus the Has* flags, so a
// caller with only census data can still get a (low-confidence) score.
type Input struct {
	Category category.Category `json:"category"`

	Demographics Demographics `json:"demographics"`
	Competition  Competition  `json:"competition"`

	PlaceTypes       []string       `json:"place_types"`
	UserRatingsTotal int            `json:"user_ratings_total"`
	BusinessStatus   BusinessStatus `json:"business_status,omitempty"`
	HasOpeningHours  bool           `json:"has_opening_hours"`

	// IsAreaLevel marks a geocode that resolved to an area rather than
	// a specific place.
	IsAreaLevel     bool `json:"is_area_level"`
	HasPlaceDetails bool `json:"has_place_details"`
	HasCensusData   bool `json:"has_census_data"`
}

// DataQuality grades how much real data backed a score.
type DataQuality string

const (
	QualityHigh   DataQuality = "high"
	QualityMedium DataQuality = "medium"
	QualityLow    DataQuality = "low"
)

// Score is the engine output.
type Score struct {
	Overall      int `json:"overall"` // 1-99
	FootTraffic  int `json:"foot_traffic"`
	Demographics int `json:"demographics"`
	Competition  int `json:"competition"`
	BuildingType int `json:"building_type"`

	NegativeSignals []string    `json:"negative_signals"`
	DataQuality     DataQuality `json:"data_quality"`
}

var moneyPrinter = message.NewPrinter(language.English)

// Compute scores the input. Deterministic: identical inputs always
// produce identical outputs.
func Compute(in Input) Score {
	prof := category.Get(in.Category)
	density := in.Demographics.PopulationDensity
	if density == 0 {
		density = 5000
	}

	ft := footTrafficScore(in.UserRatingsTotal, density, in.BusinessStatus, in.HasOpeningHours, in.HasPlaceDetails)
	demo := demographicsScore(in.Demographics, prof)
	comp := competitionScore(in.Competition, density)
	bt := buildingTypeScore(in.PlaceTypes, prof, in.IsAreaLevel, in.HasCensusData, in.Demographics)

	w := prof.Weights
	overall := int(math.Round(float64(ft*w.FootTraffic+demo*w.Demographics+comp*w.Competition+bt*w.BuildingType) / 100))

	return Score{
		Overall:         clamp(overall, 1, 99),
		FootTraffic:     ft,
		Demographics:    demo,
		Competition:     comp,
		BuildingType:    bt,
		NegativeSignals: negativeSignals(in, prof),
		DataQuality:     dataQuality(in),
	}
}

// footTrafficScore uses review volume as a popularity proxy, with a
// population-density ceiling so suburban residential areas cannot claim
// high foot traffic.
func footTrafficScore(reviews int, density float64, status BusinessStatus, hasHours, hasPlace bool) int {
	if status == StatusClosedPermanently {
		return 0
	}
	if status == StatusClosedTemporarily {
		if reviews > 0 {
			return 15
		}
		return 5
	}

	var score int
	switch {
	case reviews <= 0:
		score = 10
	case reviews < 50:
		score = 15 + int(math.Round(float64(reviews)/50*20))
	case reviews < 500:
		score = 35 + int(math.Round(float64(reviews-50)/450*30))
	case reviews < 2000:
		score = 65 + int(math.Round(float64(reviews-500)/1500*15))
	default:
		score = 80 + min(15, int(math.Round(float64(reviews-2000)/5000*15)))
	}

	if density < 3000 {
		score = min(score, 40)
	} else if density < 8000 {
		score = min(score, 60)
	}

	// Missing opening hours is a data-confidence penalty, only applied
	// when place details exist at all.
	if hasPlace && !hasHours && score > 15 {
		score = max(10, score-15)
	}

	return clamp(score, 0, 95)
}

// demographicsScore uses a gradual income function rather than a binary
// threshold, with an age-fit bonus and an employment-rate factor.
func demographicsScore(d Demographics, prof *category.Profile) int {
	ratio := d.MedianIncome / float64(prof.Ideal.MinIncome)

	var score int
	switch {
	case ratio < 0.6:
		score = 20
	case ratio < 0.8:
		score = 35
	case ratio < 1.0:
		score = 55
	case ratio < 1.3:
		score = 75
	case ratio < 1.8:
		score = 85
	default:
		score = 90
	}

	if d.MedianAge >= float64(prof.Ideal.TargetAgeMin) && d.MedianAge <= float64(prof.Ideal.TargetAgeMax) {
		score = min(95, score+5)
	}

	// Baseline expectation is 75% employment.
	factor := math.Min(1.0, d.EmploymentRate/0.75)
	return clamp(int(math.Round(float64(score)*factor)), 10, 95)
}

// competitionScore is contextual: zero competitors in a low-density
// suburb signals no demand, while zero in a dense urban area suggests an
// underserved market. One or two competitors validate demand.
func competitionScore(c Competition, density float64) int {
	total := c.PlaceCountInRadius
	if total == 0 {
		total = c.Count
	}

	var score int
	switch {
	case total == 0:
		switch {
		case density < 5000:
			score = 20
		case density < 10000:
			score = 50
		default:
			score = 65
		}
	case total <= 2:
		score = 75
	case total <= 5:
		score = 55
	case total <= 8:
		score = 35
	default:
		score = 20
	}

	if c.Count > 0 && c.NearestMiles > 1.0 {
		score = min(90, score+10)
	} else if c.Count > 0 && c.NearestMiles > 0.5 {
		score = min(90, score+5)
	}

	return clamp(score, 5, 95)
}

var commercialTypes = []string{
	"store", "shopping_mall", "shopping_center", "supermarket",
	"restaurant", "cafe", "food", "establishment", "point_of_interest",
	"business_center", "commercial_building",
}

var residentialTypes = []string{
	"premise", "street_address", "route", "neighborhood",
	"sublocality", "locality", "political", "geocode",
	"single_family_residential", "residential_area",
}

// buildingTypeScore validates that the location's classification matches
// the vending category. A residential home scores 15 for office vending,
// not a census-income-driven 88.
func buildingTypeScore(types []string, prof *category.Profile, areaLevel, hasCensus bool, d Demographics) int {
	if areaLevel || len(types) == 0 {
		if hasCensus {
			return clamp(buildingTypeFallback(d, prof.ID), 15, 40)
		}
		return 20
	}

	if prof.HasExpectedType(types) {
		return 90
	}
	if prof.HasRelatedType(types) {
		return 60
	}
	if containsAny(types, commercialTypes) {
		return 40
	}
	if containsAny(types, residentialTypes) {
		return 15
	}
	return 25
}

// buildingTypeFallback estimates building fit from census data alone.
// Deliberately capped low: without place types the category match is a
// guess.
func buildingTypeFallback(d Demographics, cat category.Category) int {
	switch cat {
	case category.Office:
		if d.MedianIncome >= 65000 && d.EmploymentRate >= 0.7 {
			return 35
		}
		if d.MedianIncome >= 50000 {
			return 28
		}
		return 20
	case category.Hospital:
		if d.Population >= 20000 {
			return 35
		}
		return 22
	case category.Transit:
		if d.Population >= 25000 {
			return 38
		}
		return 20
	default:
		return 25
	}
}

func containsAny(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
