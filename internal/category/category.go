// Package category defines the fixed machine-category profiles that drive
// every stage of location scoring: component weights, ideal demographics,
// benchmark ranges, and building-classification tags.
package category

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Category identifies one of the eight supported vending-machine
// placement categories.
type Category string

// Supported categories.
const (
	Office        Category = "office"
	Gym           Category = "gym"
	Hospital      Category = "hospital"
	School        Category = "school"
	Manufacturing Category = "manufacturing"
	Apartment     Category = "apartment"
	Hotel         Category = "hotel"
	Transit       Category = "transit"
)

// All lists every supported category in display order.
func All() []Category {
	return []Category{Office, Gym, Hospital, School, Manufacturing, Apartment, Hotel, Transit}
}

// Parse returns the Category for an identifier, case-insensitively.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profiles[c]; !ok {
		return "", eris.Errorf("category: unknown category %q", s)
	}
	return c, nil
}

// DensityTier is the coarse population-density expectation for a category.
type DensityTier string

// Density tiers.
const (
	DensityLow    DensityTier = "low"
	DensityMedium DensityTier = "medium"
	DensityHigh   DensityTier = "high"
)

// Weights is the component weight vector for the composite score.
// The four weights sum to 100 for every profile.
type Weights struct {
	FootTraffic  int `yaml:"foot_traffic"`
	Demographics int `yaml:"demographics"`
	Competition  int `yaml:"competition"`
	BuildingType int `yaml:"building_type"`
}

// Sum returns the total of the four weights.
func (w Weights) Sum() int {
	return w.FootTraffic + w.Demographics + w.Competition + w.BuildingType
}

// IdealDemographics describes the demographic target for a category.
type IdealDemographics struct {
	MinIncome    int         `yaml:"min_income"`
	TargetAgeMin int         `yaml:"target_age_min"`
	TargetAgeMax int         `yaml:"target_age_max"`
	Density      DensityTier `yaml:"density"`
}

// Range is a [Low, High] benchmark pair used for linear normalization.
type Range struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Interpolate maps v linearly from the range onto [0,100], clamped.
func (r Range) Interpolate(v float64) int {
	if r.High <= r.Low {
		return 50
	}
	pct := (v - r.Low) / (r.High - r.Low) * 100
	return int(math.Round(math.Max(0, math.Min(100, pct))))
}

// At returns the value at fraction t within the range.
func (r Range) At(t float64) float64 {
	return r.Low + (r.High-r.Low)*t
}

// Profile is the immutable per-category configuration.
type Profile struct {
	ID          Category `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`

	Weights Weights           `yaml:"weights"`
	Ideal   IdealDemographics `yaml:"ideal_demographics"`

	// Benchmark ranges used by the signal normalizers.
	GoogleReviews Range `yaml:"google_reviews"`
	YelpReviews   Range `yaml:"yelp_reviews"`
	BuildingSqft  Range `yaml:"building_sqft"`
	DailyVisits   Range `yaml:"daily_visits"`

	// Place-classification tags for building-type fit.
	ExpectedPlaceTypes []string `yaml:"expected_place_types"`
	RelatedPlaceTypes  []string `yaml:"related_place_types"`

	// Display metadata.
	PeakHoursLabel string   `yaml:"peak_hours_label"`
	ProductFit     []string `yaml:"product_fit"`
}

// HasExpectedType reports whether any tag matches the expected list.
func (p *Profile) HasExpectedType(tags []string) bool {
	return containsAny(tags, p.ExpectedPlaceTypes)
}

// HasRelatedType reports whether any tag matches the related list.
func (p *Profile) HasRelatedType(tags []string) bool {
	return containsAny(tags, p.RelatedPlaceTypes)
}

func containsAny(tags, wanted []string) bool {
	for _, t := range tags {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}

var profiles = map[Category]*Profile{
	Office: {
		ID:          Office,
		Name:        "Office Buildings",
		Description: "Traditional vending for weekday workforce",
		Weights:     Weights{FootTraffic: 25, Demographics: 25, Competition: 20, BuildingType: 30},
		Ideal:       IdealDemographics{MinIncome: 45000, TargetAgeMin: 25, TargetAgeMax: 55, Density: DensityMedium},
		GoogleReviews: Range{Low: 50, High: 500},
		YelpReviews:   Range{Low: 15, High: 150},
		BuildingSqft:  Range{Low: 5000, High: 100000},
		DailyVisits:   Range{Low: 200, High: 1000},
		ExpectedPlaceTypes: []string{"office", "corporate_office", "accounting", "insurance_agency", "consulting_firm"},
		RelatedPlaceTypes:  []string{"real_estate_agency", "lawyer", "finance", "bank", "local_government_office", "coworking_space"},
		PeakHoursLabel:     "9am-12pm, 2-4pm",
		ProductFit:         []string{"Coffee", "Snacks", "Cold drinks", "Lunch items"},
	},
	Gym: {
		ID:          Gym,
		Name:        "Gyms & Fitness",
		Description: "Healthy vending for fitness enthusiasts",
		Weights:     Weights{FootTraffic: 30, Demographics: 35, Competition: 20, BuildingType: 15},
		Ideal:       IdealDemographics{MinIncome: 55000, TargetAgeMin: 18, TargetAgeMax: 45, Density: DensityHigh},
		GoogleReviews: Range{Low: 100, High: 2000},
		YelpReviews:   Range{Low: 30, High: 600},
		BuildingSqft:  Range{Low: 5000, High: 30000},
		DailyVisits:   Range{Low: 300, High: 1500},
		ExpectedPlaceTypes: []string{"gym", "fitness_center", "health_club"},
		RelatedPlaceTypes:  []string{"sports_complex", "yoga_studio", "swimming_pool", "martial_arts_school", "dance_school"},
		PeakHoursLabel:     "6-9am, 5-8pm",
		ProductFit:         []string{"Protein bars", "Healthy snacks", "Recovery drinks", "Water"},
	},
	Hospital: {
		ID:          Hospital,
		Name:        "Hospitals & Medical",
		Description: "24/7 access with visitors and staff",
		Weights:     Weights{FootTraffic: 35, Demographics: 20, Competition: 15, BuildingType: 30},
		Ideal:       IdealDemographics{MinIncome: 40000, TargetAgeMin: 25, TargetAgeMax: 65, Density: DensityHigh},
		GoogleReviews: Range{Low: 200, High: 5000},
		YelpReviews:   Range{Low: 60, High: 1500},
		BuildingSqft:  Range{Low: 50000, High: 500000},
		DailyVisits:   Range{Low: 500, High: 3000},
		ExpectedPlaceTypes: []string{"hospital", "medical_center"},
		RelatedPlaceTypes:  []string{"doctor", "dentist", "physiotherapist", "pharmacy", "health", "medical_lab", "urgent_care_center"},
		PeakHoursLabel:     "All hours",
		ProductFit:         []string{"Grab-and-go meals", "Coffee", "Healthy options", "Snacks"},
	},
	School: {
		ID:          School,
		Name:        "Schools & Universities",
		Description: "High volume with student traffic",
		Weights:     Weights{FootTraffic: 30, Demographics: 25, Competition: 25, BuildingType: 20},
		Ideal:       IdealDemographics{MinIncome: 35000, TargetAgeMin: 15, TargetAgeMax: 25, Density: DensityHigh},
		GoogleReviews: Range{Low: 50, High: 800},
		YelpReviews:   Range{Low: 15, High: 250},
		BuildingSqft:  Range{Low: 30000, High: 300000},
		DailyVisits:   Range{Low: 500, High: 5000},
		ExpectedPlaceTypes: []string{"university", "school", "secondary_school", "primary_school"},
		RelatedPlaceTypes:  []string{"library", "community_college", "preschool", "training_center"},
		PeakHoursLabel:     "8am-3pm",
		ProductFit:         []string{"Healthy snacks", "Drinks", "Bulk items", "Quick meals"},
	},
	Manufacturing: {
		ID:          Manufacturing,
		Name:        "Manufacturing & Warehouses",
		Description: "Shift workers need convenient options",
		Weights:     Weights{FootTraffic: 30, Demographics: 20, Competition: 25, BuildingType: 25},
		Ideal:       IdealDemographics{MinIncome: 38000, TargetAgeMin: 22, TargetAgeMax: 55, Density: DensityLow},
		GoogleReviews: Range{Low: 20, High: 300},
		YelpReviews:   Range{Low: 5, High: 100},
		BuildingSqft:  Range{Low: 20000, High: 500000},
		DailyVisits:   Range{Low: 100, High: 800},
		ExpectedPlaceTypes: []string{"storage", "warehouse", "industrial_area"},
		RelatedPlaceTypes:  []string{"moving_company", "car_repair", "auto_parts_store", "distribution_center"},
		PeakHoursLabel:     "Shift changes (6am, 2pm, 10pm)",
		ProductFit:         []string{"Energy drinks", "Meal replacement", "Bulk snacks", "Coffee"},
	},
	Apartment: {
		ID:          Apartment,
		Name:        "Apartment Complexes",
		Description: "Micro-markets for residents",
		Weights:     Weights{FootTraffic: 25, Demographics: 30, Competition: 20, BuildingType: 25},
		Ideal:       IdealDemographics{MinIncome: 50000, TargetAgeMin: 25, TargetAgeMax: 45, Density: DensityHigh},
		GoogleReviews: Range{Low: 100, High: 1000},
		YelpReviews:   Range{Low: 30, High: 300},
		BuildingSqft:  Range{Low: 10000, High: 200000},
		DailyVisits:   Range{Low: 100, High: 500},
		ExpectedPlaceTypes: []string{"apartment_complex", "apartment_building"},
		RelatedPlaceTypes:  []string{"condominium_complex", "housing_complex", "real_estate_agency"},
		PeakHoursLabel:     "Evening/night (5-10pm)",
		ProductFit:         []string{"Convenience items", "Snacks", "Drinks", "Household essentials"},
	},
	Hotel: {
		ID:          Hotel,
		Name:        "Hotels",
		Description: "Travelers need grab-and-go options",
		Weights:     Weights{FootTraffic: 35, Demographics: 25, Competition: 20, BuildingType: 20},
		Ideal:       IdealDemographics{MinIncome: 55000, TargetAgeMin: 25, TargetAgeMax: 60, Density: DensityMedium},
		GoogleReviews: Range{Low: 200, High: 3000},
		YelpReviews:   Range{Low: 60, High: 900},
		BuildingSqft:  Range{Low: 10000, High: 100000},
		DailyVisits:   Range{Low: 200, High: 1000},
		ExpectedPlaceTypes: []string{"lodging", "hotel", "motel", "resort_hotel", "extended_stay_hotel"},
		RelatedPlaceTypes:  []string{"bed_and_breakfast", "guest_house", "inn", "hostel"},
		PeakHoursLabel:     "Check-in/out times",
		ProductFit:         []string{"Premium snacks", "Branded items", "Travel essentials", "Drinks"},
	},
	Transit: {
		ID:          Transit,
		Name:        "Transit Hubs",
		Description: "High turnover locations",
		Weights:     Weights{FootTraffic: 40, Demographics: 20, Competition: 20, BuildingType: 20},
		Ideal:       IdealDemographics{MinIncome: 40000, TargetAgeMin: 18, TargetAgeMax: 55, Density: DensityHigh},
		GoogleReviews: Range{Low: 100, High: 2000},
		YelpReviews:   Range{Low: 30, High: 600},
		BuildingSqft:  Range{Low: 5000, High: 50000},
		DailyVisits:   Range{Low: 1000, High: 10000},
		ExpectedPlaceTypes: []string{"transit_station", "bus_station", "train_station", "subway_station", "light_rail_station"},
		RelatedPlaceTypes:  []string{"airport", "ferry_terminal", "bus_stop", "taxi_stand", "parking"},
		PeakHoursLabel:     "Rush hours (7-9am, 4-7pm)",
		ProductFit:         []string{"Grab-and-go", "Quick snacks", "Drinks", "Travel items"},
	},
}

// Get returns the profile for a category. Unknown categories fall back
// to the office profile, mirroring the permissive lookup in scoring.
func Get(c Category) *Profile {
	if p, ok := profiles[c]; ok {
		return p
	}
	return profiles[Office]
}

// Validate checks that every profile is internally consistent.
func Validate() error {
	var errs []string
	for _, c := range All() {
		p := profiles[c]
		if p.Weights.Sum() != 100 {
			errs = append(errs, fmt.Sprintf("%s: weights sum to %d, want 100", c, p.Weights.Sum()))
		}
		if p.Ideal.MinIncome <= 0 {
			errs = append(errs, fmt.Sprintf("%s: min_income must be > 0", c))
		}
		if p.Ideal.TargetAgeMax < p.Ideal.TargetAgeMin {
			errs = append(errs, fmt.Sprintf("%s: target age range inverted", c))
		}
		for name, r := range map[string]Range{
			"google_reviews": p.GoogleReviews,
			"yelp_reviews":   p.YelpReviews,
			"building_sqft":  p.BuildingSqft,
			"daily_visits":   p.DailyVisits,
		} {
			if r.High <= r.Low {
				errs = append(errs, fmt.Sprintf("%s: %s range inverted", c, name))
			}
		}
		if len(p.ExpectedPlaceTypes) == 0 {
			errs = append(errs, fmt.Sprintf("%s: no expected place types", c))
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("category: profile validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
