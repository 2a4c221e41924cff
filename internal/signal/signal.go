// Package signal holds the raw and normalized signal sets and the
// per-signal normalizers that map noisy external metrics onto [0,100].
//
// Missing values are a first-class case, not an error. The defaults are
// deliberately asymmetric: absent review data normalizes to a neutral
// 50 (no reviews does not imply no traffic), while absent POI, transit,
// and density data normalizes to a penalized 25 (sparse data usually
// means a sparse area).
package signal

import (
	"math"

	"github.com/sells-group/vendscout/internal/category"
)

// Raw is the per-location bag of optional raw inputs. Nil means the
// signal was unavailable from its provider.
type Raw struct {
	GoogleRatings *int      `json:"google_ratings,omitempty"`
	Busyness      []int     `json:"busyness,omitempty"` // 24 hourly values 0-100
	YelpReviews   *int      `json:"yelp_reviews,omitempty"`
	POICount      *int      `json:"poi_count,omitempty"`
	TransitMiles  *float64  `json:"transit_miles,omitempty"`
	BuildingSqft  *float64  `json:"building_sqft,omitempty"`
	CensusDensity *float64  `json:"census_density,omitempty"` // people per sq mi
}

// Normalized mirrors Raw with every signal mapped onto [0,100].
type Normalized struct {
	GoogleRatings int `json:"google_ratings"`
	Busyness      int `json:"busyness"`
	YelpReviews   int `json:"yelp_reviews"`
	POIDensity    int `json:"poi_density"`
	Transit       int `json:"transit"`
	BuildingSize  int `json:"building_size"`
	CensusDensity int `json:"census_density"`
}

// Normalize maps every present raw signal through its normalizer.
func Normalize(raw Raw, cat category.Category) Normalized {
	return Normalized{
		GoogleRatings: GoogleRatings(raw.GoogleRatings, cat),
		Busyness:      Busyness(raw.Busyness),
		YelpReviews:   YelpReviews(raw.YelpReviews, cat),
		POIDensity:    POIDensity(raw.POICount),
		Transit:       TransitProximity(raw.TransitMiles),
		BuildingSize:  BuildingSize(raw.BuildingSqft, cat),
		CensusDensity: CensusDensity(raw.CensusDensity),
	}
}

// GoogleRatings normalizes a Google ratings total against the
// category's review benchmark. Absent or non-positive counts are
// neutral, not penalized.
func GoogleRatings(total *int, cat category.Category) int {
	if total == nil || *total <= 0 {
		return 50
	}
	return category.Get(cat).GoogleReviews.Interpolate(float64(*total))
}

// YelpReviews normalizes a Yelp review count against the category's
// Yelp benchmark. Same neutral default as GoogleRatings.
func YelpReviews(count *int, cat category.Category) int {
	if count == nil || *count <= 0 {
		return 50
	}
	return category.Get(cat).YelpReviews.Interpolate(float64(*count))
}

// Busyness scores a 24-hour busyness curve as 0.6*peak + 0.4*average.
// Values outside [0,100] are clamped before aggregation.
func Busyness(curve []int) int {
	if len(curve) == 0 {
		return 50
	}
	peak := 0
	sum := 0
	for _, v := range curve {
		c := clamp(v)
		if c > peak {
			peak = c
		}
		sum += c
	}
	avg := float64(sum) / float64(len(curve))
	return clamp(int(math.Round(0.6*float64(peak) + 0.4*avg)))
}

// POIDensity normalizes a nearby point-of-interest count; 50 POIs or
// more saturates the signal.
func POIDensity(count *int) int {
	if count == nil || *count <= 0 {
		return 25
	}
	return clamp(int(math.Round(float64(*count) / 50 * 100)))
}

// TransitProximity is a step function over distance to the nearest
// transit stop in miles.
func TransitProximity(miles *float64) int {
	if miles == nil {
		return 25
	}
	switch {
	case *miles <= 0.25:
		return 100
	case *miles <= 0.5:
		return 75
	case *miles <= 1.0:
		return 50
	default:
		return 25
	}
}

// BuildingSize normalizes a building footprint in square feet against
// the category benchmark.
func BuildingSize(sqft *float64, cat category.Category) int {
	if sqft == nil || *sqft <= 0 {
		return 50
	}
	return category.Get(cat).BuildingSqft.Interpolate(*sqft)
}

// CensusDensity maps population per square mile onto density tiers.
func CensusDensity(popPerSqMi *float64) int {
	if popPerSqMi == nil || *popPerSqMi <= 0 {
		return 25
	}
	switch {
	case *popPerSqMi < 5000:
		return 25
	case *popPerSqMi < 10000:
		return 50
	case *popPerSqMi < 20000:
		return 75
	default:
		return 100
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
