package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/vendscout/internal/category"
)

func intp(v int) *int          { return &v }
func floatp(v float64) *float64 { return &v }

func TestGoogleRatings_Defaults(t *testing.T) {
	assert.Equal(t, 50, GoogleRatings(nil, category.Gym))
	assert.Equal(t, 50, GoogleRatings(intp(0), category.Gym))
	assert.Equal(t, 50, GoogleRatings(intp(-5), category.Gym))
}

func TestGoogleRatings_Benchmark(t *testing.T) {
	// Gym benchmark is 100-2000.
	assert.Equal(t, 0, GoogleRatings(intp(100), category.Gym))
	assert.Equal(t, 100, GoogleRatings(intp(2000), category.Gym))
	assert.Equal(t, 100, GoogleRatings(intp(5000), category.Gym))

	// 1200 reviews sits at (1200-100)/1900 = ~58%.
	assert.Equal(t, 58, GoogleRatings(intp(1200), category.Gym))
}

func TestGoogleRatings_Monotonic(t *testing.T) {
	prev := -1
	for v := 1; v <= 3000; v += 50 {
		got := GoogleRatings(intp(v), category.Office)
		assert.GreaterOrEqual(t, got, prev, "v=%d", v)
		prev = got
	}
}

func TestYelpReviews(t *testing.T) {
	assert.Equal(t, 50, YelpReviews(nil, category.Hotel))
	// Hotel benchmark 60-900.
	assert.Equal(t, 0, YelpReviews(intp(60), category.Hotel))
	assert.Equal(t, 100, YelpReviews(intp(900), category.Hotel))
}

func TestBusyness(t *testing.T) {
	assert.Equal(t, 50, Busyness(nil))
	assert.Equal(t, 50, Busyness([]int{}))

	// Flat curve: peak == average == 40.
	flat := make([]int, 24)
	for i := range flat {
		flat[i] = 40
	}
	assert.Equal(t, 40, Busyness(flat))

	// Out-of-range values clamp before aggregation.
	assert.Equal(t, 100, Busyness([]int{500, 500, 500}))
	assert.Equal(t, 0, Busyness([]int{-10, -20}))
}

func TestBusyness_PeakWeighted(t *testing.T) {
	// One spike of 100 over 23 zeros: 0.6*100 + 0.4*(100/24) ~= 62.
	curve := make([]int, 24)
	curve[12] = 100
	assert.Equal(t, 62, Busyness(curve))
}

func TestPOIDensity(t *testing.T) {
	assert.Equal(t, 25, POIDensity(nil))
	assert.Equal(t, 25, POIDensity(intp(0)))
	assert.Equal(t, 50, POIDensity(intp(25)))
	assert.Equal(t, 100, POIDensity(intp(50)))
	assert.Equal(t, 100, POIDensity(intp(500)))
}

func TestTransitProximity(t *testing.T) {
	assert.Equal(t, 25, TransitProximity(nil))
	assert.Equal(t, 100, TransitProximity(floatp(0.1)))
	assert.Equal(t, 100, TransitProximity(floatp(0.25)))
	assert.Equal(t, 75, TransitProximity(floatp(0.4)))
	assert.Equal(t, 50, TransitProximity(floatp(0.9)))
	assert.Equal(t, 25, TransitProximity(floatp(2.5)))
}

func TestBuildingSize(t *testing.T) {
	assert.Equal(t, 50, BuildingSize(nil, category.Office))
	assert.Equal(t, 50, BuildingSize(floatp(0), category.Office))
	// Office benchmark 5000-100000.
	assert.Equal(t, 0, BuildingSize(floatp(5000), category.Office))
	assert.Equal(t, 100, BuildingSize(floatp(100000), category.Office))
}

func TestCensusDensity(t *testing.T) {
	assert.Equal(t, 25, CensusDensity(nil))
	assert.Equal(t, 25, CensusDensity(floatp(0)))
	assert.Equal(t, 25, CensusDensity(floatp(4999)))
	assert.Equal(t, 50, CensusDensity(floatp(5000)))
	assert.Equal(t, 75, CensusDensity(floatp(15000)))
	assert.Equal(t, 100, CensusDensity(floatp(20000)))
}

func TestNormalize_AllAbsent(t *testing.T) {
	n := Normalize(Raw{}, category.School)
	assert.Equal(t, Normalized{
		GoogleRatings: 50,
		Busyness:      50,
		YelpReviews:   50,
		POIDensity:    25,
		Transit:       25,
		BuildingSize:  50,
		CensusDensity: 25,
	}, n)
}
