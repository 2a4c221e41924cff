package scout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/competition"
	"github.com/sells-group/vendscout/internal/scoring"
	"github.com/sells-group/vendscout/internal/traffic"
)

type stubDemographics struct {
	demo scoring.Demographics
	ok   bool
}

func (s stubDemographics) DemographicsForLocation(context.Context, float64, float64) (scoring.Demographics, bool) {
	return s.demo, s.ok
}

type stubMachines struct {
	machines []competition.Machine
	err      error
}

func (s stubMachines) NearbyVending(context.Context, float64, float64) ([]competition.Machine, error) {
	return s.machines, s.err
}

type stubBusyness struct{ curve []int }

func (s stubBusyness) Busyness(context.Context, string, float64, float64) ([]int, error) {
	return s.curve, nil
}

func urbanDemographics() stubDemographics {
	return stubDemographics{
		demo: scoring.Demographics{
			PopulationDensity: 9000,
			MedianIncome:      60000,
			MedianAge:         30,
			EmploymentRate:    0.75,
			Population:        4200,
		},
		ok: true,
	}
}

func TestScout(t *testing.T) {
	machines := []competition.Machine{
		{Name: "Pepsi Vending", Category: competition.Beverage, Brand: "Pepsi", DistanceMiles: 0.6},
	}
	svc := New(urbanDemographics(), stubMachines{machines: machines}, nil)

	report, err := svc.Scout(context.Background(), Request{
		Category:         category.Gym,
		PlaceName:        "Gold's Gym",
		Lat:              40.7128,
		Lng:              -74.0060,
		PlaceTypes:       []string{"gym", "point_of_interest"},
		UserRatingsTotal: 1200,
		BusinessStatus:   scoring.StatusOperational,
		HasOpeningHours:  true,
		HasPlaceDetails:  true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, category.Gym, report.Category)
	assert.True(t, report.Score.Overall >= 1 && report.Score.Overall <= 99)
	assert.Equal(t, 90, report.Score.BuildingType, "exact type match")
	assert.True(t, report.HasCensusData)
	assert.NotEmpty(t, report.Reasoning)
	assert.NotEmpty(t, report.Label)

	// A beverage machine barely overlaps gym demand, so the site still
	// reads as underserved with the cross-category discount applied.
	assert.Equal(t, 1, report.Competition.TotalMachines)
	assert.Equal(t, 0, report.Competition.SameCategory)
	assert.Equal(t, 1, report.Competition.DifferentCategory)
	assert.InDelta(t, 0.6, report.Competition.NearestMiles, 0.001)
	assert.Equal(t, competition.MarketUnderserved, report.Competition.Market)
	assert.Equal(t, 85, report.Competition.Score)

	assert.Positive(t, report.Revenue.WeeklyLow)
	assert.Positive(t, report.GoldenHours.Weighted)
	assert.WithinDuration(t, time.Now().UTC(), report.GeneratedAt, time.Minute)
}

func TestScoutDeterministicScore(t *testing.T) {
	svc := New(urbanDemographics(), stubMachines{}, nil)
	req := Request{
		Category:         category.Office,
		PlaceName:        "Acme Tower",
		Lat:              40.7,
		Lng:              -74.0,
		UserRatingsTotal: 340,
		HasOpeningHours:  true,
	}

	first, err := svc.Scout(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Scout(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.GoldenHours, second.GoldenHours)
	assert.Equal(t, first.Revenue, second.Revenue)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestScoutInvalidCategory(t *testing.T) {
	svc := New(nil, nil, nil)
	_, err := svc.Scout(context.Background(), Request{Category: "parking-lot"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestScoutNilProviders(t *testing.T) {
	svc := New(nil, nil, nil)
	report, err := svc.Scout(context.Background(), Request{
		Category:  category.Apartment,
		PlaceName: "Elm Street Lofts",
		Lat:       41.88,
		Lng:       -87.63,
	})
	require.NoError(t, err)

	assert.False(t, report.HasCensusData)
	assert.Equal(t, competition.MarketUnderserved, report.Competition.Market)
	assert.Equal(t, "LOW", report.FootTraffic.Confidence.Level)
	assert.True(t, report.Score.Overall >= 1)
}

func TestScoutMachineLookupFailureDegrades(t *testing.T) {
	svc := New(urbanDemographics(), stubMachines{err: assert.AnError}, nil)
	report, err := svc.Scout(context.Background(), Request{
		Category:  category.Transit,
		PlaceName: "Union Station",
		Lat:       38.897,
		Lng:       -77.006,
	})
	require.NoError(t, err)
	assert.Empty(t, report.Machines)
	assert.Equal(t, competition.MarketUnderserved, report.Competition.Market)
}

func TestScoutUsesBusynessCurveForGoldenHours(t *testing.T) {
	flat := make([]int, 24)
	for i := range flat {
		flat[i] = 60
	}
	agg := traffic.NewAggregator(stubBusyness{curve: flat}, nil, nil, time.Second)
	svc := New(urbanDemographics(), stubMachines{}, agg)

	report, err := svc.Scout(context.Background(), Request{
		Category:  category.Hospital,
		PlaceName: "St. Mary's",
		Lat:       40.7,
		Lng:       -74.0,
	})
	require.NoError(t, err)

	// A flat observed 60 curve with the hospital weekend factor of 0.9
	// gives a 7-day average of (60*5 + 54*2) / 7.
	assert.Equal(t, 58, report.GoldenHours.RawAverage)
}

func TestCompetitionInput(t *testing.T) {
	machines := []competition.Machine{
		{DistanceMiles: 0.8},
		{DistanceMiles: 0.3},
	}
	c := competitionInput(machines, traffic.FootTraffic{})
	assert.Equal(t, 2, c.Count)
	assert.InDelta(t, 0.3, c.NearestMiles, 0.001)

	empty := competitionInput(nil, traffic.FootTraffic{})
	assert.Zero(t, empty.Count)
	assert.InDelta(t, 1.5, empty.NearestMiles, 0.001)
}
