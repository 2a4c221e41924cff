// Package scout runs the full viability assessment for one candidate
// site: demographics, foot-traffic signals, nearby machines, the
// composite score, golden hours, and the revenue estimate.
package scout

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/competition"
	"github.com/sells-group/vendscout/internal/estimate"
	"github.com/sells-group/vendscout/internal/goldenhours"
	"github.com/sells-group/vendscout/internal/scoring"
	"github.com/sells-group/vendscout/internal/signal"
	"github.com/sells-group/vendscout/internal/traffic"
)

// DemographicsProvider resolves tract demographics at a point. The
// bool reports whether real census data backs the values.
type DemographicsProvider interface {
	DemographicsForLocation(ctx context.Context, lat, lng float64) (scoring.Demographics, bool)
}

// MachineProvider lists competing vending machines near a point.
type MachineProvider interface {
	NearbyVending(ctx context.Context, lat, lng float64) ([]competition.Machine, error)
}

// Service wires the signal providers to the scoring engine.
type Service struct {
	demographics DemographicsProvider
	machines     MachineProvider
	aggregator   *traffic.Aggregator
}

// New builds a scout service. Providers may be nil; missing providers
// degrade the assessment the same way failed fetches do.
func New(demographics DemographicsProvider, machines MachineProvider, aggregator *traffic.Aggregator) *Service {
	return &Service{demographics: demographics, machines: machines, aggregator: aggregator}
}

// Request identifies the candidate site and what the caller already
// knows about it.
type Request struct {
	Category  category.Category `json:"category"`
	PlaceName string            `json:"place_name"`
	Lat       float64           `json:"lat"`
	Lng       float64           `json:"lng"`

	// Optional enrichment from an upstream place lookup.
	PlaceTypes       []string               `json:"place_types,omitempty"`
	UserRatingsTotal int                    `json:"user_ratings_total,omitempty"`
	BusinessStatus   scoring.BusinessStatus `json:"business_status,omitempty"`
	HasOpeningHours  bool                   `json:"has_opening_hours,omitempty"`
	IsAreaLevel      bool                   `json:"is_area_level,omitempty"`
	HasPlaceDetails  bool                   `json:"has_place_details,omitempty"`
}

// Report is the complete assessment for one site and category.
type Report struct {
	ID        string            `json:"id"`
	Category  category.Category `json:"category"`
	PlaceName string            `json:"place_name"`
	Lat       float64           `json:"lat"`
	Lng       float64           `json:"lng"`

	Score       scoring.Score            `json:"score"`
	Label       string                   `json:"label"`
	Reasoning   []string                 `json:"reasoning"`
	FootTraffic traffic.FootTraffic      `json:"foot_traffic"`
	GoldenHours goldenhours.Score        `json:"golden_hours"`
	Competition competition.Assessment   `json:"competition"`
	Machines    []competition.Machine    `json:"machines"`
	Revenue     estimate.RevenueEstimate `json:"revenue"`

	Demographics  scoring.Demographics `json:"demographics"`
	HasCensusData bool                 `json:"has_census_data"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// Scout assesses one site. Provider failures degrade the report
// instead of failing it; only an invalid category errors.
func (s *Service) Scout(ctx context.Context, req Request) (*Report, error) {
	if _, err := category.Parse(string(req.Category)); err != nil {
		return nil, eris.Wrap(err, "scout: category")
	}

	log := zap.L().With(
		zap.String("place", req.PlaceName),
		zap.String("category", string(req.Category)),
	)

	demo := scoring.Demographics{}
	hasCensus := false
	if s.demographics != nil {
		demo, hasCensus = s.demographics.DemographicsForLocation(ctx, req.Lat, req.Lng)
	}

	var machines []competition.Machine
	if s.machines != nil {
		found, err := s.machines.NearbyVending(ctx, req.Lat, req.Lng)
		if err != nil {
			log.Warn("scout: vending lookup failed", zap.Error(err))
		} else {
			machines = found
		}
	}

	var ft traffic.FootTraffic
	if s.aggregator != nil {
		var density *float64
		if demo.PopulationDensity > 0 {
			density = &demo.PopulationDensity
		}
		var ratings *int
		if req.UserRatingsTotal > 0 {
			ratings = &req.UserRatingsTotal
		}
		ft = s.aggregator.Build(ctx, traffic.Request{
			Category:      req.Category,
			PlaceName:     req.PlaceName,
			Lat:           req.Lat,
			Lng:           req.Lng,
			GoogleRatings: ratings,
			CensusDensity: density,
		})
	} else {
		raw := signal.Raw{}
		if req.UserRatingsTotal > 0 {
			raw.GoogleRatings = &req.UserRatingsTotal
		}
		if demo.PopulationDensity > 0 {
			raw.CensusDensity = &demo.PopulationDensity
		}
		ft = traffic.Aggregate(raw, req.Category)
	}

	comp := competition.Assess(req.Category, machines)

	score := scoring.Compute(scoring.Input{
		Category:         req.Category,
		Demographics:     demo,
		Competition:      competitionInput(machines, ft),
		PlaceTypes:       req.PlaceTypes,
		UserRatingsTotal: req.UserRatingsTotal,
		BusinessStatus:   req.BusinessStatus,
		HasOpeningHours:  req.HasOpeningHours,
		IsAreaLevel:      req.IsAreaLevel,
		HasPlaceDetails:  req.HasPlaceDetails,
		HasCensusData:    hasCensus,
	})

	curve := goldenhours.SyntheticCurve(req.Category, goldenhours.DefaultSeed)
	if busy := ft.Breakdown.Raw.Busyness; len(busy) == 24 {
		factor := goldenhours.ConfigFor(req.Category).WeekendFactor
		for h, v := range busy {
			curve.Weekday[h] = v
			curve.Weekend[h] = min(100, max(0, int(math.Round(float64(v)*factor))))
		}
	}
	gh := goldenhours.Compute(curve, req.Category)

	report := &Report{
		ID:            uuid.NewString(),
		Category:      req.Category,
		PlaceName:     req.PlaceName,
		Lat:           req.Lat,
		Lng:           req.Lng,
		Score:         score,
		Label:         scoring.Label(score.Overall),
		Reasoning:     scoring.Reasoning(score, req.Category),
		FootTraffic:   ft,
		GoldenHours:   gh,
		Competition:   comp,
		Machines:      machines,
		Revenue:       estimate.Revenue(score.Overall, req.Category),
		Demographics:  demo,
		HasCensusData: hasCensus,
		GeneratedAt:   time.Now().UTC(),
	}

	log.Info("scout: assessment complete",
		zap.Int("overall", score.Overall),
		zap.String("confidence", ft.Confidence.Level),
		zap.Int("machines", len(machines)),
	)
	return report, nil
}

// competitionInput folds the observed machines into the scorer's
// competition shape. Nearest distance defaults generously when no
// machines are visible.
func competitionInput(machines []competition.Machine, ft traffic.FootTraffic) scoring.Competition {
	c := scoring.Competition{Count: len(machines), NearestMiles: 1.5}
	for i, m := range machines {
		if i == 0 || m.DistanceMiles < c.NearestMiles {
			c.NearestMiles = m.DistanceMiles
		}
	}
	if ft.Breakdown.Raw.POICount != nil {
		c.PlaceCountInRadius = *ft.Breakdown.Raw.POICount
	}
	return c
}

