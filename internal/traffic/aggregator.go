package traffic

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/signal"
)

// PlaceSignals is the bundle of map-derived signals around one point.
type PlaceSignals struct {
	POICount     *int
	TransitMiles *float64
	BuildingSqft *float64
}

// BusynessProvider returns the 24-hour busyness curve for a place, or
// nil when no popular-times data exists.
type BusynessProvider interface {
	Busyness(ctx context.Context, name string, lat, lng float64) ([]int, error)
}

// PlaceSignalProvider returns POI, transit and building signals around
// a coordinate.
type PlaceSignalProvider interface {
	PlaceSignals(ctx context.Context, lat, lng float64) (*PlaceSignals, error)
}

// EngagementProvider returns third-party review volume for a place.
type EngagementProvider interface {
	ReviewCount(ctx context.Context, name string, lat, lng float64) (*int, error)
}

// Aggregator fetches traffic signals concurrently and folds them into a
// score. Any nil provider or failed fetch just leaves its signal absent;
// the confidence grade reflects what was actually collected.
type Aggregator struct {
	busyness   BusynessProvider
	places     PlaceSignalProvider
	engagement EngagementProvider
	timeout    time.Duration
}

// NewAggregator builds an aggregator. Providers may be nil.
func NewAggregator(busyness BusynessProvider, places PlaceSignalProvider, engagement EngagementProvider, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Aggregator{busyness: busyness, places: places, engagement: engagement, timeout: timeout}
}

// Request identifies the place to collect signals for, plus signals the
// caller already holds.
type Request struct {
	Category      category.Category
	PlaceName     string
	Lat, Lng      float64
	GoogleRatings *int
	CensusDensity *float64
}

// Build collects signals from all configured providers in parallel and
// aggregates them. Provider errors are logged and degrade confidence
// instead of failing the build.
func (a *Aggregator) Build(ctx context.Context, req Request) FootTraffic {
	raw := signal.Raw{
		GoogleRatings: req.GoogleRatings,
		CensusDensity: req.CensusDensity,
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.busyness != nil {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()
			curve, err := a.busyness.Busyness(fctx, req.PlaceName, req.Lat, req.Lng)
			if err != nil {
				zap.L().Warn("traffic: busyness fetch failed", zap.String("place", req.PlaceName), zap.Error(err))
				return nil
			}
			raw.Busyness = curve
			return nil
		})
	}

	if a.places != nil {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()
			ps, err := a.places.PlaceSignals(fctx, req.Lat, req.Lng)
			if err != nil {
				zap.L().Warn("traffic: place signal fetch failed",
					zap.Float64("lat", req.Lat), zap.Float64("lng", req.Lng), zap.Error(err))
				return nil
			}
			if ps != nil {
				raw.POICount = ps.POICount
				raw.TransitMiles = ps.TransitMiles
				raw.BuildingSqft = ps.BuildingSqft
			}
			return nil
		})
	}

	if a.engagement != nil {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()
			count, err := a.engagement.ReviewCount(fctx, req.PlaceName, req.Lat, req.Lng)
			if err != nil {
				zap.L().Warn("traffic: engagement fetch failed", zap.String("place", req.PlaceName), zap.Error(err))
				return nil
			}
			raw.YelpReviews = count
			return nil
		})
	}

	// Fetch goroutines never return errors; Wait just joins them.
	_ = g.Wait()

	return Aggregate(raw, req.Category)
}
