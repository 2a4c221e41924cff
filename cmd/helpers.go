package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendscout/internal/config"
	"github.com/sells-group/vendscout/internal/scout"
	"github.com/sells-group/vendscout/internal/sigcache"
	"github.com/sells-group/vendscout/internal/traffic"
	"github.com/sells-group/vendscout/pkg/census"
	"github.com/sells-group/vendscout/pkg/overpass"
	"github.com/sells-group/vendscout/pkg/populartimes"
	"github.com/sells-group/vendscout/pkg/yelp"
)

// initCache opens the configured signal cache backend.
func initCache(ctx context.Context, c config.CacheConfig) (sigcache.Cache, error) {
	switch c.Driver {
	case "memory":
		return sigcache.NewMemory(c.MaxEntries), nil
	case "sqlite", "":
		cache, err := sigcache.NewSQLite(ctx, c.Path)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite cache")
		}
		return cache, nil
	case "postgres":
		cache, err := sigcache.NewPostgres(ctx, c.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres cache")
		}
		return cache, nil
	default:
		return nil, eris.Errorf("unknown cache driver %q", c.Driver)
	}
}

// initScout assembles the provider clients and the scout service.
func initScout(ctx context.Context) (*scout.Service, sigcache.Cache, error) {
	cache, err := initCache(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}

	osm := overpass.New(cfg.Overpass, cache)
	busy := populartimes.New(cfg.PopularTimes, cache)
	censusClient := census.New(cfg.Census, cache)

	var engagement traffic.EngagementProvider
	if cfg.Yelp.Key != "" {
		engagement = yelp.New(cfg.Yelp, cache)
	} else {
		zap.L().Debug("yelp key not configured, skipping engagement signal")
	}

	agg := traffic.NewAggregator(busy, osm, engagement,
		time.Duration(cfg.Scoring.FetchTimeoutSecs)*time.Second)

	return scout.New(censusClient, osm, agg), cache, nil
}
