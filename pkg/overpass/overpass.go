// Package overpass queries the OpenStreetMap Overpass API for the map
// signals around a coordinate: nearby points of interest, the closest
// transit stop, and the footprint of the building at the point itself.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/vendscout/internal/competition"
	"github.com/sells-group/vendscout/internal/config"
	"github.com/sells-group/vendscout/internal/resilience"
	"github.com/sells-group/vendscout/internal/sigcache"
	"github.com/sells-group/vendscout/internal/traffic"
)

const (
	defaultBaseURL       = "https://overpass-api.de/api/interpreter"
	defaultPOIRadius     = 800
	defaultTransitRadius = 2000
	buildingRadius       = 100
	userAgent            = "VendScout/1.0"
	sqftPerSquareMeter   = 10.7639
)

// Client is a rate-limited Overpass API client. It satisfies
// traffic.PlaceSignalProvider.
type Client struct {
	baseURL       string
	poiRadius     int
	transitRadius int
	httpClient    *http.Client
	limiter       *rate.Limiter
	cache         sigcache.Cache
	retry         resilience.RetryConfig
}

// New builds an Overpass client from configuration. The cache may be
// nil to disable signal caching.
func New(cfg config.OverpassConfig, cache sigcache.Cache) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	poiRadius := cfg.POIRadiusMeters
	if poiRadius <= 0 {
		poiRadius = defaultPOIRadius
	}
	transitRadius := cfg.TransitRadiusMeters
	if transitRadius <= 0 {
		transitRadius = defaultTransitRadius
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL:       baseURL,
		poiRadius:     poiRadius,
		transitRadius: transitRadius,
		httpClient:    &http.Client{Timeout: timeout},
		limiter:       rate.NewLimiter(rate.Limit(rps), 1),
		cache:         cache,
		retry:         resilience.DefaultRetryConfig(),
	}
}

// element is one Overpass result element. Ways and relations carry a
// computed center; building ways carry the full outline geometry.
type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Center   *latLng           `json:"center,omitempty"`
	Geometry []latLng          `json:"geometry,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type response struct {
	Elements []element `json:"elements"`
}

// PlaceSignals returns the map signals around a coordinate. Each signal
// is nil when its query returned nothing usable.
func (c *Client) PlaceSignals(ctx context.Context, lat, lng float64) (*traffic.PlaceSignals, error) {
	key := sigcache.Key(sigcache.KindOSM, lat, lng)
	if cached, ok := c.cacheGet(ctx, key); ok {
		return cached, nil
	}

	signals := &traffic.PlaceSignals{}

	pois, err := c.query(ctx, c.poiQuery(lat, lng))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: poi query")
	}
	count := len(pois.Elements)
	signals.POICount = &count

	transit, err := c.query(ctx, c.transitQuery(lat, lng))
	if err != nil {
		zap.L().Warn("overpass: transit query failed", zap.Error(err))
	} else if miles := nearestMiles(lat, lng, transit.Elements); miles != nil {
		signals.TransitMiles = miles
	}

	building, err := c.query(ctx, c.buildingQuery(lat, lng))
	if err != nil {
		zap.L().Warn("overpass: building query failed", zap.Error(err))
	} else if sqft := footprintSqft(building.Elements); sqft != nil {
		signals.BuildingSqft = sqft
	}

	c.cacheSet(ctx, key, signals)
	return signals, nil
}

// NearbyVending lists vending machines tagged around the point, each
// classified by product category from its name tags.
func (c *Client) NearbyVending(ctx context.Context, lat, lng float64) ([]competition.Machine, error) {
	resp, err := c.query(ctx, c.vendingQuery(lat, lng))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: vending query")
	}

	machines := make([]competition.Machine, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		elat, elng, ok := elementPoint(el)
		if !ok {
			continue
		}
		name := el.Tags["name"]
		if name == "" {
			// The vending tag carries the product, e.g. vending=drinks.
			name = strings.TrimSpace(el.Tags["vending"] + " vending machine")
		}
		cat, brand := competition.Classify(name)
		dLat := (elat - lat) * 69.0
		dLng := (elng - lng) * 54.6
		machines = append(machines, competition.Machine{
			Name:          name,
			Category:      cat,
			Brand:         brand,
			DistanceMiles: math.Round(math.Sqrt(dLat*dLat+dLng*dLng)*100) / 100,
		})
	}
	return machines, nil
}

func (c *Client) poiQuery(lat, lng float64) string {
	return fmt.Sprintf(`[out:json][timeout:8];(node(around:%d,%f,%f)[amenity];way(around:%d,%f,%f)[amenity];relation(around:%d,%f,%f)[amenity];);out center;`,
		c.poiRadius, lat, lng, c.poiRadius, lat, lng, c.poiRadius, lat, lng)
}

func (c *Client) transitQuery(lat, lng float64) string {
	return fmt.Sprintf(`[out:json][timeout:8];(node(around:%d,%f,%f)[public_transport];node(around:%d,%f,%f)[highway=bus_stop];node(around:%d,%f,%f)[railway=station];);out center;`,
		c.transitRadius, lat, lng, c.transitRadius, lat, lng, c.transitRadius, lat, lng)
}

func (c *Client) vendingQuery(lat, lng float64) string {
	return fmt.Sprintf(`[out:json][timeout:8];node(around:%d,%f,%f)[amenity=vending_machine];out;`,
		c.poiRadius, lat, lng)
}

func (c *Client) buildingQuery(lat, lng float64) string {
	return fmt.Sprintf(`[out:json][timeout:8];way(around:%d,%f,%f)[building];out geom 1;`,
		buildingRadius, lat, lng)
}

// query POSTs one Overpass QL query, honoring the rate limit and
// retrying transient failures.
func (c *Client) query(ctx context.Context, ql string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "overpass: rate limit")
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*response, error) {
		body := "data=" + url.QueryEscape(ql)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
		if err != nil {
			return nil, eris.Wrap(err, "overpass: build request")
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrap(err, "overpass: request"), 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("overpass: returned status %d", resp.StatusCode)
			return nil, resilience.TransientFromResponse(err, resp)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrap(err, "overpass: read body"), 0)
		}

		var parsed response
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, eris.Wrap(err, "overpass: parse response")
		}
		return &parsed, nil
	})
}

// nearestMiles finds the closest element to the origin using a
// flat-earth approximation, good enough at a 2 km radius.
func nearestMiles(lat, lng float64, elements []element) *float64 {
	var nearest *float64
	for _, el := range elements {
		elat, elng, ok := elementPoint(el)
		if !ok {
			continue
		}
		dLat := (elat - lat) * 69.0
		dLng := (elng - lng) * 54.6
		miles := math.Sqrt(dLat*dLat + dLng*dLng)
		if nearest == nil || miles < *nearest {
			m := miles
			nearest = &m
		}
	}
	return nearest
}

func elementPoint(el element) (float64, float64, bool) {
	if el.Type == "node" {
		return el.Lat, el.Lon, true
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

// footprintSqft computes the area of the first building outline.
// Vertices project onto a local tangent plane in meters before the
// planar area calculation.
func footprintSqft(elements []element) *float64 {
	for _, el := range elements {
		if len(el.Geometry) < 3 {
			continue
		}
		lat0 := el.Geometry[0].Lat
		lon0 := el.Geometry[0].Lon
		cosLat := math.Cos(lat0 * math.Pi / 180)

		coords := make([]float64, 0, 2*(len(el.Geometry)+1))
		for _, pt := range el.Geometry {
			x := (pt.Lon - lon0) * 111320 * cosLat
			y := (pt.Lat - lat0) * 110540
			coords = append(coords, x, y)
		}
		// Close the ring if the way geometry left it open.
		if coords[0] != coords[len(coords)-2] || coords[1] != coords[len(coords)-1] {
			coords = append(coords, coords[0], coords[1])
		}

		poly := geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
		sqft := math.Abs(poly.Area()) * sqftPerSquareMeter
		if sqft <= 0 {
			continue
		}
		return &sqft
	}
	return nil
}

func (c *Client) cacheGet(ctx context.Context, key string) (*traffic.PlaceSignals, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		zap.L().Debug("overpass: cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var signals traffic.PlaceSignals
	if err := json.Unmarshal(data, &signals); err != nil {
		zap.L().Debug("overpass: cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &signals, true
}

func (c *Client) cacheSet(ctx context.Context, key string, signals *traffic.PlaceSignals) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(signals)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, sigcache.TTLFor(sigcache.KindOSM)); err != nil {
		zap.L().Debug("overpass: cache write failed", zap.Error(err))
	}
}
