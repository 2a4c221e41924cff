// Package census resolves a location to its census tract and fetches
// ACS 5-year demographics for it: median household income, population,
// median age, and employment rate. Tract land area from the geocoder
// turns population into people per square mile.
package census

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/vendscout/internal/config"
	"github.com/sells-group/vendscout/internal/resilience"
	"github.com/sells-group/vendscout/internal/scoring"
	"github.com/sells-group/vendscout/internal/sigcache"
)

const (
	defaultBaseURL  = "https://api.census.gov/data"
	geocoderBaseURL = "https://geocoding.geo.census.gov/geocoder/geographies"

	// ACS 5-year estimates, 2022 vintage.
	acsPath = "/2022/acs/acs5"

	// B19013_001E median household income, B01003_001E total
	// population, B01002_001E median age, B23025_004E employed
	// civilians, B23025_003E civilian labor force.
	acsVariables = "B19013_001E,B01003_001E,B01002_001E,B23025_004E,B23025_003E"

	benchmark = "Public_AR_Current"
	vintage   = "Current_Current"

	squareMetersPerSqMile = 2_589_988.11
)

// Fallback demographics for tracts the API cannot resolve.
var fallback = scoring.Demographics{
	MedianIncome:   55000,
	Population:     10000,
	MedianAge:      35,
	EmploymentRate: 0.85,
}

// Tract identifies one census tract plus the match coordinates and
// land area the geocoder returned.
type Tract struct {
	State  string
	County string
	Tract  string
	Lat    float64
	Lng    float64
	// LandSqMiles is zero when the geocoder omitted the tract area.
	LandSqMiles float64
}

// Client fetches tract demographics from the Census Bureau APIs.
type Client struct {
	baseURL     string
	geocoderURL string
	key         string
	httpClient  *http.Client
	limiter     *rate.Limiter
	cache       sigcache.Cache
	retry       resilience.RetryConfig
}

// New builds a census client. Without an API key, demographics lookups
// return the documented fallbacks. The cache may be nil.
func New(cfg config.CensusConfig, cache sigcache.Cache) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		geocoderURL: geocoderBaseURL,
		key:         cfg.Key,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(5, 2),
		cache:       cache,
		retry:       resilience.DefaultRetryConfig(),
	}
}

// geocoderResponse covers both the onelineaddress and coordinates
// endpoints; the coordinates form puts geographies at the result root.
type geocoderResponse struct {
	Result struct {
		AddressMatches []struct {
			Coordinates struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"coordinates"`
			Geographies geographies `json:"geographies"`
		} `json:"addressMatches"`
		Geographies geographies `json:"geographies"`
	} `json:"result"`
}

type geographies struct {
	CensusTracts []tractRecord `json:"Census Tracts"`
}

type tractRecord struct {
	State    string  `json:"STATE"`
	County   string  `json:"COUNTY"`
	Tract    string  `json:"TRACT"`
	AreaLand float64 `json:"AREALAND"`
}

// TractForAddress resolves a one-line street address to its census
// tract. A nil tract with nil error means the address did not match.
func (c *Client) TractForAddress(ctx context.Context, address string) (*Tract, error) {
	params := url.Values{
		"address":   {address},
		"benchmark": {benchmark},
		"vintage":   {vintage},
		"format":    {"json"},
	}
	reqURL := c.geocoderURL + "/onelineaddress?" + params.Encode()

	var parsed geocoderResponse
	if err := c.getJSON(ctx, reqURL, &parsed); err != nil {
		return nil, eris.Wrap(err, "census: geocode address")
	}
	if len(parsed.Result.AddressMatches) == 0 {
		return nil, nil
	}

	match := parsed.Result.AddressMatches[0]
	if len(match.Geographies.CensusTracts) == 0 {
		return nil, nil
	}
	rec := match.Geographies.CensusTracts[0]
	return &Tract{
		State:       rec.State,
		County:      rec.County,
		Tract:       rec.Tract,
		Lat:         match.Coordinates.Y,
		Lng:         match.Coordinates.X,
		LandSqMiles: rec.AreaLand / squareMetersPerSqMile,
	}, nil
}

// TractForCoordinates reverse-geocodes a point to its census tract.
func (c *Client) TractForCoordinates(ctx context.Context, lat, lng float64) (*Tract, error) {
	params := url.Values{
		"x":         {strconv.FormatFloat(lng, 'f', -1, 64)},
		"y":         {strconv.FormatFloat(lat, 'f', -1, 64)},
		"benchmark": {benchmark},
		"vintage":   {vintage},
		"format":    {"json"},
	}
	reqURL := c.geocoderURL + "/coordinates?" + params.Encode()

	var parsed geocoderResponse
	if err := c.getJSON(ctx, reqURL, &parsed); err != nil {
		return nil, eris.Wrap(err, "census: geocode coordinates")
	}
	if len(parsed.Result.Geographies.CensusTracts) == 0 {
		return nil, nil
	}
	rec := parsed.Result.Geographies.CensusTracts[0]
	return &Tract{
		State:       rec.State,
		County:      rec.County,
		Tract:       rec.Tract,
		Lat:         lat,
		Lng:         lng,
		LandSqMiles: rec.AreaLand / squareMetersPerSqMile,
	}, nil
}

// Demographics fetches ACS demographics for a resolved tract. Missing
// or sentinel values fall back per field; the Census API reports
// missing income as -666666666, which clamps to zero.
func (c *Client) Demographics(ctx context.Context, tract *Tract) (scoring.Demographics, error) {
	if c.key == "" {
		return fallback, eris.New("census: no API key configured")
	}

	params := url.Values{
		"get": {acsVariables},
		"key": {c.key},
	}
	reqURL := c.baseURL + acsPath + "?" + params.Encode() +
		"&for=tract:" + url.QueryEscape(tract.Tract) +
		"&in=state:" + url.QueryEscape(tract.State) + "+county:" + url.QueryEscape(tract.County)

	var rows [][]*string
	if err := c.getJSON(ctx, reqURL, &rows); err != nil {
		return fallback, eris.Wrap(err, "census: acs fetch")
	}
	if len(rows) < 2 || len(rows[1]) < 5 {
		return fallback, eris.New("census: acs response missing value row")
	}

	values := rows[1]
	income := parseIntOr(values[0], 55000)
	population := parseIntOr(values[1], 10000)
	age := parseFloatOr(values[2], 35)
	employed := parseIntOr(values[3], 0)
	laborForce := parseIntOr(values[4], 1)

	empRate := 0.85
	if laborForce > 0 {
		empRate = math.Round(math.Min(float64(employed)/float64(laborForce), 1)*100) / 100
	}

	demo := scoring.Demographics{
		MedianIncome:   float64(max(income, 0)),
		Population:     population,
		MedianAge:      age,
		EmploymentRate: empRate,
	}
	if tract.LandSqMiles > 0 {
		demo.PopulationDensity = math.Round(float64(population) / tract.LandSqMiles)
	}
	return demo, nil
}

// DemographicsForLocation resolves the tract at a point and fetches its
// demographics. The bool reports whether real census data backs the
// result; on any failure the fallback demographics return with false.
func (c *Client) DemographicsForLocation(ctx context.Context, lat, lng float64) (scoring.Demographics, bool) {
	key := sigcache.Key(sigcache.KindCensus, lat, lng)
	if demo, ok := c.cacheGet(ctx, key); ok {
		return demo, true
	}

	tract, err := c.TractForCoordinates(ctx, lat, lng)
	if err != nil {
		zap.L().Warn("census: tract lookup failed", zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		return fallback, false
	}
	if tract == nil {
		return fallback, false
	}

	demo, err := c.Demographics(ctx, tract)
	if err != nil {
		zap.L().Warn("census: demographics fetch failed",
			zap.String("state", tract.State), zap.String("county", tract.County),
			zap.String("tract", tract.Tract), zap.Error(err))
		return fallback, false
	}

	c.cacheSet(ctx, key, demo)
	return demo, true
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "census: rate limit")
	}

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "census: build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrap(err, "census: request"), 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("census: returned status %d", resp.StatusCode)
			return nil, resilience.TransientFromResponse(err, resp)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "census: parse response")
	}
	return nil
}

func parseIntOr(s *string, def int) int {
	if s == nil {
		return def
	}
	v, err := strconv.Atoi(*s)
	if err != nil || v == 0 {
		return def
	}
	return v
}

func parseFloatOr(s *string, def float64) float64 {
	if s == nil {
		return def
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil || v == 0 {
		return def
	}
	return v
}

func (c *Client) cacheGet(ctx context.Context, key string) (scoring.Demographics, bool) {
	if c.cache == nil {
		return scoring.Demographics{}, false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return scoring.Demographics{}, false
	}
	var demo scoring.Demographics
	if err := json.Unmarshal(data, &demo); err != nil {
		return scoring.Demographics{}, false
	}
	return demo, true
}

func (c *Client) cacheSet(ctx context.Context, key string, demo scoring.Demographics) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(demo)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, sigcache.TTLFor(sigcache.KindCensus)); err != nil {
		zap.L().Debug("census: cache write failed", zap.Error(err))
	}
}
