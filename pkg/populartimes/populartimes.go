// Package populartimes extracts the hourly busyness curve Google Maps
// embeds in its search result pages. There is no official API for this
// data, so the lookup is strictly best effort: any miss, block, or
// format change yields a nil curve, never an error the caller must
// handle.
package populartimes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendscout/internal/config"
	"github.com/sells-group/vendscout/internal/sigcache"
)

const (
	searchURL        = "https://www.google.com/maps/search/"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var curvePattern = regexp.MustCompile(`"popular_times":(\[[^\]]+\])`)

// Client scrapes busyness curves from Google Maps search pages. It
// satisfies traffic.BusynessProvider.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      sigcache.Cache
}

// New builds a popular-times client. The cache may be nil.
func New(cfg config.PopularTimesConfig, cache sigcache.Cache) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:    searchURL,
		userAgent:  ua,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}
}

// cachedCurve wraps the curve so a confirmed absence caches too. Pages
// without popular-times data stay without it; re-scraping weekly is
// enough.
type cachedCurve struct {
	Curve []int `json:"curve"`
}

// Busyness returns the 24-hour busyness curve for a named place, or nil
// when the page carries no popular-times payload.
func (c *Client) Busyness(ctx context.Context, name string, lat, lng float64) ([]int, error) {
	key := sigcache.Key(sigcache.KindBusyness, lat, lng, name)
	if curve, ok := c.cacheGet(ctx, key); ok {
		return curve, nil
	}

	page, err := c.fetchPage(ctx, name, lat, lng)
	if err != nil {
		return nil, err
	}

	curve := extractCurve(page)
	c.cacheSet(ctx, key, curve)
	if curve == nil {
		zap.L().Debug("populartimes: no curve in page", zap.String("place", name))
	}
	return curve, nil
}

func (c *Client) fetchPage(ctx context.Context, name string, lat, lng float64) ([]byte, error) {
	query := fmt.Sprintf("%s %f,%f", name, lat, lng)
	reqURL := c.baseURL + "?api=1&query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "populartimes: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "populartimes: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("populartimes: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "populartimes: read body")
	}
	return body, nil
}

// extractCurve pulls the embedded hourly array out of the page HTML and
// clamps every value onto [0,100]. Returns nil when the marker is
// absent or the payload does not parse.
func extractCurve(page []byte) []int {
	match := curvePattern.FindSubmatch(page)
	if match == nil {
		return nil
	}

	var values []float64
	if err := json.Unmarshal(match[1], &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}

	curve := make([]int, len(values))
	for i, v := range values {
		curve[i] = min(100, max(0, int(v)))
	}
	return curve
}

func (c *Client) cacheGet(ctx context.Context, key string) ([]int, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var entry cachedCurve
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return entry.Curve, true
}

func (c *Client) cacheSet(ctx context.Context, key string, curve []int) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(cachedCurve{Curve: curve})
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, sigcache.TTLFor(sigcache.KindBusyness)); err != nil {
		zap.L().Debug("populartimes: cache write failed", zap.Error(err))
	}
}
