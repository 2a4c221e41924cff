// Package yelp looks up review volume for a place through the Yelp
// Fusion business search API. The signal is optional: without an API
// key the client reports no data rather than failing.
package yelp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendscout/internal/config"
	"github.com/sells-group/vendscout/internal/resilience"
	"github.com/sells-group/vendscout/internal/sigcache"
)

const defaultBaseURL = "https://api.yelp.com/v3"

// Client queries the Yelp Fusion API. It satisfies
// traffic.EngagementProvider.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	cache      sigcache.Cache
	retry      resilience.RetryConfig
}

// New builds a Yelp client. The cache may be nil.
func New(cfg config.YelpConfig, cache sigcache.Cache) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		key:        cfg.Key,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		retry:      resilience.DefaultRetryConfig(),
	}
}

type searchResponse struct {
	Businesses []struct {
		Name        string  `json:"name"`
		ReviewCount int     `json:"review_count"`
		Rating      float64 `json:"rating"`
	} `json:"businesses"`
}

// cachedCount wraps the count so a confirmed no-match caches too.
type cachedCount struct {
	Count *int `json:"count"`
}

// ReviewCount returns the review count of the best Yelp match for a
// named place, or nil when no key is configured or nothing matches.
func (c *Client) ReviewCount(ctx context.Context, name string, lat, lng float64) (*int, error) {
	if c.key == "" {
		return nil, nil
	}

	key := sigcache.Key(sigcache.KindYelp, lat, lng, name)
	if count, ok := c.cacheGet(ctx, key); ok {
		return count, nil
	}

	params := url.Values{
		"term":      {name},
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lng, 'f', -1, 64)},
		"limit":     {"1"},
		"sort_by":   {"best_match"},
	}
	reqURL := c.baseURL + "/businesses/search?" + params.Encode()

	parsed, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*searchResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "yelp: build request")
		}
		req.Header.Set("Authorization", "Bearer "+c.key)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrap(err, "yelp: request"), 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("yelp: returned status %d", resp.StatusCode)
			return nil, resilience.TransientFromResponse(err, resp)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrap(err, "yelp: read body"), 0)
		}

		var sr searchResponse
		if err := json.Unmarshal(body, &sr); err != nil {
			return nil, eris.Wrap(err, "yelp: parse response")
		}
		return &sr, nil
	})
	if err != nil {
		return nil, err
	}

	var count *int
	if len(parsed.Businesses) > 0 {
		count = &parsed.Businesses[0].ReviewCount
	}
	c.cacheSet(ctx, key, count)
	return count, nil
}

func (c *Client) cacheGet(ctx context.Context, key string) (*int, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var entry cachedCount
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return entry.Count, true
}

func (c *Client) cacheSet(ctx context.Context, key string, count *int) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(cachedCount{Count: count})
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, sigcache.TTLFor(sigcache.KindYelp)); err != nil {
		zap.L().Debug("yelp: cache write failed", zap.Error(err))
	}
}
