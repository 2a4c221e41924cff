package yelp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vendscout/internal/config"
	"github.com/sells-group/vendscout/internal/sigcache"
)

const matchBody = `{"businesses":[{"name":"Gold's Gym","review_count":312,"rating":4.0}]}`

func newTestClient(t *testing.T, handler http.HandlerFunc, cache sigcache.Cache) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.YelpConfig{Key: "test-key", BaseURL: srv.URL, TimeoutSecs: 5}, cache)
}

func TestReviewCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/businesses/search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Gold's Gym", r.URL.Query().Get("term"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "best_match", r.URL.Query().Get("sort_by"))
		w.Write([]byte(matchBody)) //nolint:errcheck
	}, nil)

	count, err := c.ReviewCount(context.Background(), "Gold's Gym", 40.7128, -74.0060)
	require.NoError(t, err)
	require.NotNil(t, count)
	assert.Equal(t, 312, *count)
}

func TestReviewCountNoMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"businesses":[]}`)) //nolint:errcheck
	}, nil)

	count, err := c.ReviewCount(context.Background(), "Nonexistent Place", 40.7, -74.0)
	require.NoError(t, err)
	assert.Nil(t, count)
}

func TestReviewCountNoKey(t *testing.T) {
	c := New(config.YelpConfig{}, nil)
	count, err := c.ReviewCount(context.Background(), "Gold's Gym", 40.7, -74.0)
	require.NoError(t, err)
	assert.Nil(t, count)
}

func TestReviewCountHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)

	_, err := c.ReviewCount(context.Background(), "Gold's Gym", 40.7, -74.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestReviewCountCaches(t *testing.T) {
	hits := 0
	cache := sigcache.NewMemory(100)
	defer cache.Close() //nolint:errcheck

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte(matchBody)) //nolint:errcheck
	}, cache)

	first, err := c.ReviewCount(context.Background(), "Gold's Gym", 40.7128, -74.0060)
	require.NoError(t, err)
	second, err := c.ReviewCount(context.Background(), "Gold's Gym", 40.7128, -74.0060)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, *first, *second)
}

func TestReviewCountCachesNoMatch(t *testing.T) {
	hits := 0
	cache := sigcache.NewMemory(100)
	defer cache.Close() //nolint:errcheck

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte(`{"businesses":[]}`)) //nolint:errcheck
	}, cache)

	_, err := c.ReviewCount(context.Background(), "Nonexistent Place", 40.7, -74.0)
	require.NoError(t, err)
	count, err := c.ReviewCount(context.Background(), "Nonexistent Place", 40.7, -74.0)
	require.NoError(t, err)

	assert.Nil(t, count)
	assert.Equal(t, 1, hits, "the no-match answer should cache")
}
