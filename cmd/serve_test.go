//go:build !integration

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vendscout/internal/scout"
)

func TestBuildMux_Health(t *testing.T) {
	mux := buildMux(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildMux_Categories(t *testing.T) {
	mux := buildMux(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var entries []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Weights struct {
			FootTraffic  int `json:"foot_traffic"`
			Demographics int `json:"demographics"`
			Competition  int `json:"competition"`
			BuildingType int `json:"building_type"`
		} `json:"weights"`
		GoldenHours string `json:"golden_hours"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 8)

	for _, e := range entries {
		sum := e.Weights.FootTraffic + e.Weights.Demographics + e.Weights.Competition + e.Weights.BuildingType
		assert.Equal(t, 100, sum, "weights for %s should sum to 100", e.ID)
		assert.NotEmpty(t, e.GoldenHours)
	}
}

func TestBuildMux_Score(t *testing.T) {
	mux := buildMux(nil)

	payload := map[string]any{
		"category": "gym",
		"demographics": map[string]any{
			"population_density": 9000,
			"median_income":      60000,
			"median_age":         30,
			"employment_rate":    0.75,
		},
		"competition": map[string]any{
			"count":         2,
			"nearest_miles": 0.6,
		},
		"place_types":        []string{"gym", "point_of_interest"},
		"user_ratings_total": 1200,
		"business_status":    "OPERATIONAL",
		"has_opening_hours":  true,
		"has_place_details":  true,
		"has_census_data":    true,
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Score struct {
			Overall      int `json:"overall"`
			BuildingType int `json:"building_type"`
		} `json:"score"`
		Label     string   `json:"label"`
		Reasoning []string `json:"reasoning"`
		Revenue   struct {
			WeeklyLow  int `json:"weekly_low"`
			WeeklyHigh int `json:"weekly_high"`
		} `json:"revenue"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, 79, resp.Score.Overall)
	assert.Equal(t, 90, resp.Score.BuildingType)
	assert.Equal(t, "Excellent", resp.Label)
	assert.NotEmpty(t, resp.Reasoning)
	assert.Greater(t, resp.Revenue.WeeklyHigh, resp.Revenue.WeeklyLow)
}

func TestBuildMux_Score_BadBody(t *testing.T) {
	mux := buildMux(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBuildMux_Score_UnknownCategory(t *testing.T) {
	mux := buildMux(nil)

	body, _ := json.Marshal(map[string]string{"category": "arcade"})
	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown category")
}

func TestBuildMux_Scout_NoService(t *testing.T) {
	mux := buildMux(nil)

	body, _ := json.Marshal(map[string]any{"category": "gym", "lat": 40.7, "lng": -74.0})
	req := httptest.NewRequest(http.MethodPost, "/v1/scout", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestBuildMux_Scout_MissingCoordinates(t *testing.T) {
	mux := buildMux(scout.New(nil, nil, nil))

	body, _ := json.Marshal(map[string]any{"category": "gym"})
	req := httptest.NewRequest(http.MethodPost, "/v1/scout", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "lat and lng are required")
}

func TestBuildMux_Scout_DegradedProviders(t *testing.T) {
	mux := buildMux(scout.New(nil, nil, nil))

	body, _ := json.Marshal(map[string]any{
		"category":   "office",
		"place_name": "Acme Tower",
		"lat":        40.7128,
		"lng":        -74.0060,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/scout", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var report struct {
		ID          string `json:"id"`
		Score       struct{ Overall int }
		FootTraffic struct {
			Confidence struct {
				Level string `json:"level"`
			} `json:"confidence"`
		} `json:"foot_traffic"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "LOW", report.FootTraffic.Confidence.Level)
}
