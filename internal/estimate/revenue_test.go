package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vendscout/internal/category"
)

func TestScoreToPercentile(t *testing.T) {
	assert.Equal(t, 0.92, scoreToPercentile(95))
	assert.Equal(t, 0.92, scoreToPercentile(90))
	assert.Equal(t, 0.70, scoreToPercentile(78))
	assert.Equal(t, 0.48, scoreToPercentile(60))
	assert.Equal(t, 0.15, scoreToPercentile(39))
	assert.Equal(t, 0.15, scoreToPercentile(1))
}

func TestInterpolate(t *testing.T) {
	b := CategoryBenchmark(category.Office) // 125/250/400/550

	t.Run("exact breakpoints", func(t *testing.T) {
		_, mid, _ := interpolate(b, 0.25)
		assert.Equal(t, 125, mid)
		_, mid, _ = interpolate(b, 0.50)
		assert.Equal(t, 250, mid)
		_, mid, _ = interpolate(b, 0.90)
		assert.Equal(t, 550, mid)
	})

	t.Run("midway between breakpoints", func(t *testing.T) {
		_, mid, _ := interpolate(b, 0.375)
		assert.Equal(t, 188, mid) // halfway from 125 to 250, rounded
	})

	t.Run("spread is symmetric 20 percent", func(t *testing.T) {
		low, mid, high := interpolate(b, 0.50)
		assert.Equal(t, 200, low)
		assert.Equal(t, 300, high)
		assert.Equal(t, 250, mid)
	})

	t.Run("monotonic in percentile", func(t *testing.T) {
		prev := 0
		for _, p := range []float64{0.15, 0.25, 0.40, 0.55, 0.70, 0.85, 0.92} {
			_, mid, _ := interpolate(b, p)
			require.Greater(t, mid, prev, "percentile %v", p)
			prev = mid
		}
	})
}

func TestRevenue(t *testing.T) {
	t.Run("high scoring hospital", func(t *testing.T) {
		e := Revenue(85, category.Hospital)
		assert.Equal(t, ConfidenceModerate, e.Confidence)
		assert.Contains(t, e.Basis, "hospital")
		assert.Greater(t, e.WeeklyHigh, e.WeeklyLow)
		assert.Equal(t, 0, e.WeeklyLow%5)
		assert.Equal(t, 0, e.WeeklyHigh%5)
	})

	t.Run("monotonic in score per category", func(t *testing.T) {
		for _, cat := range category.All() {
			prevHigh := 0
			for score := 10; score <= 95; score += 5 {
				e := Revenue(score, cat)
				require.GreaterOrEqual(t, e.WeeklyHigh, prevHigh, "%s score %d", cat, score)
				require.GreaterOrEqual(t, e.WeeklyHigh, e.WeeklyLow)
				prevHigh = e.WeeklyHigh
			}
		}
	})

	t.Run("monthly and annual projections", func(t *testing.T) {
		e := Revenue(60, category.Office)
		// 0.48 percentile: between p25 (0.25, 125) and p50 (0.50, 250).
		// mid = 125 + (0.23/0.25)*125 = 240, rounded to 240.
		assert.Equal(t, 240, (e.WeeklyLow+e.WeeklyHigh)/2)
		assert.Equal(t, 1039, e.MonthlyMid) // 240 * 4.33
		assert.Equal(t, 12480, e.AnnualMid) // 240 * 52
	})

	t.Run("low score confidence note", func(t *testing.T) {
		e := Revenue(30, category.Gym)
		assert.Equal(t, ConfidenceLow, e.Confidence)
		assert.Contains(t, e.ConfidenceNote, "high revenue variance")
	})
}

func TestFormatRange(t *testing.T) {
	e := RevenueEstimate{WeeklyLow: 1200, WeeklyHigh: 1800}
	assert.Equal(t, "$1,200 - $1,800/week", e.FormatRange())
}
