package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincomply/internal/assessment/evaluator"
	"chaincomply/internal/assessment/facts"
)

func TestApplyThreshold(t *testing.T) {
	// Threshold 0.7 over max 20: recommendation attaches strictly below 14.
	e := evaluator.LinearPercent("cold_storage_pct", "cold storage share",
		"Increase the cold-storage share.", 20, 0, 100, evaluator.WithThreshold(0.7))

	score := func(pct float64) float64 {
		return Apply(e, e.Evaluate(facts.Percent(pct))).Score
	}
	rec := func(pct float64) string {
		return Apply(e, e.Evaluate(facts.Percent(pct))).Recommendation
	}

	t.Run("below threshold attaches the factor's own text", func(t *testing.T) {
		assert.Equal(t, "Increase the cold-storage share.", rec(50))
	})

	t.Run("at threshold attaches nothing", func(t *testing.T) {
		assert.Empty(t, rec(70))
	})

	t.Run("above threshold attaches nothing", func(t *testing.T) {
		assert.Empty(t, rec(90))
	})

	t.Run("scores are never altered", func(t *testing.T) {
		assert.Equal(t, e.Evaluate(facts.Percent(50)).Score, score(50))
	})
}

// Recommendation presence is monotonic in the score: walking the score down
// never removes a recommendation once attached, and walking up never adds one.
func TestApplyMonotonic(t *testing.T) {
	e := evaluator.LinearPercent("license_coverage_pct", "license share",
		"Close the licensing gap.", 10, 0, 100, evaluator.WithThreshold(0.6))

	seen := false
	for pct := 100.0; pct >= 0; pct -= 0.5 {
		got := Apply(e, e.Evaluate(facts.Percent(pct)))
		has := got.Recommendation != ""
		if seen {
			require.True(t, has, "recommendation vanished at pct=%v", pct)
		}
		seen = seen || has
	}
	assert.True(t, seen, "sweep should eventually cross the threshold")
}
