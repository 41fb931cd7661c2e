// Package recommend attaches remediation text to under-threshold factor
// scores. It runs after evaluation and before assembly, and only ever
// populates the Recommendation field; scores are never altered here.
package recommend

import (
	"chaincomply/internal/assessment/evaluator"
	"chaincomply/internal/assessment/models"
)

// Apply returns a copy of the factor score with the evaluator's remediation
// text attached when the normalized score falls strictly below the factor's
// remediation threshold. The text is control-specific by construction: it
// comes from the evaluator that owns the factor.
func Apply(e *evaluator.Evaluator, score models.FactorScore) models.FactorScore {
	if score.Score/score.MaxScore < e.RemediationThreshold() {
		score.Recommendation = e.Recommendation()
	}
	return score
}
