// Package aggregate rolls factor scores up into category scores and category
// scores up into the classified overall score. Aggregation is arithmetic only;
// scoring policy lives in the evaluators and profiles.
package aggregate

import (
	"chaincomply/internal/assessment/models"
	dErrors "chaincomply/pkg/domain-errors"
)

// Risk-level thresholds as inclusive lower bounds on the overall percentage.
// These boundaries are load-bearing for classification tests.
const (
	ThresholdLow    = 80.0
	ThresholdMedium = 60.0
	ThresholdHigh   = 40.0
)

// Category combines factor scores into a CategoryScore.
//
// Default rule (weights nil): score and maxScore are straight sums, which
// weights each factor by its own maxScore share. With an explicit weight map:
// score = sum((factor.score/factor.maxScore)*weight), maxScore = sum(weight),
// and factors absent from the map contribute nothing to either sum. Factor
// order in the output preserves the input evaluation order.
func Category(name string, factors []models.FactorScore, weights map[string]float64) models.CategoryScore {
	out := models.CategoryScore{
		Category: name,
		Factors:  append([]models.FactorScore(nil), factors...),
	}
	for _, f := range factors {
		if weights == nil {
			out.Score += f.Score
			out.MaxScore += f.MaxScore
			continue
		}
		weight, ok := weights[f.Name]
		if !ok {
			continue
		}
		out.Score += (f.Score / f.MaxScore) * weight
		out.MaxScore += weight
	}
	return out
}

// Overall combines category scores into the classified overall score:
// 100 * sum(score) / sum(maxScore). An empty category set (or one with zero
// total max) is a programming error surfaced as CodeConfiguration, never a
// silent zero score.
func Overall(categories []models.CategoryScore) (models.OverallScore, error) {
	if len(categories) == 0 {
		return models.OverallScore{}, dErrors.New(dErrors.CodeConfiguration, "cannot aggregate an empty category set")
	}
	var score, maxScore float64
	for _, c := range categories {
		score += c.Score
		maxScore += c.MaxScore
	}
	if maxScore <= 0 {
		return models.OverallScore{}, dErrors.New(dErrors.CodeConfiguration, "category set has zero total max score")
	}
	value := 100 * score / maxScore
	return models.OverallScore{Value: value, RiskLevel: Classify(value)}, nil
}

// Classify maps an overall percentage to its risk level. Bounds are inclusive
// at the lower edge: exactly 80 is Low, exactly 60 is Medium, exactly 40 is
// High.
func Classify(percent float64) models.RiskLevel {
	switch {
	case percent >= ThresholdLow:
		return models.RiskLevelLow
	case percent >= ThresholdMedium:
		return models.RiskLevelMedium
	case percent >= ThresholdHigh:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelCritical
	}
}
