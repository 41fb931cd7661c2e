// Package models defines the risk engine's value types. The engine owns
// construction of these values; once a RiskAssessment is assembled it is
// immutable, and a new assessment is always a new record.
package models

import (
	"time"

	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
)

// RiskLevel is the coarse classification derived from the overall normalized
// score. Levels are totally ordered from least to most severe.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// riskLevelRank orders levels by severity. Higher rank means more severe.
var riskLevelRank = map[RiskLevel]int{
	RiskLevelLow:      0,
	RiskLevelMedium:   1,
	RiskLevelHigh:     2,
	RiskLevelCritical: 3,
}

// Rank returns the severity rank for ordering (low=0 .. critical=3).
func (l RiskLevel) Rank() int { return riskLevelRank[l] }

// MoreSevereThan reports whether l ranks above other.
func (l RiskLevel) MoreSevereThan(other RiskLevel) bool { return l.Rank() > other.Rank() }

// IsValid checks if the level is one of the supported enum values.
func (l RiskLevel) IsValid() bool {
	_, ok := riskLevelRank[l]
	return ok
}

// String returns the string representation of the risk level.
func (l RiskLevel) String() string { return string(l) }

// ParseRiskLevel constructs a RiskLevel from external input (store reads).
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(s)
	if !l.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown risk level %q", s)
	}
	return l, nil
}

// FactorScore is the scored result of one compliance control disclosure.
//
// Invariant: 0 <= Score <= MaxScore, MaxScore > 0. Recommendation is non-empty
// exactly when Score/MaxScore fell below the factor's remediation threshold.
type FactorScore struct {
	Name           string  `json:"name"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"maxScore"`
	Description    string  `json:"description"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// Percent returns the factor's normalized percentage of max.
func (f FactorScore) Percent() float64 {
	return 100 * f.Score / f.MaxScore
}

// Validate enforces the factor invariants.
func (f FactorScore) Validate() error {
	if f.Name == "" {
		return dErrors.New(dErrors.CodeInternal, "factor score missing name")
	}
	if f.MaxScore <= 0 {
		return dErrors.Newf(dErrors.CodeInternal, "factor %s: maxScore must be positive, got %v", f.Name, f.MaxScore)
	}
	if f.Score < 0 || f.Score > f.MaxScore {
		return dErrors.Newf(dErrors.CodeInternal, "factor %s: score %v outside [0,%v]", f.Name, f.Score, f.MaxScore)
	}
	return nil
}

// CategoryScore groups related factor scores. Factors preserve evaluation
// order; the UI renders them in this order and it must be reproducible.
type CategoryScore struct {
	Category string        `json:"category"`
	Score    float64       `json:"score"`
	MaxScore float64       `json:"maxScore"`
	Factors  []FactorScore `json:"factors"`
}

// Percent returns the category's normalized percentage of max.
func (c CategoryScore) Percent() float64 {
	return 100 * c.Score / c.MaxScore
}

// OverallScore is the normalized overall result with its classification.
type OverallScore struct {
	Value     float64   `json:"value"`
	RiskLevel RiskLevel `json:"riskLevel"`
}

// RiskAssessment is the engine's sole externally visible artifact: one
// immutable, timestamped scoring of an entity's disclosures. Identity is
// (EntityID, Timestamp); history is an append-only sequence of these.
type RiskAssessment struct {
	EntityID     id.EntityID     `json:"entityId"`
	EntityType   id.EntityType   `json:"entityType"`
	OverallScore float64         `json:"overallScore"`
	RiskLevel    RiskLevel       `json:"riskLevel"`
	Categories   []CategoryScore `json:"categories"`
	Timestamp    time.Time       `json:"timestamp"`
}

// TrendPoint is one sample in the overall-score time series rendered by the
// history chart.
type TrendPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	OverallScore float64   `json:"overallScore"`
	RiskLevel    RiskLevel `json:"riskLevel"`
}
