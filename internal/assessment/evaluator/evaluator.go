// Package evaluator maps normalized compliance facts to factor scores. Each
// evaluator is pure and total: any well-formed fact, including absent data,
// produces a score. The scoring rule (interpolation curve, boolean payoff,
// choice lookup) is policy owned by the evaluator, not by the aggregators.
package evaluator

import (
	"fmt"

	"chaincomply/internal/assessment/facts"
	"chaincomply/internal/assessment/models"
)

// defaultRemediationThreshold attaches a recommendation when a factor scores
// below 60% of its max, unless the factor configures its own threshold.
const defaultRemediationThreshold = 0.6

// Evaluator scores one factor. MaxScore is fixed per evaluator; it is the
// factor's implicit weight inside its category.
type Evaluator struct {
	name           string
	description    string
	maxScore       float64
	required       bool
	threshold      float64
	recommendation string
	floor          float64
	rule           func(facts.Value) float64
}

// Option configures an evaluator at construction time.
type Option func(*Evaluator)

// Required marks the factor as structurally mandatory: an absent fact fails
// the whole assessment instead of degrading to the conservative floor.
func Required() Option {
	return func(e *Evaluator) { e.required = true }
}

// WithThreshold overrides the remediation threshold (fraction of max score).
func WithThreshold(frac float64) Option {
	return func(e *Evaluator) { e.threshold = frac }
}

// WithFloor sets the conservative score granted when an optional fact is
// absent. Defaults to zero.
func WithFloor(score float64) Option {
	return func(e *Evaluator) { e.floor = score }
}

func newEvaluator(name, description, recommendation string, maxScore float64, rule func(facts.Value) float64, opts ...Option) *Evaluator {
	e := &Evaluator{
		name:           name,
		description:    description,
		maxScore:       maxScore,
		threshold:      defaultRemediationThreshold,
		recommendation: recommendation,
		rule:           rule,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the factor name this evaluator owns.
func (e *Evaluator) Name() string { return e.name }

// MaxScore returns the evaluator's fixed denominator.
func (e *Evaluator) MaxScore() float64 { return e.maxScore }

// Required reports whether an absent fact is a caller error.
func (e *Evaluator) Required() bool { return e.required }

// RemediationThreshold returns the fraction of max below which a
// recommendation attaches.
func (e *Evaluator) RemediationThreshold() float64 { return e.threshold }

// Recommendation returns the control-specific remediation text.
func (e *Evaluator) Recommendation() string { return e.recommendation }

// Evaluate scores a fact. Absent facts score the conservative floor; the
// required-fact check is the assembler's responsibility so Evaluate stays
// total. The result never carries a recommendation; that is attached later by
// the recommendation pass.
func (e *Evaluator) Evaluate(v facts.Value) models.FactorScore {
	score := e.floor
	if !v.IsAbsent() {
		score = clamp(e.rule(v), 0, e.maxScore)
	}
	return models.FactorScore{
		Name:        e.name,
		Score:       score,
		MaxScore:    e.maxScore,
		Description: e.description,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LinearPercent builds an evaluator for percentage disclosures: at or below
// floorPct the score is zero, at or above idealPct it is max, linear in
// between. Non-percent facts score zero (conservative, never an error).
func LinearPercent(name, description, recommendation string, maxScore, floorPct, idealPct float64, opts ...Option) *Evaluator {
	if idealPct <= floorPct {
		panic(fmt.Sprintf("evaluator %s: ideal %.1f must exceed floor %.1f", name, idealPct, floorPct))
	}
	rule := func(v facts.Value) float64 {
		pct, ok := v.AsPercent()
		if !ok {
			return 0
		}
		switch {
		case pct <= floorPct:
			return 0
		case pct >= idealPct:
			return maxScore
		default:
			return maxScore * (pct - floorPct) / (idealPct - floorPct)
		}
	}
	return newEvaluator(name, description, recommendation, maxScore, rule, opts...)
}

// BoolControl builds an evaluator for yes/no controls: max when present and
// true, zero otherwise.
func BoolControl(name, description, recommendation string, maxScore float64, opts ...Option) *Evaluator {
	rule := func(v facts.Value) float64 {
		if b, ok := v.AsBool(); ok && b {
			return maxScore
		}
		return 0
	}
	return newEvaluator(name, description, recommendation, maxScore, rule, opts...)
}

// ChoiceLookup builds an evaluator for enumerated disclosures via a discrete
// score table. Unknown choices score zero rather than failing; normalizers own
// vocabulary validation.
func ChoiceLookup(name, description, recommendation string, maxScore float64, scores map[string]float64, opts ...Option) *Evaluator {
	table := make(map[string]float64, len(scores))
	for k, v := range scores {
		table[k] = v
	}
	rule := func(v facts.Value) float64 {
		choice, ok := v.AsChoice()
		if !ok {
			return 0
		}
		return table[choice]
	}
	return newEvaluator(name, description, recommendation, maxScore, rule, opts...)
}
