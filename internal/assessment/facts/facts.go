// Package facts defines the normalized compliance facts the risk engine
// scores. Per-entity-type normalizers produce a facts.Map from raw registrant
// disclosures; evaluators consume individual values. The engine never mutates
// a caller-supplied map.
package facts

import (
	"fmt"

	dErrors "chaincomply/pkg/domain-errors"
)

// Kind discriminates the typed payload of a Value.
type Kind int

const (
	// KindAbsent marks a fact the registrant did not (or could not) disclose.
	// Optional facts degrade to the evaluator's conservative floor; required
	// facts make the whole assessment fail with CodeInvalidInput.
	KindAbsent Kind = iota
	// KindBool is a yes/no control disclosure.
	KindBool
	// KindPercent is a percentage in [0,100].
	KindPercent
	// KindChoice is one value from an evaluator-defined enumeration.
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindBool:
		return "bool"
	case KindPercent:
		return "percent"
	case KindChoice:
		return "choice"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one normalized fact. The zero value is Absent.
type Value struct {
	kind    Kind
	boolVal bool
	pctVal  float64
	choice  string
}

// Absent returns the explicit "not disclosed" value.
func Absent() Value { return Value{kind: KindAbsent} }

// Bool wraps a yes/no disclosure.
func Bool(v bool) Value { return Value{kind: KindBool, boolVal: v} }

// Percent wraps a percentage disclosure. Values are clamped to [0,100] at the
// normalizer boundary, not here; ParsePercent is the validating constructor.
func Percent(v float64) Value { return Value{kind: KindPercent, pctVal: v} }

// Choice wraps an enumerated disclosure.
func Choice(v string) Value { return Value{kind: KindChoice, choice: v} }

// ParsePercent validates and wraps a percentage from external input.
func ParsePercent(v float64) (Value, error) {
	if v < 0 || v > 100 {
		return Absent(), dErrors.Newf(dErrors.CodeInvalidInput, "percentage %.2f outside [0,100]", v)
	}
	return Percent(v), nil
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the fact was not disclosed.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// AsBool returns the boolean payload. ok is false for non-bool values.
func (v Value) AsBool() (val, ok bool) { return v.boolVal, v.kind == KindBool }

// AsPercent returns the percentage payload. ok is false for non-percent values.
func (v Value) AsPercent() (float64, bool) { return v.pctVal, v.kind == KindPercent }

// AsChoice returns the enumeration payload. ok is false for non-choice values.
func (v Value) AsChoice() (string, bool) { return v.choice, v.kind == KindChoice }

// String renders the value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.boolVal)
	case KindPercent:
		return fmt.Sprintf("percent(%.2f)", v.pctVal)
	case KindChoice:
		return fmt.Sprintf("choice(%s)", v.choice)
	default:
		return "absent"
	}
}

// Map is a set of normalized facts keyed by factor name.
type Map map[string]Value

// Get returns the fact for a factor name, or Absent when the key is missing.
// A missing key and an explicit Absent value are treated identically, which is
// what lets normalizers simply omit what a registrant did not answer.
func (m Map) Get(name string) Value {
	if v, ok := m[name]; ok {
		return v
	}
	return Absent()
}

// Clone returns a shallow copy. Values are immutable, so a shallow copy is a
// full defensive copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
