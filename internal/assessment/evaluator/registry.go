package evaluator

import dErrors "chaincomply/pkg/domain-errors"

// Registry holds the evaluators known to the engine, keyed by factor name.
// Profiles reference factors by name; lookups against the registry are part
// of startup profile validation.
type Registry struct {
	byName map[string]*Evaluator
}

// NewRegistry builds a registry from evaluators. Duplicate factor names are a
// programming error and fail with CodeConfiguration.
func NewRegistry(evaluators ...*Evaluator) (*Registry, error) {
	byName := make(map[string]*Evaluator, len(evaluators))
	for _, e := range evaluators {
		if _, exists := byName[e.Name()]; exists {
			return nil, dErrors.Newf(dErrors.CodeConfiguration, "duplicate evaluator for factor %q", e.Name())
		}
		byName[e.Name()] = e
	}
	return &Registry{byName: byName}, nil
}

// Get returns the evaluator for a factor name.
func (r *Registry) Get(name string) (*Evaluator, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Len returns the number of registered evaluators.
func (r *Registry) Len() int { return len(r.byName) }
