package handler

import (
	"chaincomply/internal/assessment/facts"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
)

// AssessRequest triggers a new assessment run. Fact values are typed by their
// JSON representation: booleans for controls, numbers for percentages, and
// strings for choice vocabularies.
type AssessRequest struct {
	EntityType string         `json:"entityType"`
	Facts      map[string]any `json:"facts"`
}

// Validate implements httputil.Validatable.
func (r AssessRequest) Validate() error {
	if r.EntityType == "" {
		return dErrors.New(dErrors.CodeBadRequest, "entityType is required")
	}
	if _, err := id.ParseEntityType(r.EntityType); err != nil {
		return err
	}
	if len(r.Facts) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "facts must not be empty")
	}
	return nil
}

// FactMap converts the raw JSON facts into typed engine values.
func (r AssessRequest) FactMap() (facts.Map, error) {
	out := make(facts.Map, len(r.Facts))
	for name, raw := range r.Facts {
		switch v := raw.(type) {
		case bool:
			out[name] = facts.Bool(v)
		case float64:
			val, err := facts.ParsePercent(v)
			if err != nil {
				return nil, dErrors.Newf(dErrors.CodeInvalidInput, "fact %s: %v", name, err)
			}
			out[name] = val
		case string:
			out[name] = facts.Choice(v)
		case nil:
			out[name] = facts.Absent()
		default:
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "fact %s has unsupported type", name)
		}
	}
	return out, nil
}
