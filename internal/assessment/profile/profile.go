// Package profile defines per-entity-type scoring profiles: which categories
// apply, which factors each category contains and in what order, and any
// explicit category weight maps. Profiles are deploy-time policy; they are
// validated against the evaluator registry at startup so a bad profile fails
// the process, not a request.
package profile

import (
	"chaincomply/internal/assessment/evaluator"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
)

// Category names rendered by the UI.
const (
	CategoryCustody            = "Custody"
	CategoryMarketSurveillance = "Market Surveillance"
	CategoryKYCAML             = "KYC & AML"
	CategoryJurisdiction       = "Jurisdiction"
	CategoryGovernance         = "Governance & Transparency"
	CategoryProtocolSecurity   = "Protocol Security"
)

// Category is one named factor grouping inside a profile. Factors are ordered;
// the order is preserved through aggregation into the rendered output.
//
// When Weights is nil the category uses straight sums (each factor weighted by
// its own max score). When set, the category score becomes
// sum((score/maxScore)*weight) over max sum(weight); factors present in the
// category but missing from the map get weight 0 and are excluded rather than
// silently counting as maximal or zero.
type Category struct {
	Name    string
	Factors []string
	Weights map[string]float64
}

// Profile is the ordered category list applied to one entity type.
type Profile struct {
	EntityType id.EntityType
	Categories []Category
}

// Validate checks the profile against the evaluator registry. Any factor name
// in a category list or weight map that has no registered evaluator is a
// deploy-time misconfiguration.
func (p Profile) Validate(reg *evaluator.Registry) error {
	if len(p.Categories) == 0 {
		return dErrors.Newf(dErrors.CodeConfiguration, "profile %s has no categories", p.EntityType)
	}
	for _, cat := range p.Categories {
		if len(cat.Factors) == 0 {
			return dErrors.Newf(dErrors.CodeConfiguration, "profile %s: category %q has no factors", p.EntityType, cat.Name)
		}
		members := make(map[string]bool, len(cat.Factors))
		for _, name := range cat.Factors {
			if _, ok := reg.Get(name); !ok {
				return dErrors.Newf(dErrors.CodeConfiguration,
					"profile %s: category %q references unknown factor %q", p.EntityType, cat.Name, name)
			}
			members[name] = true
		}
		for name, weight := range cat.Weights {
			if !members[name] {
				return dErrors.Newf(dErrors.CodeConfiguration,
					"profile %s: category %q weight map references factor %q outside the category", p.EntityType, cat.Name, name)
			}
			if weight < 0 {
				return dErrors.Newf(dErrors.CodeConfiguration,
					"profile %s: category %q has negative weight for %q", p.EntityType, cat.Name, name)
			}
		}
	}
	return nil
}

// Set maps entity types to their profiles.
type Set map[id.EntityType]Profile

// For returns the profile for an entity type.
func (s Set) For(entityType id.EntityType) (Profile, bool) {
	p, ok := s[entityType]
	return p, ok
}

// Validate checks every profile in the set. Called once at startup.
func (s Set) Validate(reg *evaluator.Registry) error {
	for entityType, p := range s {
		if p.EntityType != entityType {
			return dErrors.Newf(dErrors.CodeConfiguration,
				"profile keyed under %s declares entity type %s", entityType, p.EntityType)
		}
		if err := p.Validate(reg); err != nil {
			return err
		}
	}
	return nil
}
