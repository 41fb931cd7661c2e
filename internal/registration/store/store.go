// Package store persists registration applications. The memory store backs
// tests and single-node development; the postgres store is the production
// path. Both report failures through pkg/platform/sentinel errors and leave
// domain translation to the service.
package store

import (
	id "chaincomply/pkg/domain"

	"chaincomply/internal/registration/models"
)

// Filter narrows List results. Zero fields match everything; results are
// ordered by last update, newest first.
type Filter struct {
	OwnerID    id.UserID
	EntityType id.EntityType
	Statuses   []models.Status
	Limit      int
}

func (f Filter) matches(reg *models.Registration) bool {
	if !f.OwnerID.IsNil() && reg.OwnerID != f.OwnerID {
		return false
	}
	if f.EntityType != "" && reg.EntityType != f.EntityType {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if reg.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
