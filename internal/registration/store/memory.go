package store

import (
	"context"
	"sort"
	"sync"

	"chaincomply/internal/registration/models"
	id "chaincomply/pkg/domain"
	"chaincomply/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations in a mutex-guarded map. Clones on both
// sides of the boundary keep callers from mutating stored state.
type InMemoryStore struct {
	mu   sync.RWMutex
	regs map[id.RegistrationID]*models.Registration
}

// NewMemory creates an empty in-memory registration store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{regs: make(map[id.RegistrationID]*models.Registration)}
}

// Create stores a new registration.
func (s *InMemoryStore) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.regs[reg.ID]; exists {
		return sentinel.ErrConflict
	}
	s.regs[reg.ID] = reg.Clone()
	return nil
}

// Get returns one registration by ID.
func (s *InMemoryStore) Get(_ context.Context, regID id.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.regs[regID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return reg.Clone(), nil
}

// Update replaces a stored registration.
func (s *InMemoryStore) Update(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[reg.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.regs[reg.ID] = reg.Clone()
	return nil
}

// List returns registrations matching the filter, newest update first.
func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Registration
	for _, reg := range s.regs {
		if filter.matches(reg) {
			out = append(out, reg.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
