// Package store provides audit event persistence: an in-memory log for tests
// and Redis-less deployments, and a PostgreSQL outbox the Kafka worker drains.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"chaincomply/internal/audit"
	dErrors "chaincomply/pkg/domain-errors"
)

type memoryEntry struct {
	event     audit.Event
	published bool
}

// InMemoryStore keeps audit events in process memory, in append order.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

// NewMemory creates an empty in-memory audit store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

// Append records one event.
func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	if event.Action == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "audit event requires an action")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, memoryEntry{event: event})
	return nil
}

// ListByEntity returns events for one entity in append order.
func (s *InMemoryStore) ListByEntity(_ context.Context, entityID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.entries {
		if e.event.EntityID == entityID {
			out = append(out, e.event)
		}
	}
	return out, nil
}

// Unpublished returns up to limit events not yet drained to Kafka.
func (s *InMemoryStore) Unpublished(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.entries {
		if e.published {
			continue
		}
		out = append(out, e.event)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkPublished flags events as drained.
func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if set[s.entries[i].event.ID] {
			s.entries[i].published = true
		}
	}
	return nil
}
