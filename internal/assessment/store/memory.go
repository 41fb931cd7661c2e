package store

import (
	"context"
	"sort"
	"sync"

	"chaincomply/internal/assessment/models"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
)

// snapshot pairs an assessment with its store-assigned sequence number. The
// sequence is storage metadata, not part of the assessment value.
type snapshot struct {
	seq        uint64
	assessment models.RiskAssessment
}

// InMemorySnapshotStore keeps per-entity assessment logs in process memory.
// Used in tests and in deployments without Postgres configured.
type InMemorySnapshotStore struct {
	mu      sync.RWMutex
	nextSeq uint64
	logs    map[id.EntityID][]snapshot
}

// NewMemory creates an empty in-memory snapshot store.
func NewMemory() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{logs: make(map[id.EntityID][]snapshot)}
}

// Append records an assessment. The stored copy is detached from the caller's
// value, preserving immutability of what History later returns.
func (s *InMemorySnapshotStore) Append(_ context.Context, assessment *models.RiskAssessment) error {
	if assessment == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "assessment cannot be nil")
	}
	if assessment.EntityID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "assessment is missing its entity ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	copied := *assessment
	copied.Categories = append([]models.CategoryScore(nil), assessment.Categories...)
	s.logs[assessment.EntityID] = append(s.logs[assessment.EntityID], snapshot{
		seq:        s.nextSeq,
		assessment: copied,
	})
	return nil
}

// History returns the entity's assessments inside the range, ascending by
// timestamp with sequence-number tie-breaking.
func (s *InMemorySnapshotStore) History(_ context.Context, entityID id.EntityID, r Range) ([]*models.RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[entityID]
	selected := make([]snapshot, 0, len(log))
	for _, snap := range log {
		if r.Contains(snap.assessment.Timestamp) {
			selected = append(selected, snap)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		ti, tj := selected[i].assessment.Timestamp, selected[j].assessment.Timestamp
		if ti.Equal(tj) {
			return selected[i].seq < selected[j].seq
		}
		return ti.Before(tj)
	})

	if r.Limit > 0 && len(selected) > r.Limit {
		selected = selected[:r.Limit]
	}

	out := make([]*models.RiskAssessment, len(selected))
	for i := range selected {
		a := selected[i].assessment
		out[i] = &a
	}
	return out, nil
}

// Latest returns the most recent assessment for an entity.
func (s *InMemorySnapshotStore) Latest(ctx context.Context, entityID id.EntityID) (*models.RiskAssessment, error) {
	history, err := s.History(ctx, entityID, Range{})
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNoAssessments
	}
	return history[len(history)-1], nil
}
