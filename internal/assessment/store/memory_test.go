package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chaincomply/internal/assessment/models"
	id "chaincomply/pkg/domain"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemorySnapshotStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func makeAssessment(entityID id.EntityID, ts time.Time, overall float64) *models.RiskAssessment {
	return &models.RiskAssessment{
		EntityID:     entityID,
		EntityType:   id.EntityTypeExchange,
		OverallScore: overall,
		RiskLevel:    models.RiskLevelMedium,
		Categories: []models.CategoryScore{
			{Category: "Custody", Score: 18, MaxScore: 20},
		},
		Timestamp: ts,
	}
}

// =============================================================================
// Append
// =============================================================================

func (s *MemoryStoreSuite) TestAppend() {
	ctx := context.Background()

	s.Run("rejects nil assessment", func() {
		s.Error(s.store.Append(ctx, nil))
	})

	s.Run("rejects missing entity ID", func() {
		s.Error(s.store.Append(ctx, makeAssessment(id.EntityID{}, time.Now(), 50)))
	})

	s.Run("stored snapshot is detached from the caller's value", func() {
		entity := id.NewEntityID()
		a := makeAssessment(entity, time.Now(), 75)
		s.Require().NoError(s.store.Append(ctx, a))

		a.Categories[0].Score = 1
		a.OverallScore = 1

		got, err := s.store.Latest(ctx, entity)
		s.Require().NoError(err)
		s.Equal(75.0, got.OverallScore)
		s.Equal(18.0, got.Categories[0].Score)
	})
}

// =============================================================================
// History ordering
// =============================================================================

func (s *MemoryStoreSuite) TestHistoryOrdering() {
	ctx := context.Background()
	entity := id.NewEntityID()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.Run("timestamp order wins over append order", func() {
		s.Require().NoError(s.store.Append(ctx, makeAssessment(entity, base.Add(2*time.Hour), 60)))
		s.Require().NoError(s.store.Append(ctx, makeAssessment(entity, base, 40)))
		s.Require().NoError(s.store.Append(ctx, makeAssessment(entity, base.Add(time.Hour), 50)))

		history, err := s.store.History(ctx, entity, Range{})
		s.Require().NoError(err)
		s.Require().Len(history, 3)
		s.Equal(40.0, history[0].OverallScore)
		s.Equal(50.0, history[1].OverallScore)
		s.Equal(60.0, history[2].OverallScore)
	})

	s.Run("equal timestamps break ties by append sequence", func() {
		tied := id.NewEntityID()
		for i := 0; i < 5; i++ {
			a := makeAssessment(tied, base, float64(i))
			s.Require().NoError(s.store.Append(ctx, a))
		}
		history, err := s.store.History(ctx, tied, Range{})
		s.Require().NoError(err)
		s.Require().Len(history, 5)
		for i := 0; i < 5; i++ {
			s.Equal(float64(i), history[i].OverallScore, "tie order must be deterministic")
		}
	})
}

func (s *MemoryStoreSuite) TestHistoryRange() {
	ctx := context.Background()
	entity := id.NewEntityID()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 10; day++ {
		a := makeAssessment(entity, base.AddDate(0, 0, day), float64(day))
		s.Require().NoError(s.store.Append(ctx, a))
	}

	s.Run("inclusive from/to bounds", func() {
		history, err := s.store.History(ctx, entity, Range{
			From: base.AddDate(0, 0, 2),
			To:   base.AddDate(0, 0, 5),
		})
		s.Require().NoError(err)
		s.Require().Len(history, 4)
		s.Equal(2.0, history[0].OverallScore)
		s.Equal(5.0, history[3].OverallScore)
	})

	s.Run("limit caps from the start of the window", func() {
		history, err := s.store.History(ctx, entity, Range{Limit: 3})
		s.Require().NoError(err)
		s.Require().Len(history, 3)
		s.Equal(0.0, history[0].OverallScore)
	})

	s.Run("unknown entity returns empty history, not an error", func() {
		history, err := s.store.History(ctx, id.NewEntityID(), Range{})
		s.NoError(err)
		s.Empty(history)
	})
}

func (s *MemoryStoreSuite) TestLatest() {
	ctx := context.Background()

	s.Run("empty log returns ErrNoAssessments", func() {
		_, err := s.store.Latest(ctx, id.NewEntityID())
		s.True(errors.Is(err, ErrNoAssessments))
	})

	s.Run("returns the newest by timestamp", func() {
		entity := id.NewEntityID()
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		s.Require().NoError(s.store.Append(ctx, makeAssessment(entity, base.Add(time.Hour), 90)))
		s.Require().NoError(s.store.Append(ctx, makeAssessment(entity, base, 10)))

		got, err := s.store.Latest(ctx, entity)
		s.Require().NoError(err)
		s.Equal(90.0, got.OverallScore)
	})
}

// Concurrent appends for the same entity must neither race nor lose snapshots.
func (s *MemoryStoreSuite) TestConcurrentAppends() {
	ctx := context.Background()
	entity := id.NewEntityID()
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.store.Append(ctx, makeAssessment(entity, ts, float64(i)))
		}(i)
	}
	wg.Wait()

	history, err := s.store.History(ctx, entity, Range{})
	s.Require().NoError(err)
	s.Len(history, 50)
}
