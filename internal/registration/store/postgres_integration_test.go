//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chaincomply/internal/registration/models"
	"chaincomply/internal/registration/store"
	id "chaincomply/pkg/domain"
	"chaincomply/pkg/platform/sentinel"
	"chaincomply/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.pg.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(context.Background(), "TRUNCATE registrations")
	s.Require().NoError(err)
}

func draftRegistration(owner id.UserID, updatedAt time.Time) *models.Registration {
	pct := 92.5
	insured := true
	return &models.Registration{
		ID:         id.NewRegistrationID(),
		OwnerID:    owner,
		EntityID:   id.NewEntityID(),
		EntityType: id.EntityTypeExchange,
		LegalName:  "Meridian Digital Markets Ltd",
		Disclosures: models.Disclosures{
			ColdStoragePct:   &pct,
			CustodyInsurance: &insured,
		},
		Status:    models.StatusDraft,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

// TestCreateGetRoundTrip verifies a row survives the JSONB round trip.
func (s *PostgresStoreSuite) TestCreateGetRoundTrip() {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	reg := draftRegistration(id.NewUserID(), now)

	s.Require().NoError(s.store.Create(ctx, reg))

	got, err := s.store.Get(ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(reg.ID, got.ID)
	s.Equal(reg.OwnerID, got.OwnerID)
	s.Equal(reg.EntityID, got.EntityID)
	s.Equal("Meridian Digital Markets Ltd", got.LegalName)
	s.Equal(models.StatusDraft, got.Status)
	s.Require().NotNil(got.Disclosures.ColdStoragePct)
	s.Equal(92.5, *got.Disclosures.ColdStoragePct)
	s.Require().NotNil(got.Disclosures.CustodyInsurance)
	s.True(*got.Disclosures.CustodyInsurance)
	s.Nil(got.Disclosures.TravelRule, "unanswered disclosures stay nil")
	s.Nil(got.ReviewedBy)
	s.Nil(got.SubmittedAt)
}

// TestCreateDuplicateConflicts verifies primary key violations surface as
// conflicts.
func (s *PostgresStoreSuite) TestCreateDuplicateConflicts() {
	ctx := context.Background()
	reg := draftRegistration(id.NewUserID(), time.Now().UTC())

	s.Require().NoError(s.store.Create(ctx, reg))
	s.ErrorIs(s.store.Create(ctx, reg), sentinel.ErrConflict)
}

// TestGetUnknown verifies a missing row maps to the not-found sentinel.
func (s *PostgresStoreSuite) TestGetUnknown() {
	_, err := s.store.Get(context.Background(), id.NewRegistrationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestUpdatePersistsReviewFields verifies nullable reviewer columns round
// trip once set.
func (s *PostgresStoreSuite) TestUpdatePersistsReviewFields() {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	reg := draftRegistration(id.NewUserID(), now)
	s.Require().NoError(s.store.Create(ctx, reg))

	reviewer := id.NewUserID()
	reviewedAt := now.Add(2 * time.Hour)
	submittedAt := now.Add(time.Hour)
	reg.Status = models.StatusApproved
	reg.ReviewNote = "verified custody attestations"
	reg.ReviewedBy = &reviewer
	reg.ReviewedAt = &reviewedAt
	reg.SubmittedAt = &submittedAt
	reg.UpdatedAt = reviewedAt
	s.Require().NoError(s.store.Update(ctx, reg))

	got, err := s.store.Get(ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, got.Status)
	s.Equal("verified custody attestations", got.ReviewNote)
	s.Require().NotNil(got.ReviewedBy)
	s.Equal(reviewer, *got.ReviewedBy)
	s.Require().NotNil(got.ReviewedAt)
	s.True(got.ReviewedAt.Equal(reviewedAt))
	s.Require().NotNil(got.SubmittedAt)
	s.True(got.SubmittedAt.Equal(submittedAt))
}

// TestUpdateUnknown verifies updating a missing row reports not found.
func (s *PostgresStoreSuite) TestUpdateUnknown() {
	err := s.store.Update(context.Background(), draftRegistration(id.NewUserID(), time.Now().UTC()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestListFilters verifies owner, status, and limit filtering with newest
// updates first.
func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	owner := id.NewUserID()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	oldest := draftRegistration(owner, base)
	newest := draftRegistration(owner, base.Add(48*time.Hour))
	submitted := draftRegistration(owner, base.Add(24*time.Hour))
	submitted.Status = models.StatusSubmitted
	other := draftRegistration(id.NewUserID(), base.Add(72*time.Hour))
	for _, reg := range []*models.Registration{oldest, newest, submitted, other} {
		s.Require().NoError(s.store.Create(ctx, reg))
	}

	mine, err := s.store.List(ctx, store.Filter{OwnerID: owner})
	s.Require().NoError(err)
	s.Require().Len(mine, 3)
	s.Equal(newest.ID, mine[0].ID)
	s.Equal(submitted.ID, mine[1].ID)
	s.Equal(oldest.ID, mine[2].ID)

	pending, err := s.store.List(ctx, store.Filter{Statuses: []models.Status{models.StatusSubmitted}})
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(submitted.ID, pending[0].ID)

	limited, err := s.store.List(ctx, store.Filter{OwnerID: owner, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal(newest.ID, limited[0].ID)
}
