package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chaincomply/internal/auth/models"
	id "chaincomply/pkg/domain"
	"chaincomply/pkg/platform/sentinel"
)

type SessionStoreSuite struct {
	suite.Suite
	store *InMemorySessionStore
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = New()
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func makeSession(userID id.UserID) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:         id.NewSessionID(),
		UserID:     userID,
		Device:     "Chrome on macOS",
		IPAddress:  "203.0.113.9",
		CreatedAt:  now,
		ExpiresAt:  now.Add(24 * time.Hour),
		LastSeenAt: now,
	}
}

// TestSessionLookup tests session retrieval behavior.
func (s *SessionStoreSuite) TestSessionLookup() {
	s.Run("returns stored session when found", func() {
		session := makeSession(id.NewUserID())
		s.Require().NoError(s.store.Create(context.Background(), session))

		found, err := s.store.FindByID(context.Background(), session.ID)
		s.Require().NoError(err)
		s.Equal(session, found)
	})

	s.Run("returns ErrNotFound when session does not exist", func() {
		_, err := s.store.FindByID(context.Background(), id.NewSessionID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("lists only the user's sessions", func() {
		userID := id.NewUserID()
		s.Require().NoError(s.store.Create(context.Background(), makeSession(userID)))
		s.Require().NoError(s.store.Create(context.Background(), makeSession(userID)))
		s.Require().NoError(s.store.Create(context.Background(), makeSession(id.NewUserID())))

		sessions, err := s.store.ListByUser(context.Background(), userID)
		s.Require().NoError(err)
		s.Len(sessions, 2)
	})
}

// TestSessionRevocation tests revocation behavior and double-revoke handling.
func (s *SessionStoreSuite) TestSessionRevocation() {
	s.Run("revokes active session and sets RevokedAt", func() {
		session := makeSession(id.NewUserID())
		s.Require().NoError(s.store.Create(context.Background(), session))

		revokedAt := time.Now()
		s.Require().NoError(s.store.Revoke(context.Background(), session.ID, revokedAt))

		found, err := s.store.FindByID(context.Background(), session.ID)
		s.Require().NoError(err)
		s.Require().NotNil(found.RevokedAt)
		s.False(found.Active(time.Now()))
	})

	s.Run("second revoke returns ErrSessionRevoked", func() {
		session := makeSession(id.NewUserID())
		s.Require().NoError(s.store.Create(context.Background(), session))
		s.Require().NoError(s.store.Revoke(context.Background(), session.ID, time.Now()))

		err := s.store.Revoke(context.Background(), session.ID, time.Now())
		s.Require().ErrorIs(err, ErrSessionRevoked)
	})

	s.Run("revoking unknown session returns ErrNotFound", func() {
		err := s.store.Revoke(context.Background(), id.NewSessionID(), time.Now())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestTouch tests last-seen tracking.
func (s *SessionStoreSuite) TestTouch() {
	s.Run("advances LastSeenAt monotonically", func() {
		session := makeSession(id.NewUserID())
		s.Require().NoError(s.store.Create(context.Background(), session))

		later := session.LastSeenAt.Add(time.Minute)
		s.Require().NoError(s.store.Touch(context.Background(), session.ID, later))
		s.Require().NoError(s.store.Touch(context.Background(), session.ID, later.Add(-time.Hour)))

		found, err := s.store.FindByID(context.Background(), session.ID)
		s.Require().NoError(err)
		s.Equal(later, found.LastSeenAt)
	})

	s.Run("stored session is detached from caller mutation", func() {
		session := makeSession(id.NewUserID())
		s.Require().NoError(s.store.Create(context.Background(), session))

		session.Device = "mutated"
		found, err := s.store.FindByID(context.Background(), session.ID)
		s.Require().NoError(err)
		s.Equal("Chrome on macOS", found.Device)
	})
}
