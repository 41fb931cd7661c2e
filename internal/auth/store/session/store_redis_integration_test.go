//go:build integration

package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"chaincomply/internal/auth/models"
	"chaincomply/internal/auth/store/session"
	id "chaincomply/pkg/domain"
	"chaincomply/pkg/platform/sentinel"
	"chaincomply/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
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

// TestRoundTrip verifies session persistence and user indexing.
func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	userID := id.NewUserID()
	sess := makeSession(userID)

	s.Require().NoError(s.store.Create(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, found.ID)
	s.Equal(sess.Device, found.Device)
	s.WithinDuration(sess.ExpiresAt, found.ExpiresAt, time.Second)

	listed, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(sess.ID, listed[0].ID)

	_, err = s.store.FindByID(ctx, id.NewSessionID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentRevocation verifies that concurrent revokes of the same
// session conflict under WATCH instead of double-applying.
func (s *RedisStoreSuite) TestConcurrentRevocation() {
	ctx := context.Background()
	sess := makeSession(id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, sess))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32
	var otherErrors atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Revoke(ctx, sess.ID, time.Now())
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, redis.TxFailedErr), errors.Is(err, session.ErrSessionRevoked):
				conflictCount.Add(1)
			default:
				otherErrors.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one revoke should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "remaining should conflict")
	s.Equal(int32(0), otherErrors.Load(), "no unexpected errors")

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.RevokedAt)
	s.False(found.Active(time.Now()))
}

// TestTTLPreservation verifies that updates keep the session expiry TTL.
func (s *RedisStoreSuite) TestTTLPreservation() {
	ctx := context.Background()
	sess := makeSession(id.NewUserID())
	sess.ExpiresAt = time.Now().Add(1 * time.Hour)
	s.Require().NoError(s.store.Create(ctx, sess))

	key := "session:" + sess.ID.String()
	initialTTL, err := s.redis.Client.TTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Greater(initialTTL, time.Duration(0), "initial TTL should be positive")

	time.Sleep(100 * time.Millisecond)
	s.Require().NoError(s.store.Touch(ctx, sess.ID, time.Now()))

	newTTL, err := s.redis.Client.TTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Greater(newTTL, time.Duration(0), "TTL should still be positive after update")
	s.LessOrEqual(newTTL, time.Hour, "TTL must not outlive the session expiry")
}

// TestTouchMonotonic verifies LastSeenAt never moves backwards.
func (s *RedisStoreSuite) TestTouchMonotonic() {
	ctx := context.Background()
	sess := makeSession(id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, sess))

	later := sess.LastSeenAt.Add(time.Minute)
	s.Require().NoError(s.store.Touch(ctx, sess.ID, later))
	s.Require().NoError(s.store.Touch(ctx, sess.ID, later.Add(-time.Hour)))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.WithinDuration(later, found.LastSeenAt, time.Second)
}
