package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"chaincomply/internal/auth/models"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "user_sessions:"
)

// RedisStore keeps sessions in Redis so revocation is visible to every portal
// instance. Session documents expire with the session; the per-user index set
// may reference expired IDs, which lookups skip.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID id.SessionID) string { return sessionKeyPrefix + sessionID.String() }
func userIndexKey(userID id.UserID) string     { return userIndexPrefix + userID.String() }

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "marshal session")
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "session already expired")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
	pipe.SAdd(ctx, userIndexKey(session.UserID), session.ID.String())
	pipe.Expire(ctx, userIndexKey(session.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "store session")
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "fetch session")
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "decode session")
	}
	return &session, nil
}

func (s *RedisStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "list user sessions")
	}
	var out []*models.Session
	for _, raw := range ids {
		sessionID, err := id.ParseSessionID(raw)
		if err != nil {
			continue
		}
		session, err := s.FindByID(ctx, sessionID)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, nil
}

func (s *RedisStore) Touch(ctx context.Context, sessionID id.SessionID, seenAt time.Time) error {
	return s.update(ctx, sessionID, func(session *models.Session) error {
		if seenAt.After(session.LastSeenAt) {
			session.LastSeenAt = seenAt
		}
		return nil
	})
}

// Revoke marks the session revoked under a WATCH transaction so concurrent
// revokes conflict instead of silently overwriting each other.
func (s *RedisStore) Revoke(ctx context.Context, sessionID id.SessionID, revokedAt time.Time) error {
	return s.update(ctx, sessionID, func(session *models.Session) error {
		if session.RevokedAt != nil {
			return ErrSessionRevoked
		}
		session.RevokedAt = &revokedAt
		return nil
	})
}

// update applies mutate to the stored session inside a WATCH transaction.
// Returns redis.TxFailedErr when a concurrent writer won the race.
func (s *RedisStore) update(ctx context.Context, sessionID id.SessionID, mutate func(*models.Session) error) error {
	key := sessionKey(sessionID)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStoreFailure, "fetch session")
		}
		var session models.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return dErrors.Wrap(err, dErrors.CodeStoreFailure, "decode session")
		}
		if err := mutate(&session); err != nil {
			return err
		}
		payload, err := json.Marshal(&session)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStoreFailure, "marshal session")
		}

		ttl := time.Until(session.ExpiresAt)
		if ttl <= 0 {
			return sentinel.ErrExpired
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, key)
}
