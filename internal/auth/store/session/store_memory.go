// Package session persists device sessions: an in-memory map for tests and
// single-node deployments, and Redis for shared deployments.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"chaincomply/internal/auth/models"
	id "chaincomply/pkg/domain"
	"chaincomply/pkg/platform/sentinel"
)

// ErrSessionRevoked is returned when revoking a session that is already
// revoked. Revocation is not idempotent at the store level so callers can
// distinguish the first revoke for audit purposes.
var ErrSessionRevoked = errors.New("session already revoked")

// InMemorySessionStore keeps sessions in process memory.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *InMemorySessionStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Session
	for _, session := range s.sessions {
		if session.UserID == userID {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Touch advances the session's last-seen timestamp.
func (s *InMemorySessionStore) Touch(_ context.Context, sessionID id.SessionID, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if seenAt.After(session.LastSeenAt) {
		session.LastSeenAt = seenAt
	}
	return nil
}

// Revoke marks the session revoked. Revoking twice returns ErrSessionRevoked.
func (s *InMemorySessionStore) Revoke(_ context.Context, sessionID id.SessionID, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if session.RevokedAt != nil {
		return ErrSessionRevoked
	}
	session.RevokedAt = &revokedAt
	return nil
}
