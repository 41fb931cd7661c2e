// Package user persists portal accounts.
package user

import (
	"context"
	"strings"
	"sync"

	"chaincomply/internal/auth/models"
	id "chaincomply/pkg/domain"
	"chaincomply/pkg/platform/sentinel"
)

// InMemoryUserStore keeps accounts in process memory. Email lookup is
// case-insensitive, matching the unique index of the PostgreSQL store.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*models.User
	byEmail map[string]*models.User
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		byID:    make(map[id.UserID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

// Create stores a new account; a duplicate email is a conflict.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	key := strings.ToLower(user.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	copied := *user
	s.byID[user.ID] = &copied
	s.byEmail[key] = &copied
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}
