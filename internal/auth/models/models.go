// Package models holds the auth domain types: portal accounts and their
// sessions.
package models

import (
	"time"

	id "chaincomply/pkg/domain"
)

// User is one portal account. Reviewers carry the Admin flag; registrants do
// not. PasswordHash is a bcrypt digest and never leaves this package's owners.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash []byte
	Admin        bool
	CreatedAt    time.Time
}

// Session is one authenticated device session. Sessions are revoked, never
// deleted, so the audit trail can reference them after logout.
type Session struct {
	ID         id.SessionID
	UserID     id.UserID
	Device     string
	IPAddress  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastSeenAt time.Time
	RevokedAt  *time.Time
}

// Active reports whether the session is usable at the given instant.
func (s *Session) Active(now time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	return now.Before(s.ExpiresAt)
}

// SessionSummary is the session listing shape returned to users.
type SessionSummary struct {
	SessionID  string    `json:"session_id"`
	Device     string    `json:"device"`
	IPAddress  string    `json:"ip_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	IsCurrent  bool      `json:"is_current"`
}

// Summarize converts a session for listing, marking the caller's own session.
func Summarize(s *Session, current id.SessionID) SessionSummary {
	return SessionSummary{
		SessionID:  s.ID.String(),
		Device:     s.Device,
		IPAddress:  s.IPAddress,
		CreatedAt:  s.CreatedAt,
		LastSeenAt: s.LastSeenAt,
		IsCurrent:  s.ID == current,
	}
}
