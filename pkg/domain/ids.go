// Package domain holds the shared domain primitives of the portal: typed
// identifiers and the registrant entity-type enum. Identifiers are distinct
// types over uuid.UUID so an EntityID can never be passed where a UserID is
// expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "chaincomply/pkg/domain-errors"
)

// Typed identifiers. Construct via the Parse* functions at trust boundaries;
// direct conversion bypasses validation.
type (
	// UserID identifies a portal account.
	UserID uuid.UUID
	// SessionID identifies an authenticated session.
	SessionID uuid.UUID
	// EntityID identifies a registered market participant. Assessments and
	// registrations hang off this ID.
	EntityID uuid.UUID
	// RegistrationID identifies one registration application.
	RegistrationID uuid.UUID
)

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", field)
	}
	return u, nil
}

// ParseUserID validates and converts an external user ID string.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseSessionID validates and converts an external session ID string.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	return SessionID(u), err
}

// ParseEntityID validates and converts an external entity ID string.
func ParseEntityID(s string) (EntityID, error) {
	u, err := parseUUID(s, "entity_id")
	return EntityID(u), err
}

// ParseRegistrationID validates and converts an external registration ID string.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration_id")
	return RegistrationID(u), err
}

// NewUserID generates a fresh user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewSessionID generates a fresh session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewEntityID generates a fresh entity ID.
func NewEntityID() EntityID { return EntityID(uuid.New()) }

// NewRegistrationID generates a fresh registration ID.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id SessionID) String() string      { return uuid.UUID(id).String() }
func (id EntityID) String() string       { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id EntityID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// JSON and database round-trips use the canonical UUID string form.

func (id UserID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id SessionID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id EntityID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id RegistrationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *SessionID) UnmarshalText(b []byte) error {
	parsed, err := ParseSessionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *EntityID) UnmarshalText(b []byte) error {
	parsed, err := ParseEntityID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RegistrationID) UnmarshalText(b []byte) error {
	parsed, err := ParseRegistrationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
