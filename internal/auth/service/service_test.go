package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chaincomply/internal/audit"
	auditstore "chaincomply/internal/audit/store"
	"chaincomply/internal/auth/store/session"
	"chaincomply/internal/auth/store/user"
	jwttoken "chaincomply/internal/jwt_token"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/requestcontext"
)

type AuthServiceSuite struct {
	suite.Suite
	ctx      context.Context
	users    *user.InMemoryUserStore
	sessions *session.InMemorySessionStore
	audits   *auditstore.InMemoryStore
	svc      *Service
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = user.New()
	s.sessions = session.New()
	s.audits = auditstore.NewMemory()
	tokens := jwttoken.NewJWTService("test-signing-key", "chaincomply", "chaincomply-portal")
	s.svc = New(s.users, s.sessions, tokens,
		WithAuditPublisher(audit.NewPublisher(s.audits)))
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

const validPassword = "correct-horse-battery"

// ============================================================================
// Registration
// ============================================================================

func (s *AuthServiceSuite) TestRegister() {
	s.Run("creates account with hashed password", func() {
		created, err := s.svc.Register(s.ctx, "ops@exchange.example", validPassword)
		s.Require().NoError(err)
		s.False(created.ID.IsNil())
		s.NotContains(string(created.PasswordHash), validPassword)

		found, err := s.users.FindByEmail(s.ctx, "ops@exchange.example")
		s.Require().NoError(err)
		s.Equal(created.ID, found.ID)
	})

	s.Run("normalizes email casing", func() {
		_, err := s.svc.Register(s.ctx, "Mixed.Case@Example.com", validPassword)
		s.Require().NoError(err)

		_, err = s.svc.Login(s.ctx, "mixed.case@example.com", validPassword)
		s.Require().NoError(err)
	})

	s.Run("rejects short passwords", func() {
		_, err := s.svc.Register(s.ctx, "short@example.com", "tooshort")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects invalid email", func() {
		_, err := s.svc.Register(s.ctx, "not-an-email", validPassword)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("duplicate email is a conflict", func() {
		_, err := s.svc.Register(s.ctx, "dup@example.com", validPassword)
		s.Require().NoError(err)

		_, err = s.svc.Register(s.ctx, "dup@example.com", validPassword)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

// ============================================================================
// Login
// ============================================================================

func (s *AuthServiceSuite) TestLogin() {
	s.Run("issues token and session on valid credentials", func() {
		_, err := s.svc.Register(s.ctx, "login@example.com", validPassword)
		s.Require().NoError(err)

		ctx := requestcontext.WithClientMetadata(s.ctx, "203.0.113.9",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		result, err := s.svc.Login(ctx, "login@example.com", validPassword)
		s.Require().NoError(err)
		s.NotEmpty(result.AccessToken)
		s.False(result.SessionID.IsNil())

		sess, err := s.sessions.FindByID(s.ctx, result.SessionID)
		s.Require().NoError(err)
		s.Equal("203.0.113.9", sess.IPAddress)
		s.Contains(sess.Device, "Chrome")
		s.True(sess.Active(time.Now()))
	})

	s.Run("wrong password and unknown email are indistinguishable", func() {
		_, err := s.svc.Register(s.ctx, "probe@example.com", validPassword)
		s.Require().NoError(err)

		_, errWrongPassword := s.svc.Login(s.ctx, "probe@example.com", "wrong-password-here")
		_, errUnknownEmail := s.svc.Login(s.ctx, "nobody@example.com", validPassword)

		s.Require().Error(errWrongPassword)
		s.Require().Error(errUnknownEmail)
		s.Equal(errWrongPassword.Error(), errUnknownEmail.Error())
		s.True(dErrors.HasCode(errWrongPassword, dErrors.CodeUnauthorized))
	})

	s.Run("emits login audit event", func() {
		_, err := s.svc.Register(s.ctx, "audited@example.com", validPassword)
		s.Require().NoError(err)

		result, err := s.svc.Login(s.ctx, "audited@example.com", validPassword)
		s.Require().NoError(err)

		events, err := s.audits.Unpublished(s.ctx, 10)
		s.Require().NoError(err)
		var found bool
		for _, e := range events {
			if e.Action == audit.ActionUserLoggedIn && e.ActorID == result.UserID.String() {
				found = true
			}
		}
		s.True(found, "login should appear in the audit trail")
	})
}

// ============================================================================
// Session validation and revocation
// ============================================================================

func (s *AuthServiceSuite) login(email string) *LoginResult {
	s.T().Helper()
	_, err := s.svc.Register(s.ctx, email, validPassword)
	s.Require().NoError(err)
	result, err := s.svc.Login(s.ctx, email, validPassword)
	s.Require().NoError(err)
	return result
}

func (s *AuthServiceSuite) TestValidateSession() {
	s.Run("accepts an active session and records activity", func() {
		result := s.login("active@example.com")

		later := time.Now().Add(10 * time.Minute)
		ctx := requestcontext.WithTime(s.ctx, later)
		s.Require().NoError(s.svc.ValidateSession(ctx, result.SessionID))

		sess, err := s.sessions.FindByID(s.ctx, result.SessionID)
		s.Require().NoError(err)
		s.Equal(later, sess.LastSeenAt)
	})

	s.Run("rejects a revoked session", func() {
		result := s.login("revoked@example.com")
		s.Require().NoError(s.svc.RevokeSession(s.ctx, result.UserID, result.SessionID))

		err := s.svc.ValidateSession(s.ctx, result.SessionID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects an expired session", func() {
		result := s.login("expired@example.com")

		ctx := requestcontext.WithTime(s.ctx, time.Now().Add(25*time.Hour))
		err := s.svc.ValidateSession(ctx, result.SessionID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects an unknown session", func() {
		err := s.svc.ValidateSession(s.ctx, id.NewSessionID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *AuthServiceSuite) TestRevokeSession() {
	s.Run("cannot revoke another user's session", func() {
		victim := s.login("victim@example.com")
		attacker := s.login("attacker@example.com")

		err := s.svc.RevokeSession(s.ctx, attacker.UserID, victim.SessionID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		sess, err := s.sessions.FindByID(s.ctx, victim.SessionID)
		s.Require().NoError(err)
		s.Nil(sess.RevokedAt)
	})

	s.Run("revoking twice is idempotent at the service level", func() {
		result := s.login("twice@example.com")
		s.Require().NoError(s.svc.RevokeSession(s.ctx, result.UserID, result.SessionID))
		s.Require().NoError(s.svc.RevokeSession(s.ctx, result.UserID, result.SessionID))
	})

	s.Run("revocation lands in the audit trail", func() {
		result := s.login("audit-revoke@example.com")
		s.Require().NoError(s.svc.RevokeSession(s.ctx, result.UserID, result.SessionID))

		events, err := s.audits.Unpublished(s.ctx, 50)
		s.Require().NoError(err)
		var found bool
		for _, e := range events {
			if e.Action == audit.ActionSessionRevoked && e.Subject == result.SessionID.String() {
				found = true
			}
		}
		s.True(found)
	})
}

func (s *AuthServiceSuite) TestSessions() {
	s.Run("lists sessions newest first and marks the current one", func() {
		email := "lister@example.com"
		_, err := s.svc.Register(s.ctx, email, validPassword)
		s.Require().NoError(err)

		base := time.Now()
		var last *LoginResult
		for i := range 3 {
			ctx := requestcontext.WithTime(s.ctx, base.Add(time.Duration(i)*time.Minute))
			last, err = s.svc.Login(ctx, email, validPassword)
			s.Require().NoError(err)
		}

		summaries, err := s.svc.Sessions(s.ctx, last.UserID, last.SessionID)
		s.Require().NoError(err)
		s.Require().Len(summaries, 3)
		s.True(summaries[0].IsCurrent, "newest session is the current login")
		for i := 1; i < len(summaries); i++ {
			s.False(summaries[i].CreatedAt.After(summaries[i-1].CreatedAt))
		}
	})
}
