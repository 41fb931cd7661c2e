// Package service implements registration, login, and session management for
// portal accounts.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chaincomply/internal/audit"
	"chaincomply/internal/auth/device"
	"chaincomply/internal/auth/models"
	"chaincomply/internal/auth/store/session"
	jwttoken "chaincomply/internal/jwt_token"
	"chaincomply/internal/platform/metrics"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/platform/sentinel"
	"chaincomply/pkg/requestcontext"
)

const (
	minPasswordLength = 12
	accessTokenTTL    = 15 * time.Minute
	sessionTTL        = 24 * time.Hour
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error)
	Touch(ctx context.Context, sessionID id.SessionID, seenAt time.Time) error
	Revoke(ctx context.Context, sessionID id.SessionID, revokedAt time.Time) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates account and session lifecycle.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *jwttoken.JWTService
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

// New constructs a Service.
func New(users UserStore, sessions SessionStore, tokens *jwttoken.JWTService, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult pairs the issued token with its session.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	SessionID   id.SessionID `json:"session_id"`
	UserID      id.UserID    `json:"user_id"`
	Admin       bool         `json:"admin"`
}

// Register creates a new portal account.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "create user")
	}

	if s.metrics != nil {
		s.metrics.IncUserRegistered()
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and opens a device session.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Same response as a wrong password so emails cannot be probed.
			s.incLogin(metrics.LoginOutcomeFailure)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "find user")
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		s.incLogin(metrics.LoginOutcomeFailure)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	now := requestcontext.Now(ctx)
	sess := &models.Session{
		ID:         id.NewSessionID(),
		UserID:     user.ID,
		Device:     device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		IPAddress:  requestcontext.ClientIP(ctx),
		CreatedAt:  now,
		ExpiresAt:  now.Add(sessionTTL),
		LastSeenAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "create session")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, sess.ID, user.Admin, accessTokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issue access token")
	}

	s.incLogin(metrics.LoginOutcomeSuccess)
	s.emitAudit(ctx, audit.Event{
		ActorID: user.ID.String(),
		Action:  audit.ActionUserLoggedIn,
		Subject: sess.ID.String(),
	})
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "session_id", sess.ID)

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
		SessionID:   sess.ID,
		UserID:      user.ID,
		Admin:       user.Admin,
	}, nil
}

// ValidateSession confirms the session behind a validated token is still
// usable and records activity. Called by the auth middleware on every request.
func (s *Service) ValidateSession(ctx context.Context, sessionID id.SessionID) error {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "session not found")
		}
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "find session")
	}
	now := requestcontext.Now(ctx)
	if !sess.Active(now) {
		return dErrors.New(dErrors.CodeUnauthorized, "session expired or revoked")
	}
	if err := s.sessions.Touch(ctx, sessionID, now); err != nil {
		s.logger.WarnContext(ctx, "session touch failed", "session_id", sessionID, "error", err)
	}
	return nil
}

// Sessions lists the user's sessions, newest first.
func (s *Service) Sessions(ctx context.Context, userID id.UserID, current id.SessionID) ([]models.SessionSummary, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "list sessions")
	}
	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, models.Summarize(sess, current))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// RevokeSession revokes one of the user's own sessions.
func (s *Service) RevokeSession(ctx context.Context, userID id.UserID, sessionID id.SessionID) error {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "find session")
	}
	if sess.UserID != userID {
		// Do not reveal that the session exists.
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}

	err = s.sessions.Revoke(ctx, sessionID, requestcontext.Now(ctx))
	if errors.Is(err, session.ErrSessionRevoked) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "revoke session")
	}

	if s.metrics != nil {
		s.metrics.IncSessionRevoked()
	}
	s.emitAudit(ctx, audit.Event{
		ActorID: userID.String(),
		Action:  audit.ActionSessionRevoked,
		Subject: sessionID.String(),
	})
	return nil
}

func (s *Service) incLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncLogin(outcome)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
