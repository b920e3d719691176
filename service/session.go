package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ncobase/ncore/ctxutil"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/data/repository"
	"github.com/ncobase/todo-api/structs"
)

const (
	// sessionTTL matches cookie.SessionMaxAge so the server-side expiry and
	// the cookie lifetime stay in step.
	sessionTTL = 24 * time.Hour

	// auditTTL is the expiry window recorded on session audit records. The
	// audit trail is operational metadata, not access control.
	auditTTL = 31 * time.Minute
)

// ErrNoSession is returned by Logout when no transport session exists.
var ErrNoSession = repository.ErrSessionNotFound

// SessionService manages transport sessions and their audit mirror. The
// transport session is the source of truth for access control; audit records
// are best-effort and never block or fail the authentication path.
type SessionService struct {
	sessionRepo repository.SessionRepository
	infoRepo    repository.SessionInfoRepository
	logger      *logger.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(sessionRepo repository.SessionRepository, infoRepo repository.SessionInfoRepository, logger *logger.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		infoRepo:    infoRepo,
		logger:      logger,
	}
}

// CreateSession allocates a transport session for the user and persists it.
// The audit record is written asynchronously with the session id threaded
// from creation, so concurrent logins cannot cross-associate records.
func (s *SessionService) CreateSession(ctx context.Context, userID, email string) (*structs.Session, error) {
	now := time.Now()
	session := &structs.Session{
		SessionID: uuid.New().String(),
		Email:     email,
		UserID:    userID,
		Permanent: true,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	go s.recordSessionInfo(ctx, session)

	s.logger.Info(ctx, "session created", "session_id", session.SessionID, "email", email)
	return session, nil
}

// recordSessionInfo mirrors the session into the audit collection. Failures
// are logged and swallowed; the login response has already been produced.
func (s *SessionService) recordSessionInfo(parent context.Context, session *structs.Session) {
	ctx, cancel := ctxutil.WithAsyncContextDefault(parent)
	defer cancel()

	now := time.Now()
	info := &structs.SessionInfo{
		SessionID: session.SessionID,
		Email:     session.Email,
		UserID:    session.UserID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(auditTTL),
		IsActive:  true,
	}

	if err := s.infoRepo.Create(ctx, info); err != nil {
		s.logger.Warn(ctx, "failed to record session info", "session_id", session.SessionID, "error", err)
	}
}

// ValidateSession returns the transport session for the given id if it
// exists and has not passed its server-side expiry.
func (s *SessionService) ValidateSession(ctx context.Context, sessionID string) (*structs.Session, bool) {
	session, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, false
	}
	return session, true
}

// TouchAsync refreshes the audit record's updated_at without blocking the
// request. Misses are expected (the record may not exist yet) and are never
// surfaced to the caller.
func (s *SessionService) TouchAsync(parent context.Context, sessionID string) {
	go func() {
		ctx, cancel := ctxutil.WithAsyncContextDefault(parent)
		defer cancel()

		if err := s.infoRepo.Touch(ctx, sessionID, time.Now()); err != nil {
			s.logger.Debug(ctx, "session touch skipped", "session_id", sessionID, "error", err)
		}
	}()
}

// Logout removes the transport session and deactivates the matching audit
// record. The audit record survives as an inactive entry; failing to
// deactivate it does not fail the logout.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}

	if err := s.infoRepo.Deactivate(ctx, sessionID, time.Now()); err != nil {
		s.logger.Warn(ctx, "failed to deactivate session info", "session_id", sessionID, "error", err)
	}

	s.logger.Info(ctx, "session closed", "session_id", sessionID)
	return nil
}

// SessionInfoView is an audit record with timestamps rendered for humans.
type SessionInfoView struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	ExpiresAt string `json:"expires_at"`
	IsActive  bool   `json:"is_active"`
}

// ListActiveSessions returns all active audit records, newest first.
func (s *SessionService) ListActiveSessions(ctx context.Context) ([]*SessionInfoView, error) {
	infos, err := s.infoRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*SessionInfoView, 0, len(infos))
	for _, info := range infos {
		views = append(views, &SessionInfoView{
			ID:        info.ID.Hex(),
			SessionID: info.SessionID,
			Email:     info.Email,
			UserID:    info.UserID,
			CreatedAt: info.CreatedAt.Format(time.RFC3339),
			UpdatedAt: info.UpdatedAt.Format(time.RFC3339),
			ExpiresAt: info.ExpiresAt.Format(time.RFC3339),
			IsActive:  info.IsActive,
		})
	}
	return views, nil
}
