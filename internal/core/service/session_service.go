package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

// SessionManager owns the login/logout lifecycle. It turns the authentication
// provider's identity handle into a Session backed by the Users/{id} record,
// and keeps a snapshot in the session store so identity and role survive a
// restart without a network round trip.
type SessionManager struct {
	store     ports.RemoteStore
	auth      ports.Authenticator
	snapshots ports.SessionStore
	tokens    ports.TokenIssuer
	log       zerolog.Logger
}

func NewSessionManager(
	store ports.RemoteStore,
	auth ports.Authenticator,
	snapshots ports.SessionStore,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
) *SessionManager {
	return &SessionManager{
		store:     store,
		auth:      auth,
		snapshots: snapshots,
		tokens:    tokens,
		log:       log,
	}
}

func (s *SessionManager) LoginWithPassword(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	ident, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.completeLogin(ctx, ident)
}

func (s *SessionManager) LoginWithOAuth(ctx context.Context, credential string) (*ports.LoginResult, error) {
	ident, err := s.auth.SignInWithCredential(ctx, credential)
	if err != nil {
		return nil, err
	}
	return s.completeLogin(ctx, ident)
}

// Register creates a password credential, writes the Users/{id} profile
// record with the chosen role, and opens a session.
func (s *SessionManager) Register(ctx context.Context, email, password, name string, role domain.Role) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidArgument)
	}

	ident, err := s.auth.Register(ctx, email, password, name)
	if err != nil {
		return nil, err
	}

	fields := ports.Record{
		"name":  name,
		"email": email,
		"role":  string(role),
	}
	if err := s.store.Write(ctx, userPath(ident.UserID), fields); err != nil {
		return nil, fmt.Errorf("register: %w: %s", domain.ErrRemoteUnavailable, err)
	}

	sess := &domain.Session{
		UserID: ident.UserID,
		Email:  email,
		Name:   name,
		Role:   role,
	}
	return s.openSession(ctx, sess)
}

// completeLogin reconciles an authenticated identity against the Users
// collection. A first-time sign-in (OAuth path) has no record yet: one is
// created from the provider profile with no role chosen. An existing record
// is fetched and becomes the session, with an absent role defaulting to
// RoleNone — the user authenticated once but quit before picking a role.
func (s *SessionManager) completeLogin(ctx context.Context, ident *ports.Identity) (*ports.LoginResult, error) {
	rec, err := s.store.ReadOnce(ctx, userPath(ident.UserID))
	if err != nil {
		return nil, fmt.Errorf("login: %w: %s", domain.ErrRemoteUnavailable, err)
	}

	var sess *domain.Session
	if rec == nil {
		fields := ports.Record{
			"name":          ident.Name,
			"email":         ident.Email,
			"profile photo": ident.PhotoURL,
		}
		if err := s.store.Write(ctx, userPath(ident.UserID), fields); err != nil {
			return nil, fmt.Errorf("login: create profile: %w: %s", domain.ErrRemoteUnavailable, err)
		}
		sess = &domain.Session{
			UserID:   ident.UserID,
			Email:    ident.Email,
			Name:     ident.Name,
			PhotoURL: ident.PhotoURL,
			Role:     domain.RoleNone,
		}
		s.log.Info().Str("user_id", ident.UserID).Msg("first sign-in, profile record created")
	} else {
		sess = sessionFromRecord(ident.UserID, rec)
	}

	return s.openSession(ctx, sess)
}

func (s *SessionManager) openSession(ctx context.Context, sess *domain.Session) (*ports.LoginResult, error) {
	// The snapshot is an optimization, not a source of truth. Losing it
	// only costs a remote read on the next restart.
	if err := s.snapshots.Save(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("failed to persist session snapshot")
	}

	token, err := s.tokens.Issue(sess.UserID, sess.Email, string(sess.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.LoginResult{Session: sess, Token: token}, nil
}

// Fetch returns the session for userID, preferring the persisted snapshot
// over a remote read.
func (s *SessionManager) Fetch(ctx context.Context, userID string) (*domain.Session, error) {
	snap, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("session snapshot load failed")
	} else if snap != nil {
		return snap, nil
	}

	rec, err := s.store.ReadOnce(ctx, userPath(userID))
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w: %s", domain.ErrRemoteUnavailable, err)
	}
	if rec == nil {
		return nil, domain.ErrUserNotFound
	}

	sess := sessionFromRecord(userID, rec)
	if err := s.snapshots.Save(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to persist session snapshot")
	}
	return sess, nil
}

// UpdateRole persists a newly chosen role to Users/{id}, refreshes the
// snapshot, and reissues the API token. Used by the role-selection step after
// a first OAuth sign-in: the token minted at login still says role none, so
// without a fresh one the role gate would keep denying manager routes until
// the next full login.
func (s *SessionManager) UpdateRole(ctx context.Context, userID string, role domain.Role) (*ports.LoginResult, error) {
	if role != domain.RoleManager && role != domain.RoleMember {
		return nil, fmt.Errorf("%w: role must be manager or member", domain.ErrInvalidArgument)
	}

	if err := s.store.Write(ctx, userPath(userID), ports.Record{"role": string(role)}); err != nil {
		return nil, fmt.Errorf("update role: %w: %s", domain.ErrRemoteUnavailable, err)
	}

	sess, err := s.Fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.Role = role
	return s.openSession(ctx, sess)
}

// Logout clears the persisted snapshot. In-flight requests holding the old
// session simply run to completion.
func (s *SessionManager) Logout(ctx context.Context, userID string) error {
	return s.snapshots.Clear(ctx, userID)
}
