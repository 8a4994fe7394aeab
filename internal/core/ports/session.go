package ports

import (
	"context"

	"github.com/rjtc/pms-sync/internal/core/domain"
)

// SessionStore persists session snapshots so a restarted client regains its
// identity and role without a network round trip.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	// Load returns (nil, nil) when no snapshot exists for userID.
	Load(ctx context.Context, userID string) (*domain.Session, error)
	Clear(ctx context.Context, userID string) error
}

// LoginResult is returned by the session service after a successful sign-in.
type LoginResult struct {
	Session *domain.Session
	// Token is the signed API token carrying the session's identity claims.
	Token string
}

// SessionService owns the login/logout lifecycle and role state.
type SessionService interface {
	LoginWithPassword(ctx context.Context, email, password string) (*LoginResult, error)
	// LoginWithOAuth signs in with a provider credential. A first-time OAuth
	// user gets a remote profile record created with no role chosen.
	LoginWithOAuth(ctx context.Context, credential string) (*LoginResult, error)
	Register(ctx context.Context, email, password, name string, role domain.Role) (*LoginResult, error)
	// Fetch returns the session for userID, preferring the persisted
	// snapshot over a remote read.
	Fetch(ctx context.Context, userID string) (*domain.Session, error)
	// UpdateRole persists a newly chosen role remotely and in the snapshot,
	// and reissues the API token so the new role takes effect immediately —
	// the old token still carries the role it was minted with.
	UpdateRole(ctx context.Context, userID string, role domain.Role) (*LoginResult, error)
	Logout(ctx context.Context, userID string) error
}
