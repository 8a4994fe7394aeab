package ports

import "context"

// Identity is the opaque authenticated-identity handle produced by the
// authentication provider. Name and PhotoURL are best-effort profile data
// carried along from the provider (OAuth) and may be empty for password
// sign-ins.
type Identity struct {
	UserID   string
	Email    string
	Name     string
	PhotoURL string
}

// Authenticator abstracts the authentication provider.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)
	// SignInWithCredential validates an OAuth credential (a provider-issued
	// token) and returns the identity it carries.
	SignInWithCredential(ctx context.Context, credential string) (*Identity, error)
	// Register creates a new password credential and returns its identity.
	Register(ctx context.Context, email, password, name string) (*Identity, error)
}

// TokenIssuer mints API tokens for an authenticated session.
type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
}
