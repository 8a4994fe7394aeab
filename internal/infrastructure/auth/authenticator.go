// Package auth implements the authentication provider: password credentials
// stored in MongoDB and OAuth credentials arriving as provider-signed tokens.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
	mongodb "github.com/rjtc/pms-sync/internal/infrastructure/db/mongo"
)

type Authenticator struct {
	creds *mongodb.CredentialsRepository
	// oauthSecret verifies the HMAC signature of incoming OAuth credential
	// tokens (shared with the identity provider).
	oauthSecret string
}

func NewAuthenticator(creds *mongodb.CredentialsRepository, oauthSecret string) *Authenticator {
	return &Authenticator{creds: creds, oauthSecret: oauthSecret}
}

func (a *Authenticator) SignInWithPassword(ctx context.Context, email, password string) (*ports.Identity, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	cred, err := a.creds.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return &ports.Identity{
		UserID: cred.UserID,
		Email:  cred.Email,
		Name:   cred.Name,
	}, nil
}

// SignInWithCredential validates an OAuth credential token and extracts the
// identity it carries (sub, email, name, picture claims).
func (a *Authenticator) SignInWithCredential(_ context.Context, credential string) (*ports.Identity, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(a.oauthSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	return &ports.Identity{
		UserID:   sub,
		Email:    email,
		Name:     name,
		PhotoURL: picture,
	}, nil
}

func (a *Authenticator) Register(ctx context.Context, email, password, name string) (*ports.Identity, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred, err := a.creds.Create(ctx, &mongodb.Credential{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	})
	if err != nil {
		return nil, err
	}

	return &ports.Identity{
		UserID: cred.UserID,
		Email:  cred.Email,
		Name:   cred.Name,
	}, nil
}
