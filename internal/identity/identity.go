// Package identity wraps the hosted identity provider behind the three
// operations the portal needs: password sign-in, account creation, and
// email-to-uid lookup.
package identity

import "context"

type Credentials struct {
	UserID       string
	IDToken      string
	RefreshToken string
	ExpiresInSec int
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Credentials, error)
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	UserIDByEmail(ctx context.Context, email string) (string, error)
}
