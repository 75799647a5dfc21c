// Package auth talks to the identity backend. The proxy only needs
// Provider.Validate; the terminal client uses Client to obtain the bearer
// session it sends with every chat request.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrNoSession      = errors.New("not signed in")
	ErrSessionExpired = errors.New("session expired")
)

// Claims is the identity attached to a validated bearer token.
type Claims struct {
	Subject string         `json:"sub"`
	Email   string         `json:"email,omitempty"`
	Role    string         `json:"role,omitempty"`
	Meta    map[string]any `json:"user_metadata,omitempty"`
}

// Provider validates bearer tokens. Implementations must be safe for
// concurrent use.
type Provider interface {
	Validate(ctx context.Context, token string) (*Claims, error)
}

// Session is what a successful sign-in yields.
type Session struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Expired reports whether the access token is past its expiry. A zero expiry
// never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// StaticProvider accepts a fixed token→subject table. It backs local
// development and tests.
type StaticProvider struct {
	tokens map[string]string
}

func NewStaticProvider(tokens map[string]string) *StaticProvider {
	copied := make(map[string]string, len(tokens))
	for token, subject := range tokens {
		copied[token] = subject
	}
	return &StaticProvider{tokens: copied}
}

func (p *StaticProvider) Validate(_ context.Context, token string) (*Claims, error) {
	subject, ok := p.tokens[token]
	if !ok || token == "" {
		return nil, ErrInvalidToken
	}
	return &Claims{Subject: subject, Role: "authenticated"}, nil
}
