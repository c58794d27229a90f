package liberfly

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetTokenExpiration() int
	GetExtendedTokenDuration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetContextKey() string
}

type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
	GetExtendedSession() bool
}

// CredentialVerifier checks an email/password pair against stored users.
// Implementations are read only.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*User, error)
}

// TokenIssuer mints and persists bearer tokens for authenticated users
type TokenIssuer interface {
	Issue(ctx context.Context, user *User, extended bool) (*IssuedToken, error)
}

// UserRegistrar handles new user registrations
type UserRegistrar interface {
	RegisterUser(ctx context.Context, msg RegisterUserMessage) (*User, error)
}

// UserDirectory is the read side consumed by the lookup endpoints
type UserDirectory interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] API "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] API "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] API "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
