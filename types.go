package accounts

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Name() string
	Email() string
	Subscription() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, userID string) error
	SessionFromToken(token string) (Session, error)
	IdentityFromSession(ctx context.Context, session Session, rawToken string) (Identity, error)
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetUserID() string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// Config holds service options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetBaseURL() string
	GetSenderAddress() string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// CodeIssuer generates one-time verification codes
type CodeIssuer interface {
	Issue() (string, error)
}

// Mailer delivers a single message through the external provider. One
// attempt, no retries; the caller decides whether a failure is fatal.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// AvatarProcessor turns an untrusted upload into a stored, normalized avatar
// and returns its storage-root-relative reference path.
type AvatarProcessor interface {
	Ingest(userID, tempPath, originalName string) (string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
