package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther implements Authenticator over the users store and the token service.
type Auther struct {
	repo         RepositoryManager
	passwords    PasswordAuthenticator
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, cfg Config) *Auther {
	return &Auther{
		repo:      repo,
		passwords: NewPasswordAuthenticator(),
		tokenService: NewTokenService(
			[]byte(cfg.GetSigningKey()),
			cfg.GetTokenExpiration(),
			cfg.GetIssuer(),
			defLogger{},
		),
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

func (s *Auther) WithPasswordAuthenticator(pa PasswordAuthenticator) *Auther {
	if pa != nil {
		s.passwords = pa
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and issues a session token. Unknown emails
// and password mismatches return the same error shape; unverified accounts
// are reported distinctly. The token is persisted as the account's active
// session BEFORE it is returned, so the store cross-check can never reject a
// token this method handed out.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during login")
	}

	if !user.Verified {
		s.logger.Info("login rejected for unverified account", "email", email)
		return "", ErrEmailNotVerified
	}

	if err := s.passwords.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("login password mismatch", "email", email)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(NewIdentityFromUser(user))
	if err != nil {
		s.logger.Error("login token generation failed", "error", err)
		return "", err
	}

	if err := s.repo.Users().StoreSessionToken(ctx, user.ID, token); err != nil {
		s.logger.Error("login failed to persist session token", "error", err)
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to persist session token")
	}

	return token, nil
}

// Logout clears the account's active session token.
func (s *Auther) Logout(ctx context.Context, userID string) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}

	if err := s.repo.Users().ClearSessionToken(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear session token")
	}

	return nil
}

// SessionFromToken validates the token cryptographically and returns the
// decoded session. It does NOT consult the store; pair it with
// IdentityFromSession for the revocation cross-check.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		return nil, err
	}

	return sessionFromAuthClaims(claims)
}

// IdentityFromSession loads the session's account and cross-checks the
// presented raw token against the persisted active token. A stale token from
// before a newer login, or one presented after logout, is rejected here even
// though it validated cryptographically.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session, rawToken string) (Identity, error) {
	user, err := s.UserFromSession(ctx, session, rawToken)
	if err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

// UserFromSession is IdentityFromSession for callers that need the full record.
func (s *Auther) UserFromSession(ctx context.Context, session Session, rawToken string) (*User, error) {
	id, err := parseUserID(session.GetUserID())
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Users().GetByID(ctx, id.String())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrTokenRevoked
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account for session")
	}

	if user.SessionToken == "" || user.SessionToken != rawToken {
		s.logger.Info("session token no longer active", "user_id", session.GetUserID())
		return nil, ErrTokenRevoked
	}

	return user, nil
}
