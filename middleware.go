package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

const (
	authScheme = "Bearer"
	// UserLocalsKey is where the bearer middleware stores the resolved *User.
	UserLocalsKey = "auth_user"
	// SessionLocalsKey is where the bearer middleware stores the Session.
	SessionLocalsKey = "auth_session"
)

// BearerMiddleware guards routes behind a bearer session token. It validates
// the token cryptographically, then cross-checks it against the account's
// persisted active token, so logged-out and superseded tokens are rejected
// even before they expire.
type BearerMiddleware struct {
	auther *Auther
	logger Logger
}

func NewBearerMiddleware(auther *Auther) *BearerMiddleware {
	return &BearerMiddleware{
		auther: auther,
		logger: defLogger{},
	}
}

func (m *BearerMiddleware) WithLogger(logger Logger) *BearerMiddleware {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Protect returns a fiber handler that authenticates the request and stores
// the account under UserLocalsKey for downstream handlers.
func (m *BearerMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := tokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		session, err := m.auther.SessionFromToken(raw)
		if err != nil {
			m.logger.Info("bearer token rejected", "path", c.Path(), "error", err)
			return err
		}

		user, err := m.auther.UserFromSession(c.UserContext(), session, raw)
		if err != nil {
			m.logger.Info("bearer session rejected", "path", c.Path(), "error", err)
			return err
		}

		c.Locals(UserLocalsKey, user)
		c.Locals(SessionLocalsKey, session)
		c.SetUserContext(WithContext(c.UserContext(), user))

		return c.Next()
	}
}

// UserFromLocals retrieves the authenticated account stored by Protect.
func UserFromLocals(c *fiber.Ctx) (*User, error) {
	user, ok := c.Locals(UserLocalsKey).(*User)
	if !ok || user == nil {
		return nil, errors.New("no authenticated account in request", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}
	return user, nil
}

// SessionFromLocals retrieves the session stored by Protect.
func SessionFromLocals(c *fiber.Ctx) (Session, error) {
	session, ok := c.Locals(SessionLocalsKey).(Session)
	if !ok || session == nil {
		return nil, errors.New("no session in request", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}
	return session, nil
}

func tokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrTokenMalformed
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authScheme) {
		return "", ErrTokenMalformed
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrTokenMalformed
	}

	return token, nil
}
