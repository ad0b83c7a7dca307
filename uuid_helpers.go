package accounts

import (
	"github.com/google/uuid"
)

// parseUserID normalizes a session's user id claim into a UUID. Anything
// unparseable reads as a malformed token, not an internal failure.
func parseUserID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return parsed, nil
}

// HasUserUUID reports whether the session carries a parseable user id.
func HasUserUUID(session Session) bool {
	if session == nil {
		return false
	}
	_, err := parseUserID(session.GetUserID())
	return err == nil
}
