package accounts

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL derives the default avatar for an email address. Gravatar hashes
// the trimmed, lowercased address, so the URL is stable across casing.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	digest := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x", digest)
}
