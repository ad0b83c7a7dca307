// Package accounts implements account registration, email verification,
// session lifecycle, and profile management for a JSON API.
//
// Account lifecycle:
//   - Users are created unverified with a one-time verification code and a
//     Gravatar-derived default avatar. VerifyEmailHandler flips the account to
//     verified and clears the code in the same statement, so a code can never
//     be replayed.
//   - Login issues a signed, time-bounded JWT and persists it as the account's
//     single active session token before it is returned to the caller. A later
//     login overwrites it, revoking the previous token at the store
//     cross-check even though it is still cryptographically valid.
//
// Avatars:
//   - FileAvatarStore normalizes uploads to a fixed 250x250 frame and relocates
//     them into durable storage under a per-account name. The rename is the
//     transaction boundary: nothing is visible in the public root until the
//     processed file lands there.
//
// Collaborators (user store, mailer, avatar storage) are consumed through
// interfaces; the bun repositories, the SendGrid mailer, and the filesystem
// store in this package are the default implementations.
package accounts
