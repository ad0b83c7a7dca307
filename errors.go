package accounts

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmailInUse           = "account_email_in_use"
	TextCodeInvalidCredentials   = "account_invalid_credentials"
	TextCodeEmailNotVerified     = "account_email_not_verified"
	TextCodeVerificationNotFound = "account_verification_not_found"
	TextCodeEmailNotFound        = "account_email_not_found"
	TextCodeAlreadyVerified      = "account_already_verified"
	TextCodeTokenExpired         = "session_token_expired"
	TextCodeTokenMalformed       = "session_token_malformed"
	TextCodeTokenRevoked         = "session_token_revoked"
	TextCodeUserNotFound         = "account_not_found"
	TextCodeNotAnImage           = "avatar_not_an_image"
	TextCodeAvatarStorage        = "avatar_storage_failed"
	TextCodeDeliveryFailed       = "email_delivery_failed"
)

// ErrEmailInUse is returned when registering an email that already has an account.
var ErrEmailInUse = errors.New("email already in use", errors.CategoryConflict).
	WithTextCode(TextCodeEmailInUse).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials is returned for unknown emails and password mismatches
// alike, so the response does not disclose which of the two failed.
var ErrInvalidCredentials = errors.New("email or password invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotVerified is returned when logging into an account that has not
// confirmed its email address yet.
var ErrEmailNotVerified = errors.New("email is not verified", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(errors.CodeUnauthorized)

// ErrVerificationNotFound is returned when no account carries the presented
// verification code. A second verify with an already-consumed code lands here
// because MarkVerified clears the code.
var ErrVerificationNotFound = errors.New("verification code not found", errors.CategoryAuth).
	WithTextCode(TextCodeVerificationNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotFound is returned when a verification resend references an email
// with no account. Classified as unauthorized, matching the verify flow.
var ErrEmailNotFound = errors.New("email not found", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrAlreadyVerified is returned when a verification resend is requested for
// an account that is already verified.
var ErrAlreadyVerified = errors.New("email already verified", errors.CategoryAuth).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a session token is past its expiration.
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a session token fails signature or
// structural validation.
var ErrTokenMalformed = errors.New("session token invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenRevoked is returned when a token validates cryptographically but is
// no longer the account's active session token (logout, or a newer login).
var ErrTokenRevoked = errors.New("session token revoked", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrUserNotFound is returned when a referenced account no longer exists.
var ErrUserNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrNotAnImage is returned when an avatar upload cannot be decoded as a
// raster image.
var ErrNotAnImage = errors.New("uploaded file is not a decodable image", errors.CategoryBadInput).
	WithTextCode(TextCodeNotAnImage).
	WithCode(errors.CodeBadRequest)

// ErrAvatarStorage is returned when relocating a processed avatar into
// durable storage fails.
var ErrAvatarStorage = errors.New("failed to store avatar", errors.CategoryInternal).
	WithTextCode(TextCodeAvatarStorage).
	WithCode(errors.CodeInternal)

// ErrDeliveryFailed is returned when the email provider rejects or fails a
// send. Registration treats it as non-fatal; resend surfaces it directly.
var ErrDeliveryFailed = errors.New("failed to deliver email", errors.CategoryOperation).
	WithTextCode(TextCodeDeliveryFailed).
	WithCode(errors.CodeInternal)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// IsUnauthorized reports whether err carries an auth category, regardless of
// which sentinel produced it.
func IsUnauthorized(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryAuth
}
