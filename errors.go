package tasks

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Stable machine discriminants. The HTTP layer and API clients branch on
// these, never on error message text.
const (
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeNoToken            = "NO_TOKEN"
	TextCodeAuthFailed         = "AUTHENTICATION_FAILED"
	TextCodeForbidden          = "FORBIDDEN"
	TextCodeCorruptSession     = "CORRUPT_SESSION"
	TextCodeSessionNotFound    = "SESSION_NOT_FOUND"
	TextCodeSessionDecodeError = "SESSION_DECODE_ERROR"
	TextCodeMissingSigningKey  = "MISSING_SIGNING_KEY"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound)

// ErrMismatchedHashAndPassword covers both unknown identifier and bad
// password so login failures do not leak which one it was
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrTooManyLoginAttempts is returned during the login cool down window
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrTokenExpired is a well formed credential past its validity window
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers unparseable tokens and signature mismatches
var ErrTokenMalformed = errors.New("authentication token malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrNoToken means no credential was presented at all
var ErrNoToken = errors.New("no authentication token provided", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeNoToken)

// ErrAuthenticationFailed is an unexpected collaborator failure during
// authentication, converted so it never escapes the authenticator
var ErrAuthenticationFailed = errors.New("authentication failed", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeAuthFailed)

// ErrForbidden is an authenticated request without sufficient privilege
var ErrForbidden = errors.New("insufficient privileges", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeForbidden)

// ErrCorruptSession is a session cookie that is present but unusable; it
// always degrades to "no session", never to a partially trusted identity
var ErrCorruptSession = errors.New("session cookie corrupt", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeCorruptSession)

// ErrUnableToFindSession is the error when our request has no cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound)

// ErrUnableToDecodeSession unable to decode the credential from a session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError)

// ErrMissingSigningKey means the process has no signing secret configured.
// Outside of development and test profiles this is fatal at startup.
var ErrMissingSigningKey = errors.New("signing key is not configured", errors.CategoryInternal).
	WithTextCode(TextCodeMissingSigningKey)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsInvalidCredentialsError reports whether err is the recoverable
// bad-credentials outcome of a login attempt
func IsInvalidCredentialsError(err error) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == TextCodeInvalidCreds
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed or badly signed tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
