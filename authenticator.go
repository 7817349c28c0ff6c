package tasks

import (
	"context"
	"reflect"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RejectReason identifies why a request failed authentication
type RejectReason int

const (
	// ReasonNone means the request authenticated
	ReasonNone RejectReason = iota
	// ReasonNoToken means no credential was presented
	ReasonNoToken
	// ReasonInvalidToken means the credential was malformed or badly signed
	ReasonInvalidToken
	// ReasonExpired means the credential was well formed but past expiry.
	// Outwardly this collapses into the same 401 as ReasonInvalidToken;
	// the distinction survives here and in the logs.
	ReasonExpired
	// ReasonVerifierError means a collaborator failed unexpectedly
	ReasonVerifierError
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoToken:
		return "no_token"
	case ReasonInvalidToken:
		return "invalid_token"
	case ReasonExpired:
		return "expired"
	case ReasonVerifierError:
		return "verifier_error"
	default:
		return "unknown"
	}
}

// AuthOutcome is the tagged result of authenticating a request: either
// Claims is set, or Reason says why it is not. Exactly one holds.
type AuthOutcome struct {
	Claims AuthClaims
	Reason RejectReason
}

// Authenticated reports whether the outcome carries a verified claim
func (o AuthOutcome) Authenticated() bool {
	return o.Claims != nil
}

// Err maps a rejection onto the error taxonomy
func (o AuthOutcome) Err() error {
	switch o.Reason {
	case ReasonNone:
		return nil
	case ReasonNoToken:
		return ErrNoToken
	case ReasonExpired:
		return ErrTokenExpired
	case ReasonInvalidToken:
		return ErrTokenMalformed
	default:
		return ErrAuthenticationFailed
	}
}

// Auther implements the login use case: confirm a password through the
// identity provider and issue a signed credential.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(provider IdentityProvider, tokenService TokenService) *Auther {
	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the identifier/password pair and issues a credential for
// the confirmed identity. Bad credentials surface as a tagged
// invalid-credentials error, never as prose the caller must match on.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", nil, ErrIdentityNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login failed to generate credential", "error", err)
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue credential")
	}

	return token, identity, nil
}

// ClaimsFromToken validates a raw credential and returns its claims
func (s *Auther) ClaimsFromToken(raw string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("ClaimsFromToken validation failed", "error", err)
		return nil, err
	}
	return claims, nil
}

// IdentityFromClaims resolves a verified claim to the full user record used
// by downstream business logic. Found/not-found/storage failures remain
// distinguishable through the error taxonomy.
func (s *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.UserID())
	if err != nil {
		s.logger.Error("IdentityFromClaims lookup failed", "error", err)
		return nil, err
	}

	if user, ok := identity.(interface{ Record() *User }); ok {
		return user.Record(), nil
	}

	return nil, ErrIdentityNotFound
}

var _ Authenticator = (*Auther)(nil)

// RequestAuthenticator produces an AuthOutcome from an inbound request. It
// never lets a collaborator failure escape: panics and unexpected errors
// convert to a verifier-error rejection.
type RequestAuthenticator struct {
	verifier *CredentialVerifier
	logger   Logger
}

// NewRequestAuthenticator creates an authenticator over the given verifier
func NewRequestAuthenticator(verifier *CredentialVerifier, logger Logger) *RequestAuthenticator {
	if logger == nil {
		logger = defLogger{}
	}
	return &RequestAuthenticator{
		verifier: verifier,
		logger:   logger,
	}
}

// Authenticate sources the credential from the Authorization header. An
// absent header is treated as an empty string so extraction behaves
// uniformly; "Basic ..." and friends reject as no-token because extraction
// fails before verification is attempted.
func (a *RequestAuthenticator) Authenticate(ctx router.Context) (outcome AuthOutcome) {
	defer a.recoverOutcome(&outcome)

	header := ctx.GetString(router.HeaderAuthorization, "")
	raw, ok := ExtractBearer(header)
	if !ok {
		return AuthOutcome{Reason: ReasonNoToken}
	}

	return a.verifyOutcome(raw)
}

// AuthenticateFromCookie performs the same verification but sources the
// token from the session cookie; used by server-rendered pages that carry
// no Authorization header.
func (a *RequestAuthenticator) AuthenticateFromCookie(ctx router.Context) (outcome AuthOutcome) {
	defer a.recoverOutcome(&outcome)

	raw := ctx.Cookies(CookieAuthToken)
	if raw == "" {
		return AuthOutcome{Reason: ReasonNoToken}
	}

	return a.verifyOutcome(raw)
}

func (a *RequestAuthenticator) verifyOutcome(raw string) AuthOutcome {
	claims, err := a.verifier.verify(raw)
	if err != nil {
		if IsTokenExpiredError(err) {
			return AuthOutcome{Reason: ReasonExpired}
		}
		return AuthOutcome{Reason: ReasonInvalidToken}
	}

	return AuthOutcome{Claims: claims, Reason: ReasonNone}
}

func (a *RequestAuthenticator) recoverOutcome(outcome *AuthOutcome) {
	if r := recover(); r != nil {
		a.logger.Error("authentication collaborator panicked", "panic", r)
		*outcome = AuthOutcome{Reason: ReasonVerifierError}
	}
}
