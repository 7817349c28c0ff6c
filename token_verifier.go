package tasks

// BearerScheme is the exact Authorization scheme prefix we accept.
// Case-sensitive, single trailing space; anything else is not a bearer
// credential as far as this system is concerned.
const BearerScheme = "Bearer "

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// CredentialVerifier is the safe wrapper around token validation: expected
// failure modes never cross its boundary as errors, callers only observe a
// claim or nil.
type CredentialVerifier struct {
	validator TokenValidator
	logger    Logger
}

// NewCredentialVerifier creates a verifier backed by the given validator
func NewCredentialVerifier(validator TokenValidator, logger Logger) *CredentialVerifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &CredentialVerifier{
		validator: validator,
		logger:    logger,
	}
}

// Verify validates a presented credential. It returns nil on any decode
// failure, including signature mismatch, expiry and malformed input; the
// underlying cause is logged for diagnostics.
func (v *CredentialVerifier) Verify(tokenString string) AuthClaims {
	claims, err := v.verify(tokenString)
	if err != nil {
		return nil
	}
	return claims
}

// verify keeps the error so the request authenticator can distinguish an
// expired credential from a malformed one; the outward outcome is the same.
func (v *CredentialVerifier) verify(tokenString string) (AuthClaims, error) {
	claims, err := v.validator.Validate(tokenString)
	if err != nil {
		v.logger.Debug("credential verification failed", "error", err)
		return nil, err
	}
	return claims, nil
}

// ExtractBearer returns the credential after the literal "Bearer " prefix.
// Prefix stripping is exactly len(BearerScheme) characters, not trim-aware:
// "Bearer  abc" yields " abc". Absent, empty, or differently-schemed header
// values yield ok=false.
func ExtractBearer(headerValue string) (string, bool) {
	if len(headerValue) <= len(BearerScheme) {
		return "", false
	}
	if headerValue[:len(BearerScheme)] != BearerScheme {
		return "", false
	}
	return headerValue[len(BearerScheme):], true
}
