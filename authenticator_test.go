package tasks_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	tasks "github.com/goliatone/go-tasks"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, email, password string, role tasks.RoleCode) *tasks.User {
	t.Helper()

	hash, err := tasks.HashPassword(password)
	require.NoError(t, err)

	id, err := hashid.NewUUID(email)
	require.NoError(t, err)

	return &tasks.User{
		ID:           id,
		Username:     email,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
}

func TestAutherLogin(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleGeneralUser)
	provider := tasks.NewUserProvider(NewMockTracker(user))
	svc := newTestTokenService()

	auther := tasks.NewAuthenticator(provider, svc)

	token, identity, err := auther.Login(context.Background(), "pepe@example.com", "super-secret-password")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, identity)
	assert.Equal(t, user.ID.String(), identity.ID())

	claims, err := auther.ClaimsFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, tasks.RoleGeneralUser, claims.Role())
}

func TestAutherLoginBadPassword(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleGeneralUser)
	provider := tasks.NewUserProvider(NewMockTracker(user))

	auther := tasks.NewAuthenticator(provider, newTestTokenService())

	_, _, err := auther.Login(context.Background(), "pepe@example.com", "wrong-password")
	require.Error(t, err)
	assert.True(t, tasks.IsInvalidCredentialsError(err))
}

func TestAutherLoginUnknownIdentifier(t *testing.T) {
	provider := tasks.NewUserProvider(NewMockTracker())
	auther := tasks.NewAuthenticator(provider, newTestTokenService())

	_, _, err := auther.Login(context.Background(), "ghost@example.com", "whatever-password")
	require.Error(t, err)
	assert.True(t, tasks.IsInvalidCredentialsError(err),
		"unknown identifier must look identical to a bad password")
}

func TestAutherIdentityFromClaims(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleGeneralUser)
	provider := tasks.NewUserProvider(NewMockTracker(user))
	auther := tasks.NewAuthenticator(provider, newTestTokenService())

	token, _, err := auther.Login(context.Background(), "pepe@example.com", "super-secret-password")
	require.NoError(t, err)

	claims, err := auther.ClaimsFromToken(token)
	require.NoError(t, err)

	record, err := auther.IdentityFromClaims(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID, record.ID)
	assert.Equal(t, user.Email, record.Email)
}

func headerContext(header string) *MockContext {
	ctx := &MockContext{}
	ctx.On("GetString", router.HeaderAuthorization, "").Return(header)
	return ctx
}

func TestRequestAuthenticatorHeader(t *testing.T) {
	svc := newTestTokenService()
	verifier := tasks.NewCredentialVerifier(svc, nil)
	reqAuth := tasks.NewRequestAuthenticator(verifier, nil)

	token, err := svc.Generate(MockIdentity{
		IDVal: "user-1", UsernameVal: "pepe", RoleVal: tasks.RoleGeneralUser,
	})
	require.NoError(t, err)

	t.Run("valid token authenticates", func(t *testing.T) {
		outcome := reqAuth.Authenticate(headerContext("Bearer " + token))
		assert.True(t, outcome.Authenticated())
		assert.Equal(t, tasks.ReasonNone, outcome.Reason)
		assert.NoError(t, outcome.Err())
		assert.Equal(t, "user-1", outcome.Claims.UserID())
	})

	t.Run("missing header rejects with no token", func(t *testing.T) {
		outcome := reqAuth.Authenticate(headerContext(""))
		assert.False(t, outcome.Authenticated())
		assert.Equal(t, tasks.ReasonNoToken, outcome.Reason)
		assert.ErrorIs(t, outcome.Err(), tasks.ErrNoToken)
	})

	t.Run("different scheme rejects with no token", func(t *testing.T) {
		outcome := reqAuth.Authenticate(headerContext("Basic dXNlcjpwYXNz"))
		assert.Equal(t, tasks.ReasonNoToken, outcome.Reason)
	})

	t.Run("garbage token rejects as invalid", func(t *testing.T) {
		outcome := reqAuth.Authenticate(headerContext("Bearer garbage"))
		assert.False(t, outcome.Authenticated())
		assert.Equal(t, tasks.ReasonInvalidToken, outcome.Reason)
	})

	t.Run("wrong signature rejects as invalid", func(t *testing.T) {
		other := tasks.NewTokenService([]byte("another-key"), 24, "go-tasks", nil, nil)
		badToken, err := other.Generate(MockIdentity{
			IDVal: "user-1", UsernameVal: "pepe", RoleVal: tasks.RoleGuest,
		})
		require.NoError(t, err)

		outcome := reqAuth.Authenticate(headerContext("Bearer " + badToken))
		assert.Equal(t, tasks.ReasonInvalidToken, outcome.Reason)
	})
}

func TestRequestAuthenticatorExpired(t *testing.T) {
	validator := &MockValidator{Err: tasks.ErrTokenExpired}
	verifier := tasks.NewCredentialVerifier(validator, nil)
	reqAuth := tasks.NewRequestAuthenticator(verifier, nil)

	outcome := reqAuth.Authenticate(headerContext("Bearer some.expired.token"))
	assert.False(t, outcome.Authenticated())
	assert.Equal(t, tasks.ReasonExpired, outcome.Reason)
	assert.ErrorIs(t, outcome.Err(), tasks.ErrTokenExpired)
}

func TestRequestAuthenticatorPanicRecovery(t *testing.T) {
	validator := &MockValidator{Panics: true}
	verifier := tasks.NewCredentialVerifier(validator, nil)
	reqAuth := tasks.NewRequestAuthenticator(verifier, nil)

	var outcome tasks.AuthOutcome
	assert.NotPanics(t, func() {
		outcome = reqAuth.Authenticate(headerContext("Bearer whatever"))
	})

	assert.False(t, outcome.Authenticated())
	assert.Equal(t, tasks.ReasonVerifierError, outcome.Reason)
	assert.ErrorIs(t, outcome.Err(), tasks.ErrAuthenticationFailed)
}

func TestRequestAuthenticatorFromCookie(t *testing.T) {
	svc := newTestTokenService()
	verifier := tasks.NewCredentialVerifier(svc, nil)
	reqAuth := tasks.NewRequestAuthenticator(verifier, nil)

	token, err := svc.Generate(MockIdentity{
		IDVal: "user-1", UsernameVal: "pepe", RoleVal: tasks.RoleGeneralUser,
	})
	require.NoError(t, err)

	t.Run("valid cookie authenticates", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("Cookies", tasks.CookieAuthToken).Return(token)

		outcome := reqAuth.AuthenticateFromCookie(ctx)
		assert.True(t, outcome.Authenticated())
	})

	t.Run("missing cookie rejects with no token", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("Cookies", tasks.CookieAuthToken).Return("")

		outcome := reqAuth.AuthenticateFromCookie(ctx)
		assert.Equal(t, tasks.ReasonNoToken, outcome.Reason)
	})
}
