package tasks_test

import (
	"context"
	"testing"
	"time"

	tasks "github.com/goliatone/go-tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyIdentity(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleGeneralUser)
	tracker := NewMockTracker(user)
	provider := tasks.NewUserProvider(tracker)

	identity, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "super-secret-password")
	require.NoError(t, err)
	require.NotNil(t, identity)

	assert.Equal(t, user.ID.String(), identity.ID())
	assert.Equal(t, "pepe@example.com", identity.Email())
	assert.Equal(t, tasks.RoleGeneralUser, identity.Role())
	assert.Equal(t, 1, tracker.SuccessTracked)
	assert.Equal(t, 0, tracker.AttemptTracked)
}

func TestVerifyIdentityBadPassword(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleGeneralUser)
	tracker := NewMockTracker(user)
	provider := tasks.NewUserProvider(tracker)

	_, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "wrong-password")
	require.Error(t, err)
	assert.True(t, tasks.IsInvalidCredentialsError(err))
	assert.Equal(t, 1, tracker.AttemptTracked, "failed attempt must be tracked")
	assert.Equal(t, 0, tracker.SuccessTracked)
}

func TestVerifyIdentityLockout(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleGeneralUser)
	now := time.Now()
	user.LoginAttempts = tasks.MaxLoginAttempts + 1
	user.LoginAttemptAt = &now

	provider := tasks.NewUserProvider(NewMockTracker(user))

	_, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "super-secret-password")
	require.Error(t, err)
	assert.ErrorIs(t, err, tasks.ErrTooManyLoginAttempts)
}

func TestVerifyIdentityCoolDownReset(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleGeneralUser)
	stale := time.Now().Add(-2 * tasks.CoolDownPeriod)
	user.LoginAttempts = tasks.MaxLoginAttempts + 3
	user.LoginAttemptAt = &stale

	provider := tasks.NewUserProvider(NewMockTracker(user))

	// attempts outside the cool down window no longer count
	identity, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "super-secret-password")
	require.NoError(t, err)
	assert.NotNil(t, identity)
}

func TestVerifyIdentityUnknownUser(t *testing.T) {
	provider := tasks.NewUserProvider(NewMockTracker())

	_, err := provider.VerifyIdentity(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)
	assert.True(t, tasks.IsInvalidCredentialsError(err),
		"unknown user must be indistinguishable from bad password")
}

func TestVerifyIdentityInvalidRole(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleGeneralUser)
	user.Role = tasks.RoleCode(42)

	provider := tasks.NewUserProvider(NewMockTracker(user))

	_, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "super-secret-password")
	require.Error(t, err)
}

func TestFindIdentityByIdentifier(t *testing.T) {
	user := newTestUser(t, "pepe@example.com", "super-secret-password", tasks.RoleManager)
	provider := tasks.NewUserProvider(NewMockTracker(user))

	identity, err := provider.FindIdentityByIdentifier(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, tasks.RoleManager, identity.Role())

	_, err = provider.FindIdentityByIdentifier(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, tasks.ErrIdentityNotFound)
}
