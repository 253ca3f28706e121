package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-portal/internal/app"
	"quiz-portal/internal/domain"
	"quiz-portal/internal/infra/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.auth.Register(ctx, app.Credentials{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	token, loggedIn, err := env.auth.Login(ctx, app.Credentials{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	resolved, err := env.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.auth.Register(ctx, app.Credentials{Username: "alice", Password: "one"})
	require.NoError(t, err)
	_, err = env.auth.Register(ctx, app.Credentials{Username: "alice", Password: "two"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = env.auth.Register(ctx, app.Credentials{Username: "", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.auth.Register(ctx, app.Credentials{Username: "alice", Password: "right"})
	require.NoError(t, err)

	_, _, err = env.auth.Login(ctx, app.Credentials{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = env.auth.Login(ctx, app.Credentials{Username: "nobody", Password: "right"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.auth.Register(ctx, app.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	token, _, err := env.auth.Login(ctx, app.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, token))
	_, err = env.auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	// Logging out without a usable session is harmless.
	assert.NoError(t, env.auth.Logout(ctx, ""))
	assert.NoError(t, env.auth.Logout(ctx, "garbage"))
}

func TestAuthenticateRejectsForeignAndExpiredTokens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.auth.Register(ctx, app.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	sessions := memory.NewSessionStore()
	other := app.NewAuthService(env.store, sessions, "another-secret", time.Hour)
	foreign, _, err := other.Login(ctx, app.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	now := time.Now()
	clocked := app.NewAuthServiceWithClock(env.store, sessions, "test-secret", time.Minute, func() time.Time { return now })
	token, _, err := clocked.Login(ctx, app.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	_, err = clocked.Authenticate(ctx, token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = clocked.Authenticate(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = env.auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin, created, err := env.auth.SeedAdmin(ctx, app.Credentials{Username: "admin", Password: "password"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, admin.IsAdmin)

	again, created, err := env.auth.SeedAdmin(ctx, app.Credentials{Username: "admin", Password: "other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	_, _, err = env.auth.Login(ctx, app.Credentials{Username: "admin", Password: "password"})
	assert.NoError(t, err)
}
