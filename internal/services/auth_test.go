package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/lingobridge-backend/internal/domain/achievement"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
)

func registerAna(t *testing.T, env *testEnv) {
	t.Helper()
	_, err := env.auth.Register(context.Background(), RegisterInput{
		Email:     "  Ana@Example.com ",
		Password:  "s3cret-pass",
		FirstName: "Ana",
		LastName:  "Lopez",
		Level:     "b1",
	})
	require.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAna(t, env)

	_, err := env.auth.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "another-pass", FirstName: "Ana"})
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err))

	_, err = env.auth.Register(ctx, RegisterInput{Email: "not-an-email", Password: "another-pass", FirstName: "X"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	_, err = env.auth.Register(ctx, RegisterInput{Email: "short@example.com", Password: "123", FirstName: "X"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	_, err = env.auth.Login(ctx, "ana@example.com", "wrong-password", "test")
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))
	_, err = env.auth.Login(ctx, "nobody@example.com", "s3cret-pass", "test")
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))

	res, err := env.auth.Login(ctx, "ANA@example.com", "s3cret-pass", "test")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "B1", string(res.Student.Level))
	assert.Equal(t, env.clock.Add(time.Hour), res.ExpiresAt)

	authed, err := env.auth.SetContextFromToken(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.Student.ID, ctxutil.StudentID(authed))
	assert.False(t, ctxutil.IsAdmin(authed))

	require.NoError(t, env.auth.Logout(authed))
	_, err = env.auth.SetContextFromToken(ctx, res.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))
}

func TestSetContextFromTokenRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAna(t, env)
	res, err := env.auth.Login(ctx, "ana@example.com", "s3cret-pass", "test")
	require.NoError(t, err)

	_, err = env.auth.SetContextFromToken(ctx, "")
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))
	_, err = env.auth.SetContextFromToken(ctx, "garbage")
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))

	env.clock = env.clock.Add(2 * time.Hour)
	_, err = env.auth.SetContextFromToken(ctx, res.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))
}

func TestLoginTracksDailyStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedAchievement(t, ctx, env.db, "streak_2", achievement.RuleStreak, 2)
	registerAna(t, env)

	login := func() (int, int) {
		t.Helper()
		res, err := env.auth.Login(ctx, "ana@example.com", "s3cret-pass", "test")
		require.NoError(t, err)
		return res.Student.CurrentStreak, res.Student.BestStreak
	}

	cur, best := login()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 1, best)

	env.clock = env.clock.Add(6 * time.Hour)
	cur, _ = login()
	assert.Equal(t, 1, cur, "same day")

	env.clock = env.clock.Add(24 * time.Hour)
	cur, best = login()
	assert.Equal(t, 2, cur)
	assert.Equal(t, 2, best)
	assert.Equal(t, 1, env.notify.count("achievement_unlocked"))

	env.clock = env.clock.Add(72 * time.Hour)
	cur, best = login()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 2, best)
}
