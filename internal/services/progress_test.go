package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/achievement"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
)

func TestCompleteSectionWalksModuleToCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	modules := testutil.SeedModules(t, ctx, env.db, 2)
	testutil.SeedAchievement(t, ctx, env.db, "module_2_done", achievement.RuleModuleCompleted, 2)

	var last *SectionResult
	for i, key := range catalog.Sections {
		res, err := env.progress.CompleteSection(ctx, st.ID, modules[1].ID, string(key), 5)
		require.NoError(t, err, "section %s", key)
		assert.True(t, res.Changed)
		assert.InDelta(t, float64(i+1)*10, res.Module.Progress, 0.001)
		last = res
	}

	require.NotNil(t, last)
	assert.Equal(t, types.ModuleCompleted, last.Module.Status)
	assert.NotNil(t, last.Module.CompletedAt)
	assert.Equal(t, 100.0, last.Module.Progress)
	assert.True(t, last.ModuleCompleted)
	assert.Equal(t, 50, last.Module.TimeSpentMinutes)

	require.Len(t, last.Unlocked, 1)
	assert.Equal(t, "module_2_done", last.Unlocked[0].Achievement.Code)
	require.NotNil(t, last.Unlocked[0].TriggerModuleID)
	assert.Equal(t, modules[1].ID, *last.Unlocked[0].TriggerModuleID)

	require.NotNil(t, last.Summary)
	assert.Equal(t, 1, last.Summary.CompletedModules)
	assert.Equal(t, 25.0, last.Summary.Progress)
	assert.Equal(t, 50, last.Summary.TimeSpentMinutes)
	assert.Equal(t, 1, last.Summary.AchievementsUnlocked)

	assert.Equal(t, 10, env.notify.count("section_completed"))
	assert.Equal(t, 1, env.notify.count("module_completed"))
	assert.Equal(t, 1, env.notify.count("achievement_unlocked"))
}

func TestCompleteSectionIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	m := testutil.SeedModule(t, ctx, env.db, 1)

	first, err := env.progress.CompleteSection(ctx, st.ID, m.ID, "grammar", 12)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, types.ModuleInProgress, first.Module.Status)

	again, err := env.progress.CompleteSection(ctx, st.ID, m.ID, "GRAMMAR", 30)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, first.Module.Progress, again.Module.Progress)
	assert.Equal(t, 12, again.Module.TimeSpentMinutes)
	assert.Equal(t, 12, again.Summary.TimeSpentMinutes)
	assert.Equal(t, 1, env.notify.count("section_completed"))
}

func TestCompleteSectionValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	m := testutil.SeedModule(t, ctx, env.db, 1)

	_, err := env.progress.CompleteSection(ctx, st.ID, m.ID, "karaoke", 1)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	_, err = env.progress.CompleteSection(ctx, st.ID, m.ID, "story", -1)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	_, err = env.progress.CompleteSection(ctx, st.ID, uuid.New(), "story", 1)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))

	_, err = env.progress.CompleteSection(ctx, uuid.New(), m.ID, "story", 1)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))

	_, err = env.progress.CompleteSection(ctx, uuid.Nil, m.ID, "story", 1)
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))
}

func TestDraftModuleTakesNoProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	m := testutil.SeedModule(t, ctx, env.db, 1)
	require.NoError(t, env.db.Model(m).Update("published", false).Error)

	_, err := env.progress.CompleteSection(ctx, st.ID, m.ID, "story", 5)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	_, err = env.progress.GetModuleProgress(ctx, st.ID, m.ID)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))

	rows, err := env.progress.ListProgress(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, env.notify.count("section_completed"))
}

func TestGetModuleProgressWithoutRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	m := testutil.SeedModule(t, ctx, env.db, 3)

	sm, err := env.progress.GetModuleProgress(ctx, st.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, sm.ID)
	assert.Equal(t, types.ModuleNotStarted, sm.Status)
	assert.Equal(t, m.Number, sm.Module.Number)

	rows, err := env.progress.ListProgress(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStudentProgress(t *testing.T) {
	assert.Equal(t, 0.0, StudentProgress(0, 40))
	assert.Equal(t, 2.5, StudentProgress(1, 40))
	assert.Equal(t, 33.33, StudentProgress(1, 3))
	assert.Equal(t, 100.0, StudentProgress(50, 40))
	assert.Equal(t, 0.0, StudentProgress(3, 0))
}
