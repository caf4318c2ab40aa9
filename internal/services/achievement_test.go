package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/achievement"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
)

func TestEvaluateUnlocksOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	testutil.SeedAchievement(t, ctx, env.db, "streak_1", achievement.RuleStreak, 1)
	testutil.SeedAchievement(t, ctx, env.db, "streak_7", achievement.RuleStreak, 7)
	require.NoError(t, env.db.Model(&types.Student{}).Where("id = ?", st.ID).Update("current_streak", 3).Error)

	first, err := env.achievements.Evaluate(ctx, st.ID, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "streak_1", first[0].Achievement.Code)
	assert.Nil(t, first[0].TriggerModuleID)

	second, err := env.achievements.Evaluate(ctx, st.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, second)

	earned, err := env.achievements.ListForStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, earned, 1)
	assert.Equal(t, 1, env.notify.count("achievement_unlocked"))
}

func TestEvaluateConcurrentCallsInsertOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	testutil.SeedAchievement(t, ctx, env.db, "streak_1", achievement.RuleStreak, 1)
	require.NoError(t, env.db.Model(&types.Student{}).Where("id = ?", st.ID).Update("current_streak", 1).Error)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
		errs     []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := env.achievements.Evaluate(ctx, st.ID, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			inserted += len(rows)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, inserted)

	var count int64
	require.NoError(t, env.db.Model(&types.StudentAchievement{}).Where("student_id = ?", st.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEvaluateRuleKinds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	modules := testutil.SeedModules(t, ctx, env.db, 3)
	testutil.SeedAchievement(t, ctx, env.db, "first_module", achievement.RuleModuleCompleted, 1)
	testutil.SeedAchievement(t, ctx, env.db, "two_modules", achievement.RuleModulesCompleted, 2)
	testutil.SeedAchievement(t, ctx, env.db, "three_modules", achievement.RuleModulesCompleted, 3)
	testutil.SeedAchievement(t, ctx, env.db, "first_exam", achievement.RuleExamsPassed, 1)

	for _, m := range modules[:2] {
		sm, _, err := env.studentModuleRepo.GetOrCreate(ctx, nil, st.ID, m.ID)
		require.NoError(t, err)
		sm.Status = types.ModuleCompleted
		sm.Progress = 100
		require.NoError(t, env.studentModuleRepo.Save(ctx, nil, sm))
	}

	trigger := modules[1].ID
	rows, err := env.achievements.Evaluate(ctx, st.ID, &trigger)
	require.NoError(t, err)

	codes := make([]string, 0, len(rows))
	for _, r := range rows {
		codes = append(codes, r.Achievement.Code)
		require.NotNil(t, r.TriggerModuleID)
		assert.Equal(t, trigger, *r.TriggerModuleID)
	}
	assert.ElementsMatch(t, []string{"first_module", "two_modules"}, codes)
}

func TestEvaluateUnknownStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.SeedAchievement(t, ctx, env.db, "streak_1", achievement.RuleStreak, 1)

	_, err := env.achievements.Evaluate(ctx, uuid.New(), nil)
	assert.Error(t, err)
}

func TestCourseCompletedUsesConfiguredTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	modules := testutil.SeedModules(t, ctx, env.db, 4)
	testutil.SeedAchievement(t, ctx, env.db, "all_modules", achievement.RuleCourseCompleted, 0)

	for i, m := range modules {
		var last *SectionResult
		for _, key := range catalog.Sections {
			res, err := env.progress.CompleteSection(ctx, st.ID, m.ID, string(key), 0)
			require.NoError(t, err)
			last = res
		}
		if i < len(modules)-1 {
			assert.Empty(t, last.Unlocked, "module %d", m.Number)
			continue
		}
		require.Len(t, last.Unlocked, 1)
		assert.Equal(t, "all_modules", last.Unlocked[0].Achievement.Code)
		assert.Equal(t, 100.0, last.Summary.Progress)
	}
}
