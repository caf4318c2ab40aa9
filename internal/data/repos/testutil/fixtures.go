package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/achievement"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/domain/exam"
	"golang.org/x/crypto/bcrypt"
)

const TestPassword = "correct-horse-battery"

func SeedStudent(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Student {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	s := &types.Student{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Ana",
		LastName:     "Lopez",
		Role:         types.RoleStudent,
		Level:        catalog.LevelA1,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return s
}

func SeedAdmin(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Student {
	tb.Helper()
	s := SeedStudent(tb, ctx, tx, email)
	if err := tx.WithContext(ctx).Model(s).Update("role", types.RoleAdmin).Error; err != nil {
		tb.Fatalf("promote admin: %v", err)
	}
	s.Role = types.RoleAdmin
	return s
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, number int) *types.Module {
	tb.Helper()
	m := &types.Module{
		ID:              uuid.New(),
		Number:          number,
		Title:           fmt.Sprintf("Module %d", number),
		Level:           catalog.LevelA1,
		DurationMinutes: 45,
		Published:       true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedModules(tb testing.TB, ctx context.Context, tx *gorm.DB, count int) []*types.Module {
	tb.Helper()
	out := make([]*types.Module, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, SeedModule(tb, ctx, tx, i))
	}
	return out
}

func SeedAchievement(tb testing.TB, ctx context.Context, tx *gorm.DB, code string, rule achievement.RuleKind, threshold int) *types.Achievement {
	tb.Helper()
	a := &types.Achievement{
		ID:        uuid.New(),
		Code:      code,
		Title:     code,
		Rule:      rule,
		Threshold: threshold,
		Points:    10,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed achievement: %v", err)
	}
	return a
}

// SeedExam creates an exam with one question per entry in correct, each
// worth one point, whose correct option is the given index.
func SeedExam(tb testing.TB, ctx context.Context, tx *gorm.DB, passingScore int, correct ...int) *types.Exam {
	tb.Helper()
	e := &types.Exam{
		ID:               uuid.New(),
		Title:            "Checkpoint",
		Level:            catalog.LevelA1,
		PassingScore:     passingScore,
		TimeLimitMinutes: 20,
		Published:        true,
	}
	for i, c := range correct {
		e.Questions = append(e.Questions, &types.ExamQuestion{
			ID:            uuid.New(),
			Position:      i + 1,
			Prompt:        fmt.Sprintf("Question %d", i+1),
			Options:       exam.OptionsJSON([]string{"a", "b", "c", "d"}),
			CorrectOption: c,
			Points:        1,
		})
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed exam: %v", err)
	}
	return e
}
