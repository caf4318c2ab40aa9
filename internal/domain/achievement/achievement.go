package achievement

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lingobridge-backend/internal/domain/student"
	"gorm.io/gorm"
)

type RuleKind string

const (
	// RuleModuleCompleted unlocks when the module numbered Threshold is completed.
	RuleModuleCompleted RuleKind = "module_completed"
	// RuleModulesCompleted unlocks once Threshold modules are completed.
	RuleModulesCompleted RuleKind = "modules_completed"
	RuleStreak           RuleKind = "streak"
	RuleExamsPassed      RuleKind = "exams_passed"
	// RuleCourseCompleted unlocks once the whole catalog is completed. Threshold is unused.
	RuleCourseCompleted RuleKind = "course_completed"
)

type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Icon        string    `gorm:"column:icon" json:"icon"`
	Rule        RuleKind  `gorm:"column:rule;not null" json:"rule"`
	Threshold   int       `gorm:"column:threshold;not null" json:"threshold"`
	Points      int       `gorm:"column:points;not null" json:"points"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Achievement) TableName() string { return "achievement" }

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// StudentAchievement rows are append-only.
type StudentAchievement struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_student_achievement" json:"student_id"`
	Student         *student.Student `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"-"`
	AchievementID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_student_achievement" json:"achievement_id"`
	Achievement     *Achievement     `gorm:"constraint:OnDelete:CASCADE;foreignKey:AchievementID;references:ID" json:"achievement,omitempty"`
	TriggerModuleID *uuid.UUID       `gorm:"type:uuid;column:trigger_module_id" json:"trigger_module_id,omitempty"`
	UnlockedAt      time.Time        `gorm:"column:unlocked_at;not null" json:"unlocked_at"`
	CreatedAt       time.Time        `gorm:"not null" json:"created_at"`
}

func (StudentAchievement) TableName() string { return "student_achievement" }

func (sa *StudentAchievement) BeforeCreate(tx *gorm.DB) error {
	if sa.ID == uuid.Nil {
		sa.ID = uuid.New()
	}
	return nil
}
