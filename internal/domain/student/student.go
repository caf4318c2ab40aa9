package student

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "free"
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

func ParseSubscriptionStatus(raw string) (SubscriptionStatus, bool) {
	s := SubscriptionStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SubscriptionFree, SubscriptionTrial, SubscriptionActive, SubscriptionExpired:
		return s, true
	}
	return "", false
}

type Student struct {
	ID                    uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Email                 string             `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash          string             `gorm:"not null;column:password_hash" json:"-"`
	FirstName             string             `gorm:"not null;column:first_name" json:"first_name"`
	LastName              string             `gorm:"not null;column:last_name" json:"last_name"`
	Role                  Role               `gorm:"not null;column:role" json:"role"`
	Level                 catalog.Level      `gorm:"not null;column:level;index" json:"level"`
	SubscriptionStatus    SubscriptionStatus `gorm:"not null;column:subscription_status;index" json:"subscription_status"`
	SubscriptionExpiresAt *time.Time         `gorm:"column:subscription_expires_at" json:"subscription_expires_at,omitempty"`

	CurrentStreak int        `gorm:"not null;column:current_streak" json:"current_streak"`
	BestStreak    int        `gorm:"not null;column:best_streak" json:"best_streak"`
	LastActiveAt  *time.Time `gorm:"column:last_active_at;index" json:"last_active_at,omitempty"`

	// Aggregates maintained by the progress tracker.
	Progress         float64 `gorm:"not null;column:progress" json:"progress"`
	CompletedModules int     `gorm:"not null;column:completed_modules" json:"completed_modules"`
	TimeSpentMinutes int     `gorm:"not null;column:time_spent_minutes" json:"time_spent_minutes"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Student) TableName() string { return "student" }

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Role == "" {
		s.Role = RoleStudent
	}
	if s.Level == "" {
		s.Level = catalog.LevelA1
	}
	if s.SubscriptionStatus == "" {
		s.SubscriptionStatus = SubscriptionFree
	}
	return nil
}

func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s *Student) IsAdmin() bool { return s.Role == RoleAdmin }
