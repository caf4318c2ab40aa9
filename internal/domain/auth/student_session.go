package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lingobridge-backend/internal/domain/student"
	"gorm.io/gorm"
)

type StudentSession struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID        `gorm:"type:uuid;index;not null" json:"student_id"`
	Student   *student.Student `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	UserAgent string           `gorm:"column:user_agent" json:"user_agent"`
	ExpiresAt time.Time        `gorm:"column:expires_at;not null" json:"expires_at"`
	RevokedAt *time.Time       `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

func (StudentSession) TableName() string { return "student_session" }

func (s *StudentSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *StudentSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
