package exam

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lingobridge-backend/internal/domain/student"
	"gorm.io/gorm"
)

type Certificate struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"student_id"`
	Student    *student.Student `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	ExamID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"exam_id"`
	Exam       *Exam            `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExamID;references:ID" json:"exam,omitempty"`
	AttemptID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"attempt_id"`
	Code       string           `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Percentage float64          `gorm:"column:percentage;not null" json:"percentage"`
	IssuedAt   time.Time        `gorm:"column:issued_at;not null" json:"issued_at"`
	CreatedAt  time.Time        `gorm:"not null" json:"created_at"`
}

func (Certificate) TableName() string { return "certificate" }

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Code == "" {
		c.Code = NewCertificateCode()
	}
	return nil
}

// NewCertificateCode returns a public verification code like LB-1A2B-3C4D-5E6F.
func NewCertificateCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("LB-%s-%s-%s", raw[0:4], raw[4:8], raw[8:12])
}

type CertificatePolicy string

const (
	// PolicyPerAttempt issues a fresh certificate for every passing attempt.
	PolicyPerAttempt CertificatePolicy = "per_attempt"
	// PolicyPerExam keeps a single certificate per student and exam.
	PolicyPerExam CertificatePolicy = "per_exam"
)

func ParseCertificatePolicy(raw string) CertificatePolicy {
	if CertificatePolicy(strings.ToLower(strings.TrimSpace(raw))) == PolicyPerExam {
		return PolicyPerExam
	}
	return PolicyPerAttempt
}
