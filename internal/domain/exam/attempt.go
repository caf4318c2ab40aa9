package exam

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lingobridge-backend/internal/domain/student"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamAttempt struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_exam_attempt_number" json:"student_id"`
	Student       *student.Student `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"-"`
	ExamID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_exam_attempt_number;index" json:"exam_id"`
	Exam          *Exam            `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExamID;references:ID" json:"exam,omitempty"`
	AttemptNumber int              `gorm:"column:attempt_number;not null;uniqueIndex:idx_exam_attempt_number" json:"attempt_number"`
	Score         int              `gorm:"column:score;not null" json:"score"`
	MaxScore      int              `gorm:"column:max_score;not null" json:"max_score"`
	Percentage    float64          `gorm:"column:percentage;not null" json:"percentage"`
	Passed        bool             `gorm:"column:passed;not null;index" json:"passed"`
	Answers       datatypes.JSON   `gorm:"type:jsonb;column:answers" json:"answers,omitempty"`
	SubmittedAt   time.Time        `gorm:"column:submitted_at;not null" json:"submitted_at"`
	CreatedAt     time.Time        `gorm:"not null" json:"created_at"`
}

func (ExamAttempt) TableName() string { return "exam_attempt" }

func (a *ExamAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ExamAttemptCounter holds the last attempt number handed out per student and exam.
type ExamAttemptCounter struct {
	StudentID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"student_id"`
	ExamID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"exam_id"`
	LastNumber int       `gorm:"column:last_number;not null" json:"last_number"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (ExamAttemptCounter) TableName() string { return "exam_attempt_counter" }

// Grade scores answers (question id to chosen option index) against the
// questions. Unanswered questions earn nothing.
func Grade(questions []*ExamQuestion, answers map[uuid.UUID]int) (earned, total int) {
	for _, q := range questions {
		if q == nil {
			continue
		}
		pts := q.Points
		if pts <= 0 {
			pts = 1
		}
		total += pts
		if chosen, ok := answers[q.ID]; ok && chosen == q.CorrectOption {
			earned += pts
		}
	}
	return earned, total
}

// Percentage rounds to two decimals; a zero total yields zero.
func Percentage(earned, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(earned)*10000/float64(total)) / 100
}
