package exam

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Exam struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID         *uuid.UUID      `gorm:"type:uuid;column:module_id;index" json:"module_id,omitempty"`
	Module           *catalog.Module `gorm:"constraint:OnDelete:SET NULL;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Title            string          `gorm:"column:title;not null" json:"title"`
	Description      string          `gorm:"column:description" json:"description"`
	Level            catalog.Level   `gorm:"column:level;not null" json:"level"`
	PassingScore     int             `gorm:"column:passing_score;not null" json:"passing_score"`
	TimeLimitMinutes int             `gorm:"column:time_limit_minutes;not null" json:"time_limit_minutes"`
	Published        bool            `gorm:"column:published;not null" json:"published"`
	Questions        []*ExamQuestion `gorm:"foreignKey:ExamID;references:ID" json:"questions,omitempty"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (Exam) TableName() string { return "exam" }

func (e *Exam) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type ExamQuestion struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ExamID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"exam_id"`
	Position      int            `gorm:"column:position;not null" json:"position"`
	Prompt        string         `gorm:"column:prompt;not null" json:"prompt"`
	Options       datatypes.JSON `gorm:"type:jsonb;column:options" json:"options"`
	CorrectOption int            `gorm:"column:correct_option;not null" json:"-"`
	Points        int            `gorm:"column:points;not null" json:"points"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (ExamQuestion) TableName() string { return "exam_question" }

func (q *ExamQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *ExamQuestion) OptionList() []string {
	var out []string
	if len(q.Options) == 0 {
		return out
	}
	_ = json.Unmarshal(q.Options, &out)
	return out
}

func OptionsJSON(options []string) datatypes.JSON {
	if options == nil {
		options = []string{}
	}
	raw, _ := json.Marshal(options)
	return datatypes.JSON(raw)
}
