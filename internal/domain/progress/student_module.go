package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/domain/student"
	"gorm.io/gorm"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) rank() int {
	switch s {
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}

type StudentModule struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_student_module" json:"student_id"`
	Student   *student.Student `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"-"`
	ModuleID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_student_module;index" json:"module_id"`
	Module    *catalog.Module  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`

	StoryDone         bool `gorm:"column:story_done;not null" json:"story_done"`
	VocabularyDone    bool `gorm:"column:vocabulary_done;not null" json:"vocabulary_done"`
	GrammarDone       bool `gorm:"column:grammar_done;not null" json:"grammar_done"`
	ListeningDone     bool `gorm:"column:listening_done;not null" json:"listening_done"`
	SpeakingDone      bool `gorm:"column:speaking_done;not null" json:"speaking_done"`
	ReadingDone       bool `gorm:"column:reading_done;not null" json:"reading_done"`
	WritingDone       bool `gorm:"column:writing_done;not null" json:"writing_done"`
	PronunciationDone bool `gorm:"column:pronunciation_done;not null" json:"pronunciation_done"`
	CultureDone       bool `gorm:"column:culture_done;not null" json:"culture_done"`
	QuizDone          bool `gorm:"column:quiz_done;not null" json:"quiz_done"`

	Progress         float64    `gorm:"column:progress;not null" json:"progress"`
	Status           Status     `gorm:"column:status;not null;index" json:"status"`
	TimeSpentMinutes int        `gorm:"column:time_spent_minutes;not null" json:"time_spent_minutes"`
	StartedAt        *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastActivityAt   *time.Time `gorm:"column:last_activity_at" json:"last_activity_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StudentModule) TableName() string { return "student_module" }

func (m *StudentModule) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = StatusNotStarted
	}
	return nil
}

// NewStudentModule returns an untouched record for the pair.
func NewStudentModule(studentID, moduleID uuid.UUID) *StudentModule {
	return &StudentModule{
		ID:        uuid.New(),
		StudentID: studentID,
		ModuleID:  moduleID,
		Status:    StatusNotStarted,
	}
}

func (m *StudentModule) flag(key catalog.SectionKey) *bool {
	switch key {
	case catalog.SectionStory:
		return &m.StoryDone
	case catalog.SectionVocabulary:
		return &m.VocabularyDone
	case catalog.SectionGrammar:
		return &m.GrammarDone
	case catalog.SectionListening:
		return &m.ListeningDone
	case catalog.SectionSpeaking:
		return &m.SpeakingDone
	case catalog.SectionReading:
		return &m.ReadingDone
	case catalog.SectionWriting:
		return &m.WritingDone
	case catalog.SectionPronunciation:
		return &m.PronunciationDone
	case catalog.SectionCulture:
		return &m.CultureDone
	case catalog.SectionQuiz:
		return &m.QuizDone
	}
	return nil
}

func (m *StudentModule) SectionDone(key catalog.SectionKey) bool {
	f := m.flag(key)
	return f != nil && *f
}

func (m *StudentModule) CompletedSections() []catalog.SectionKey {
	out := make([]catalog.SectionKey, 0, len(catalog.Sections))
	for _, k := range catalog.Sections {
		if m.SectionDone(k) {
			out = append(out, k)
		}
	}
	return out
}

// SectionWeight is the progress value of a single section.
func SectionWeight() float64 {
	return 100 / float64(len(catalog.Sections))
}

// CompleteSection flips the section flag and advances progress and status.
// It returns false, leaving the record untouched, when the section is unknown
// or already complete.
func (m *StudentModule) CompleteSection(key catalog.SectionKey, now time.Time) bool {
	f := m.flag(key)
	if f == nil || *f {
		return false
	}
	*f = true

	m.Progress += SectionWeight()
	if m.Progress > 100 {
		m.Progress = 100
	}
	if m.StartedAt == nil {
		m.StartedAt = &now
	}
	m.LastActivityAt = &now

	next := StatusInProgress
	if m.Progress >= 100 {
		next = StatusCompleted
	}
	m.advance(next, now)
	return true
}

func (m *StudentModule) advance(next Status, now time.Time) {
	if next.rank() <= m.Status.rank() {
		return
	}
	m.Status = next
	if next == StatusCompleted && m.CompletedAt == nil {
		m.CompletedAt = &now
	}
}

func (m *StudentModule) Completed() bool { return m.Status == StatusCompleted }
