package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Module struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Number          int            `gorm:"column:number;not null;uniqueIndex:idx_module_number_live,where:deleted_at IS NULL" json:"number"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Description     string         `gorm:"column:description" json:"description"`
	Level           Level          `gorm:"column:level;not null;index" json:"level"`
	DurationMinutes int            `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	Published       bool           `gorm:"column:published;not null" json:"published"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Module) TableName() string { return "module" }

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
