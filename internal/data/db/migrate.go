package db

import (
	"fmt"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureReportIndexes(db)
}

// EnsureReportIndexes adds the indexes the admin dashboard relies on.
// The statements are valid for both Postgres and SQLite.
func EnsureReportIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_exam_attempt_passed",
			sql:  `CREATE INDEX IF NOT EXISTS idx_exam_attempt_passed ON exam_attempt(student_id, exam_id) WHERE passed;`,
		},
		{
			name: "idx_certificate_student_exam",
			sql:  `CREATE INDEX IF NOT EXISTS idx_certificate_student_exam ON certificate(student_id, exam_id);`,
		},
		{
			name: "idx_student_module_status_module",
			sql:  `CREATE INDEX IF NOT EXISTS idx_student_module_status_module ON student_module(module_id, status);`,
		},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}
