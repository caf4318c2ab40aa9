package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/lingobridge-backend/internal/data/db"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database for one test. By default this is a fresh
// SQLite file under tb.TempDir(). With TEST_POSTGRES_DSN set, every call
// truncates and reuses that database, so run with -p 1.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			tb.Fatalf("open postgres: %v", err)
		}
		if err := dbpkg.AutoMigrateAll(db); err != nil {
			tb.Fatalf("migrate: %v", err)
		}
		truncateAll(tb, db)
	} else {
		path := filepath.Join(tb.TempDir(), "test.db")
		db, err = gorm.Open(sqliteDialector(path), cfg)
		if err != nil {
			tb.Fatalf("open sqlite: %v", err)
		}
		if err := dbpkg.AutoMigrateAll(db); err != nil {
			tb.Fatalf("migrate: %v", err)
		}
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func truncateAll(tb testing.TB, db *gorm.DB) {
	tb.Helper()
	tables := []string{
		"certificate",
		"exam_attempt_counter",
		"exam_attempt",
		"exam_question",
		"exam",
		"student_achievement",
		"achievement",
		"student_module",
		"module",
		"student_session",
		"student",
	}
	for _, t := range tables {
		if err := db.Exec("TRUNCATE TABLE " + t + " CASCADE").Error; err != nil {
			tb.Fatalf("truncate %s: %v", t, err)
		}
	}
}
