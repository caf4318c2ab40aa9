package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDSN takes the write lock at BEGIN so concurrent writers wait on the
// busy timeout instead of failing with SQLITE_BUSY.
func SQLiteDSN(path string) string {
	if strings.TrimSpace(path) == "" {
		path = "lingobridge.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

func openSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	theDB, err := gorm.Open(sqlite.Open(SQLiteDSN(path)), gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	return theDB, nil
}
