package testutil

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/lingobridge-backend/internal/data/db"
)

func sqliteDialector(path string) gorm.Dialector {
	return sqlite.Open(dbpkg.SQLiteDSN(path))
}
