// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"fmt"
	"kvartal/internal/db"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var memSeq atomic.Int64

// OpenMemory returns a migrated, private in-memory SQLite database and installs
// it as db.DB.
func OpenMemory() (*gorm.DB, error) {
	name := fmt.Sprintf("file:kvartal_mem_%d?mode=memory&cache=shared&_foreign_keys=on", memSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}
	db.DB = conn
	return conn, nil
}
