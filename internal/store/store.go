// Package store persists the backup catalog, schedules and settings.
// Catalog and schedules live in an embedded SQLite database so writes
// are atomic; the operator settings document is a single JSON file
// with replace-on-write semantics.
package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edvin/opsdash/internal/model"
)

// Open opens (creating if needed) the embedded database at path and
// migrates the catalog and schedule tables.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&model.BackupRecord{}, &model.ScheduleConfig{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
