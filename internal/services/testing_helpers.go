package services

import (
	"testing"

	"crewclock/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the attendance schema.
// Note: glebarez/sqlite is a pure Go implementation and doesn't require CGO.
func setupTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(tb, err)

	// Limit SQLite connections to avoid separate in-memory databases
	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	tb.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&models.Facility{},
		&models.TimeEntry{},
		&models.Timesheet{},
		&models.Appointment{},
		&models.Contract{},
	)
	require.NoError(tb, err)

	return db
}
