package db

import (
	"testing"

	"crewclock/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_SQLiteMemory(t *testing.T) {
	t.Setenv("AUTH_KEY", "test-auth-key-minimum-16-chars")
	t.Setenv("DATABASE_DSN", ":memory:")

	configManager, err := config.NewManager()
	require.NoError(t, err)

	database, err := NewDB(configManager)
	require.NoError(t, err)
	require.NotNil(t, database)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	assert.NoError(t, sqlDB.Ping())
}

func TestNewDB_MissingDSN(t *testing.T) {
	t.Setenv("AUTH_KEY", "test-auth-key-minimum-16-chars")
	t.Setenv("DATABASE_DSN", "")

	configManager, err := config.NewManager()
	require.NoError(t, err)

	_, err = NewDB(configManager)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN is not configured")
}
