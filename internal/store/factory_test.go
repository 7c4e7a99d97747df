package store

import (
	"testing"

	"crewclock/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_MemoryFallback(t *testing.T) {
	t.Setenv("AUTH_KEY", "test-auth-key-minimum-16-chars")
	t.Setenv("REDIS_DSN", "")

	configManager, err := config.NewManager()
	require.NoError(t, err)

	s, err := NewStore(configManager)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	assert.IsType(t, &MemoryStore{}, s)
}

func TestNewStore_InvalidRedisDSN(t *testing.T) {
	t.Setenv("AUTH_KEY", "test-auth-key-minimum-16-chars")
	t.Setenv("REDIS_DSN", "://not-a-url")

	configManager, err := config.NewManager()
	require.NoError(t, err)

	_, err = NewStore(configManager)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid REDIS_DSN")
}
