package config

import "crewclock/internal/types"

// MockConfig is a test double implementing types.ConfigManager.
type MockConfig struct {
	AuthKeyValue     string
	SchedulerEnabled bool
}

// GetAuthConfig returns mock auth configuration
func (m *MockConfig) GetAuthConfig() types.AuthConfig {
	return types.AuthConfig{
		Key: m.AuthKeyValue,
	}
}

// GetCORSConfig returns mock CORS configuration
func (m *MockConfig) GetCORSConfig() types.CORSConfig {
	return types.CORSConfig{
		Enabled:          false,
		AllowedOrigins:   []string{},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}
}

// GetLogConfig returns mock log configuration
func (m *MockConfig) GetLogConfig() types.LogConfig {
	return types.LogConfig{
		Level:      "info",
		Format:     "text",
		EnableFile: false,
		FilePath:   "./data/logs/app.log",
	}
}

// GetDatabaseConfig returns mock database configuration
func (m *MockConfig) GetDatabaseConfig() types.DatabaseConfig {
	return types.DatabaseConfig{
		DSN: ":memory:",
	}
}

// GetRedisDSN returns mock Redis DSN
func (m *MockConfig) GetRedisDSN() string {
	return ""
}

// GetEffectiveServerConfig returns mock server configuration
func (m *MockConfig) GetEffectiveServerConfig() types.ServerConfig {
	return types.ServerConfig{
		Port:                    3001,
		Host:                    "0.0.0.0",
		ReadTimeout:             60,
		WriteTimeout:            60,
		IdleTimeout:             120,
		GracefulShutdownTimeout: 10,
	}
}

// GetSchedulerConfig returns mock scheduler configuration
func (m *MockConfig) GetSchedulerConfig() types.SchedulerConfig {
	return types.SchedulerConfig{
		Enabled:                  m.SchedulerEnabled,
		IntervalMs:               SchedulerIntervalDefaultMs,
		AppointmentReminderHours: 24,
		ContractExpiryDays:       30,
	}
}

// Validate always succeeds for the mock
func (m *MockConfig) Validate() error {
	return nil
}

// DisplayServerConfig is a no-op for the mock
func (m *MockConfig) DisplayServerConfig() {}

// ReloadConfig is a no-op for the mock
func (m *MockConfig) ReloadConfig() error {
	return nil
}
