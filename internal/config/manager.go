// Package config provides environment-backed configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"crewclock/internal/types"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Scheduler interval bounds in milliseconds. Values below the floor (or
// unparsable values) are replaced with the default rather than failing startup.
const (
	SchedulerIntervalFloorMs   = 60000
	SchedulerIntervalDefaultMs = 900000
)

// Manager implements types.ConfigManager backed by environment variables.
type Manager struct {
	serverConfig    types.ServerConfig
	authConfig      types.AuthConfig
	corsConfig      types.CORSConfig
	logConfig       types.LogConfig
	databaseConfig  types.DatabaseConfig
	schedulerConfig types.SchedulerConfig
	redisDSN        string
}

// NewManager creates a new configuration manager, loading .env if present.
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	manager := &Manager{}
	if err := manager.ReloadConfig(); err != nil {
		return nil, err
	}

	return manager, nil
}

// ReloadConfig re-reads all configuration from the environment and validates it.
func (m *Manager) ReloadConfig() error {
	m.serverConfig = types.ServerConfig{
		Port:                    parseInteger(os.Getenv("PORT"), 3001),
		Host:                    getEnvOrDefault("HOST", "0.0.0.0"),
		ReadTimeout:             parseInteger(os.Getenv("SERVER_READ_TIMEOUT"), 60),
		WriteTimeout:            parseInteger(os.Getenv("SERVER_WRITE_TIMEOUT"), 60),
		IdleTimeout:             parseInteger(os.Getenv("SERVER_IDLE_TIMEOUT"), 120),
		GracefulShutdownTimeout: parseInteger(os.Getenv("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT"), 30),
	}

	m.authConfig = types.AuthConfig{
		Key: os.Getenv("AUTH_KEY"),
	}

	m.corsConfig = types.CORSConfig{
		Enabled:          parseBoolean(os.Getenv("ENABLE_CORS"), true),
		AllowedOrigins:   parseArray(os.Getenv("ALLOWED_ORIGINS"), []string{"*"}),
		AllowedMethods:   parseArray(os.Getenv("ALLOWED_METHODS"), []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders:   parseArray(os.Getenv("ALLOWED_HEADERS"), []string{"*"}),
		AllowCredentials: parseBoolean(os.Getenv("ALLOW_CREDENTIALS"), false),
	}

	m.logConfig = types.LogConfig{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		Format:     getEnvOrDefault("LOG_FORMAT", "text"),
		EnableFile: parseBoolean(os.Getenv("LOG_ENABLE_FILE"), false),
		FilePath:   getEnvOrDefault("LOG_FILE_PATH", "./data/logs/app.log"),
	}

	m.databaseConfig = types.DatabaseConfig{
		DSN: os.Getenv("DATABASE_DSN"),
	}

	m.redisDSN = os.Getenv("REDIS_DSN")
	m.schedulerConfig = resolveSchedulerConfig()

	return m.Validate()
}

// resolveSchedulerConfig resolves the reminder scheduler configuration once.
// The scheduler is disabled by default and always disabled under test mode.
func resolveSchedulerConfig() types.SchedulerConfig {
	enabled := parseBoolean(os.Getenv("ENABLE_REMINDER_SCHEDULER"), false)
	if os.Getenv("GIN_MODE") == "test" {
		enabled = false
	}

	intervalMs := SchedulerIntervalDefaultMs
	if raw := os.Getenv("REMINDER_INTERVAL_MS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			logrus.WithField("reminder_interval_ms", raw).
				Warnf("Invalid reminder interval, using default %dms", SchedulerIntervalDefaultMs)
		case parsed < SchedulerIntervalFloorMs:
			logrus.WithField("reminder_interval_ms", parsed).
				Warnf("Reminder interval below %dms floor, using default %dms", SchedulerIntervalFloorMs, SchedulerIntervalDefaultMs)
		default:
			intervalMs = parsed
		}
	}

	return types.SchedulerConfig{
		Enabled:                  enabled,
		IntervalMs:               intervalMs,
		AppointmentReminderHours: parseInteger(os.Getenv("APPOINTMENT_REMINDER_HOURS"), 24),
		ContractExpiryDays:       parseInteger(os.Getenv("CONTRACT_EXPIRY_DAYS"), 30),
	}
}

// Validate checks the configuration for fatal misconfiguration.
func (m *Manager) Validate() error {
	if m.serverConfig.Port < 1 || m.serverConfig.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", m.serverConfig.Port)
	}
	if m.authConfig.Key == "" {
		return fmt.Errorf("AUTH_KEY is required")
	}
	if m.schedulerConfig.AppointmentReminderHours < 1 {
		return fmt.Errorf("appointment reminder hours cannot be less than 1")
	}
	if m.schedulerConfig.ContractExpiryDays < 1 {
		return fmt.Errorf("contract expiry days cannot be less than 1")
	}
	return nil
}

// GetAuthConfig returns authentication configuration
func (m *Manager) GetAuthConfig() types.AuthConfig {
	return m.authConfig
}

// GetCORSConfig returns CORS configuration
func (m *Manager) GetCORSConfig() types.CORSConfig {
	return m.corsConfig
}

// GetLogConfig returns logging configuration
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.logConfig
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	return m.databaseConfig
}

// GetRedisDSN returns the Redis connection string, empty when unset.
func (m *Manager) GetRedisDSN() string {
	return m.redisDSN
}

// GetEffectiveServerConfig returns server configuration
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig {
	return m.serverConfig
}

// GetSchedulerConfig returns the resolved reminder scheduler configuration
func (m *Manager) GetSchedulerConfig() types.SchedulerConfig {
	return m.schedulerConfig
}

// DisplayServerConfig logs a startup summary of the effective configuration.
func (m *Manager) DisplayServerConfig() {
	logrus.Info("")
	logrus.Info("=== Server Configuration ===")
	logrus.Infof("  Listen: %s:%d", m.serverConfig.Host, m.serverConfig.Port)
	logrus.Infof("  CORS: %v", m.corsConfig.Enabled)
	logrus.Infof("  Log level: %s", m.logConfig.Level)
	if m.redisDSN != "" {
		logrus.Info("  Store: redis")
	} else {
		logrus.Info("  Store: memory")
	}
	if m.schedulerConfig.Enabled {
		logrus.Infof("  Reminder scheduler: enabled, interval %dms", m.schedulerConfig.IntervalMs)
	} else {
		logrus.Info("  Reminder scheduler: disabled")
	}
	logrus.Info("============================")
	logrus.Info("")
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInteger parses an integer from a string with a default value
func parseInteger(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseBoolean parses a boolean from a string with a default value
func parseBoolean(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseArray parses a comma-separated string into a slice
func parseArray(value string, defaultValue []string) []string {
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
