package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"crewclock/internal/config"
	"crewclock/internal/handler"
	"crewclock/internal/models"
	"crewclock/internal/services"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAuthKey = "router-test-key"

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Facility{},
		&models.TimeEntry{},
		&models.Timesheet{},
	))

	serverHandler := &handler.Server{
		DB:               db,
		TimeEntryService: services.NewTimeEntryService(db),
		TimesheetService: services.NewTimesheetService(db),
	}
	return NewRouter(serverHandler, &config.MockConfig{AuthKeyValue: testAuthKey})
}

func TestHealthIsPublic(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/attendance", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/attendance", nil)
	req.Header.Set("Authorization", "Bearer "+testAuthKey)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouteTable(t *testing.T) {
	r := setupRouter(t)

	// Every route responds; none falls through to the 404 handler.
	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/attendance/clock-in"},
		{"POST", "/api/attendance/clock-out"},
		{"POST", "/api/attendance/manual"},
		{"PUT", "/api/attendance/1"},
		{"POST", "/api/attendance/1/approve"},
		{"POST", "/api/attendance/1/reject"},
		{"GET", "/api/attendance"},
		{"POST", "/api/timesheets/generate"},
		{"POST", "/api/timesheets/1/submit"},
		{"POST", "/api/timesheets/1/approve"},
		{"POST", "/api/timesheets/1/reject"},
		{"GET", "/api/timesheets"},
	}

	// Handlers may reject these calls (missing body, unknown ids), but the
	// fallback NoRoute/NoMethod handlers must never answer them.
	for _, route := range routes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(route.method, route.path, nil)
		req.Header.Set("Authorization", "Bearer "+testAuthKey)
		r.ServeHTTP(w, req)
		assert.NotContains(t, w.Body.String(), `"error":"Not Found"`, "%s %s should be routed", route.method, route.path)
		assert.NotEqual(t, http.StatusMethodNotAllowed, w.Code, "%s %s should be routed", route.method, route.path)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
