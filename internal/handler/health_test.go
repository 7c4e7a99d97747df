package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newMockDB returns a GORM DB backed by sqlmock with ping monitoring enabled.
// One ping is consumed by gorm.Open itself; pingErr configures the ping the
// Health handler issues.
func newMockDB(t *testing.T, pingErr error) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	mock.ExpectPing()
	if pingErr != nil {
		mock.ExpectPing().WillReturnError(pingErr)
	} else {
		mock.ExpectPing()
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func performHealthCheck(server *Server, startTime *time.Time) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	if startTime != nil {
		c.Set("serverStartTime", *startTime)
	}

	server.Health(c)

	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHealth_Success(t *testing.T) {
	t.Parallel()

	gormDB, mock := newMockDB(t, nil)
	server := &Server{DB: gormDB}

	start := time.Now().Add(-5 * time.Minute)
	w, body := performHealthCheck(server, &start)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.Contains(t, body, "timestamp")
	assert.NotEqual(t, "unknown", body["uptime"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth_DatabaseUnavailable(t *testing.T) {
	t.Parallel()

	gormDB, mock := newMockDB(t, sql.ErrConnDone)
	server := &Server{DB: gormDB}

	start := time.Now()
	w, body := performHealthCheck(server, &start)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "unavailable", body["database"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth_NoDatabase(t *testing.T) {
	t.Parallel()

	server := &Server{DB: nil}

	start := time.Now()
	w, body := performHealthCheck(server, &start)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestHealth_NoStartTime(t *testing.T) {
	t.Parallel()

	gormDB, mock := newMockDB(t, nil)
	server := &Server{DB: gormDB}

	w, body := performHealthCheck(server, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unknown", body["uptime"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
