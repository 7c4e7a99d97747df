package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crewclock/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newAttendanceRouter wires the attendance routes without middleware so the
// handlers can be exercised directly.
func newAttendanceRouter(server *Server) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	attendance := api.Group("/attendance")
	{
		attendance.POST("/clock-in", server.ClockIn)
		attendance.POST("/clock-out", server.ClockOut)
		attendance.POST("/manual", server.ManualEntry)
		attendance.PUT("/:id", server.EditEntry)
		attendance.POST("/:id/approve", server.ApproveEntry)
		attendance.POST("/:id/reject", server.RejectEntry)
		attendance.GET("", server.ListEntries)
	}
	return r
}

func doJSON(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Code int            `json:"code"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestClockInEndpoint(t *testing.T) {
	server := setupTestServer(t)
	r := newAttendanceRouter(server)

	w := doJSON(r, "POST", "/api/attendance/clock-in", gin.H{"user_id": 7})
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, models.TimeEntryStatusActive, data["status"])
	assert.NotEmpty(t, data["public_id"])

	// Second clock-in for the same user conflicts
	w = doJSON(r, "POST", "/api/attendance/clock-in", gin.H{"user_id": 7})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestClockInEndpoint_InvalidJSON(t *testing.T) {
	server := setupTestServer(t)
	r := newAttendanceRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/attendance/clock-in", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_JSON")
}

func TestClockInEndpoint_OutsideGeofence(t *testing.T) {
	server := setupTestServer(t)
	r := newAttendanceRouter(server)

	facility := &models.Facility{
		Name:    "Harbor Point Offices",
		Address: []byte(`{"street":"12 Pier Rd","latitude":47.6097,"longitude":-122.3331,"radius_meters":150}`),
	}
	require.NoError(t, server.DB.Create(facility).Error)

	w := doJSON(r, "POST", "/api/attendance/clock-in", gin.H{
		"user_id":     7,
		"facility_id": facility.ID,
		"location":    gin.H{"latitude": 47.6197, "longitude": -122.3331},
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "OUTSIDE_GEOFENCE", resp.Code)
	assert.Equal(t, float64(150), resp.Details["allowed_radius_meters"])
}

func TestClockOutEndpoint(t *testing.T) {
	server := setupTestServer(t)
	r := newAttendanceRouter(server)

	w := doJSON(r, "POST", "/api/attendance/clock-in", gin.H{"user_id": 7})
	require.Equal(t, http.StatusCreated, w.Code)
	entryID := decodeData(t, w)["id"]

	w = doJSON(r, "POST", "/api/attendance/clock-out", gin.H{"entry_id": entryID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TimeEntryStatusCompleted, decodeData(t, w)["status"])

	// Clocking out twice is an invalid state
	w = doJSON(r, "POST", "/api/attendance/clock-out", gin.H{"entry_id": entryID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestManualEntryEndpoint(t *testing.T) {
	server := setupTestServer(t)
	r := newAttendanceRouter(server)

	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	w := doJSON(r, "POST", "/api/attendance/manual", gin.H{
		"user_id":       7,
		"clock_in":      clockIn,
		"clock_out":     clockIn.Add(8 * time.Hour),
		"break_minutes": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, models.TimeEntryStatusCompleted, data["status"])
	assert.Equal(t, models.CreatedViaManual, data["created_via"])

	// Inverted interval fails validation
	w = doJSON(r, "POST", "/api/attendance/manual", gin.H{
		"user_id":   7,
		"clock_in":  clockIn,
		"clock_out": clockIn.Add(-time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
}

func TestEditEntryEndpoint(t *testing.T) {
	server := setupTestServer(t)
	r := newAttendanceRouter(server)

	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	w := doJSON(r, "POST", "/api/attendance/manual", gin.H{
		"user_id":   7,
		"clock_in":  clockIn,
		"clock_out": clockIn.Add(8 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	entryID := decodeData(t, w)["id"]

	path := fmt.Sprintf("/api/attendance/%v", entryID)

	// Missing edit reason is rejected by binding
	w = doJSON(r, "PUT", path, gin.H{"break_minutes": 15})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "PUT", path, gin.H{"break_minutes": 15, "edit_reason": "forgot lunch break"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, models.TimeEntryStatusEdited, data["status"])
	assert.Equal(t, float64(15), data["break_minutes"])
}

func TestEntryReviewEndpoints(t *testing.T) {
	server := setupTestServer(t)
	r := newAttendanceRouter(server)

	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	w := doJSON(r, "POST", "/api/attendance/manual", gin.H{
		"user_id":   7,
		"clock_in":  clockIn,
		"clock_out": clockIn.Add(8 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	entryID := decodeData(t, w)["id"]

	w = doJSON(r, "POST", fmt.Sprintf("/api/attendance/%v/approve", entryID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TimeEntryStatusApproved, decodeData(t, w)["status"])

	// Terminal entries cannot be re-reviewed
	w = doJSON(r, "POST", fmt.Sprintf("/api/attendance/%v/reject", entryID), gin.H{"notes": "wrong shift"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown entry
	w = doJSON(r, "POST", "/api/attendance/99999/approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Non-numeric id
	w = doJSON(r, "POST", "/api/attendance/abc/approve", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEntriesEndpoint(t *testing.T) {
	server := setupTestServer(t)
	r := newAttendanceRouter(server)

	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, userID := range []uint{1, 1, 2} {
		w := doJSON(r, "POST", "/api/attendance/manual", gin.H{
			"user_id":   userID,
			"clock_in":  clockIn,
			"clock_out": clockIn.Add(time.Hour),
		})
		require.Equal(t, http.StatusCreated, w.Code)
		clockIn = clockIn.Add(24 * time.Hour)
	}

	w := doJSON(r, "GET", "/api/attendance?user_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Items      []map[string]any `json:"items"`
			Pagination struct {
				TotalItems int64 `json:"total_items"`
			} `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.Pagination.TotalItems)
	assert.Len(t, resp.Data.Items, 2)
}
