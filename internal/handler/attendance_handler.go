package handler

import (
	"encoding/json"
	"strconv"
	"time"

	app_errors "crewclock/internal/errors"
	"crewclock/internal/models"
	"crewclock/internal/response"
	"crewclock/internal/services"

	"github.com/gin-gonic/gin"
)

// ClockInRequest is the payload for POST /api/attendance/clock-in. Location
// is kept raw; its shape varies by client and is resolved server-side.
type ClockInRequest struct {
	UserID          uint            `json:"user_id" binding:"required"`
	FacilityID      *uint           `json:"facility_id"`
	JobID           *uint           `json:"job_id"`
	ContractID      *uint           `json:"contract_id"`
	Location        json.RawMessage `json:"location"`
	ManagerOverride bool            `json:"manager_override"`
	OverrideReason  string          `json:"override_reason"`
	Notes           string          `json:"notes"`
}

// ClockIn handles POST /api/attendance/clock-in
func (s *Server) ClockIn(c *gin.Context) {
	var req ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	entry, apiErr := s.TimeEntryService.ClockIn(services.ClockInParams{
		UserID:          req.UserID,
		FacilityID:      req.FacilityID,
		JobID:           req.JobID,
		ContractID:      req.ContractID,
		Location:        req.Location,
		ManagerOverride: req.ManagerOverride,
		OverrideReason:  req.OverrideReason,
		Notes:           req.Notes,
	})
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Created(c, entry)
}

// ClockOutRequest is the payload for POST /api/attendance/clock-out.
type ClockOutRequest struct {
	EntryID uint   `json:"entry_id" binding:"required"`
	Notes   string `json:"notes"`
}

// ClockOut handles POST /api/attendance/clock-out
func (s *Server) ClockOut(c *gin.Context) {
	var req ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	entry, apiErr := s.TimeEntryService.ClockOut(req.EntryID, req.Notes)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Success(c, entry)
}

// ManualEntryRequest is the payload for POST /api/attendance/manual.
type ManualEntryRequest struct {
	UserID       uint      `json:"user_id" binding:"required"`
	FacilityID   *uint     `json:"facility_id"`
	JobID        *uint     `json:"job_id"`
	ContractID   *uint     `json:"contract_id"`
	ClockIn      time.Time `json:"clock_in" binding:"required"`
	ClockOut     time.Time `json:"clock_out" binding:"required"`
	BreakMinutes int       `json:"break_minutes"`
	Notes        string    `json:"notes"`
}

// ManualEntry handles POST /api/attendance/manual
func (s *Server) ManualEntry(c *gin.Context) {
	var req ManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	entry, apiErr := s.TimeEntryService.ManualEntry(services.ManualEntryParams{
		UserID:       req.UserID,
		FacilityID:   req.FacilityID,
		JobID:        req.JobID,
		ContractID:   req.ContractID,
		ClockIn:      req.ClockIn,
		ClockOut:     req.ClockOut,
		BreakMinutes: req.BreakMinutes,
		Notes:        req.Notes,
	})
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Created(c, entry)
}

// EditEntryRequest is the payload for PUT /api/attendance/:id. Nil fields are
// left untouched; EditReason is mandatory.
type EditEntryRequest struct {
	ClockIn      *time.Time `json:"clock_in"`
	ClockOut     *time.Time `json:"clock_out"`
	BreakMinutes *int       `json:"break_minutes"`
	Notes        *string    `json:"notes"`
	JobID        *uint      `json:"job_id"`
	FacilityID   *uint      `json:"facility_id"`
	EditReason   string     `json:"edit_reason" binding:"required"`
}

// EditEntry handles PUT /api/attendance/:id
func (s *Server) EditEntry(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req EditEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	entry, apiErr := s.TimeEntryService.Edit(entryID, services.EditParams{
		ClockIn:      req.ClockIn,
		ClockOut:     req.ClockOut,
		BreakMinutes: req.BreakMinutes,
		Notes:        req.Notes,
		JobID:        req.JobID,
		FacilityID:   req.FacilityID,
	}, req.EditReason)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Success(c, entry)
}

// ApproveEntry handles POST /api/attendance/:id/approve
func (s *Server) ApproveEntry(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	entry, apiErr := s.TimeEntryService.Approve(entryID)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Success(c, entry)
}

// ReviewNotesRequest carries optional reviewer notes for a reject decision.
type ReviewNotesRequest struct {
	Notes string `json:"notes"`
}

// RejectEntry handles POST /api/attendance/:id/reject
func (s *Server) RejectEntry(c *gin.Context) {
	entryID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ReviewNotesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
			return
		}
	}

	entry, apiErr := s.TimeEntryService.Reject(entryID, req.Notes)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Success(c, entry)
}

// ListEntries handles GET /api/attendance
func (s *Server) ListEntries(c *gin.Context) {
	filter := services.ListFilter{
		Status: c.Query("status"),
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil {
		filter.UserID = uint(userID)
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = &to
	}

	var entries []models.TimeEntry
	paginated, err := response.Paginate(c, s.TimeEntryService.ListQuery(filter), &entries)
	if err != nil {
		response.Error(c, app_errors.ParseDBError(err))
		return
	}
	response.Success(c, paginated)
}

// parseIDParam extracts the numeric :id path parameter. On failure it writes
// the error response and returns ok=false.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrBadRequest, "invalid id parameter"))
		return 0, false
	}
	return uint(id), true
}
