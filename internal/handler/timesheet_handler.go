package handler

import (
	"strconv"
	"time"

	app_errors "crewclock/internal/errors"
	"crewclock/internal/models"
	"crewclock/internal/response"

	"github.com/gin-gonic/gin"
)

// GenerateTimesheetRequest is the payload for POST /api/timesheets/generate.
// The period is half-open: entries with clock_in in [period_start, period_end)
// are aggregated.
type GenerateTimesheetRequest struct {
	UserID      uint      `json:"user_id" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
}

// GenerateTimesheet handles POST /api/timesheets/generate
func (s *Server) GenerateTimesheet(c *gin.Context) {
	var req GenerateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	timesheet, apiErr := s.TimesheetService.Generate(req.UserID, req.PeriodStart, req.PeriodEnd)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Created(c, timesheet)
}

// SubmitTimesheet handles POST /api/timesheets/:id/submit
func (s *Server) SubmitTimesheet(c *gin.Context) {
	timesheetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	timesheet, apiErr := s.TimesheetService.Submit(timesheetID)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Success(c, timesheet)
}

// ApproveTimesheet handles POST /api/timesheets/:id/approve
func (s *Server) ApproveTimesheet(c *gin.Context) {
	timesheetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	timesheet, apiErr := s.TimesheetService.Approve(timesheetID)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Success(c, timesheet)
}

// RejectTimesheet handles POST /api/timesheets/:id/reject
func (s *Server) RejectTimesheet(c *gin.Context) {
	timesheetID, ok := parseIDParam(c)
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

	timesheet, apiErr := s.TimesheetService.Reject(timesheetID, req.Notes)
	if apiErr != nil {
		response.Error(c, apiErr)
		return
	}
	response.Success(c, timesheet)
}

// ListTimesheets handles GET /api/timesheets
func (s *Server) ListTimesheets(c *gin.Context) {
	var userID uint
	if parsed, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil {
		userID = uint(parsed)
	}

	var timesheets []models.Timesheet
	paginated, err := response.Paginate(c, s.TimesheetService.ListQuery(userID), &timesheets)
	if err != nil {
		response.Error(c, app_errors.ParseDBError(err))
		return
	}
	response.Success(c, paginated)
}
