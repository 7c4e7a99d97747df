package services

import (
	"encoding/json"
	"time"

	app_errors "crewclock/internal/errors"
	"crewclock/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TimesheetService groups finalized time entries into payroll periods and
// drives the timesheet approval workflow:
// draft -> submitted -> approved | rejected.
type TimesheetService struct {
	db *gorm.DB
}

// NewTimesheetService creates a new TimesheetService.
func NewTimesheetService(db *gorm.DB) *TimesheetService {
	return &TimesheetService{db: db}
}

// timesheetSourceStatuses are the entry states that contribute to a timesheet.
var timesheetSourceStatuses = []string{
	models.TimeEntryStatusCompleted,
	models.TimeEntryStatusEdited,
	models.TimeEntryStatusApproved,
}

// Generate builds a draft timesheet over [periodStart, periodEnd). A
// non-rejected timesheet already covering the period is a Conflict; a
// rejected one is superseded in place as a fresh draft.
func (s *TimesheetService) Generate(userID uint, periodStart, periodEnd time.Time) (*models.Timesheet, *app_errors.APIError) {
	if !periodEnd.After(periodStart) {
		return nil, app_errors.NewValidationError("period end must be after period start")
	}

	var existing models.Timesheet
	lookupErr := s.db.Where("user_id = ? AND period_start = ? AND period_end = ?", userID, periodStart, periodEnd).
		First(&existing).Error
	regenerating := false
	switch {
	case lookupErr == nil:
		if existing.Status != models.TimesheetStatusRejected {
			return nil, app_errors.NewConflictError("a timesheet already exists for this period")
		}
		regenerating = true
	case app_errors.ParseDBError(lookupErr).Code != app_errors.ErrResourceNotFound.Code:
		return nil, app_errors.ParseDBError(lookupErr)
	}

	var entries []models.TimeEntry
	err := s.db.Where("user_id = ? AND status IN ? AND clock_in >= ? AND clock_in < ?",
		userID, timesheetSourceStatuses, periodStart, periodEnd).
		Order("clock_in ASC").
		Find(&entries).Error
	if err != nil {
		return nil, app_errors.ParseDBError(err)
	}

	totalMinutes := 0
	clamped := 0
	entryIDs := make([]uint, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		entryIDs = append(entryIDs, entry.ID)

		worked, ok := entry.WorkedMinutes()
		if !ok {
			continue
		}
		if worked < 0 {
			// Breaks exceeding the elapsed time can only come from an edit;
			// clamp and flag instead of letting the total go negative.
			logrus.WithFields(logrus.Fields{
				"event":          "timesheet_entry_clamped",
				"time_entry_id":  entry.ID,
				"worked_minutes": worked,
			}).Warn("Negative entry total clamped to zero")
			clamped++
			worked = 0
		}
		totalMinutes += worked
	}

	idsJSON, jsonErr := json.Marshal(entryIDs)
	if jsonErr != nil {
		return nil, app_errors.NewAPIError(app_errors.ErrInternalServer, jsonErr.Error())
	}

	timesheet := &models.Timesheet{
		PublicID:    uuid.NewString(),
		UserID:      userID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	if regenerating {
		timesheet = &existing
	}
	timesheet.Status = models.TimesheetStatusDraft
	timesheet.TotalMinutes = totalMinutes
	timesheet.EntryCount = len(entries)
	timesheet.ClampedEntries = clamped
	timesheet.EntryIDs = idsJSON
	timesheet.Notes = ""

	if err := s.db.Save(timesheet).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return timesheet, nil
}

// Submit moves a draft timesheet to submitted.
func (s *TimesheetService) Submit(timesheetID uint) (*models.Timesheet, *app_errors.APIError) {
	return s.transition(timesheetID, models.TimesheetStatusDraft, models.TimesheetStatusSubmitted, "")
}

// Approve moves a submitted timesheet to the terminal approved state.
func (s *TimesheetService) Approve(timesheetID uint) (*models.Timesheet, *app_errors.APIError) {
	return s.transition(timesheetID, models.TimesheetStatusSubmitted, models.TimesheetStatusApproved, "")
}

// Reject moves a submitted timesheet to rejected. A rejected timesheet may
// later be regenerated for the same period.
func (s *TimesheetService) Reject(timesheetID uint, notes string) (*models.Timesheet, *app_errors.APIError) {
	return s.transition(timesheetID, models.TimesheetStatusSubmitted, models.TimesheetStatusRejected, notes)
}

func (s *TimesheetService) transition(timesheetID uint, from, to, notes string) (*models.Timesheet, *app_errors.APIError) {
	var timesheet models.Timesheet
	if err := s.db.First(&timesheet, timesheetID).Error; err != nil {
		if dbErr := app_errors.ParseDBError(err); dbErr.Code == app_errors.ErrResourceNotFound.Code {
			return nil, app_errors.NewNotFoundError("timesheet not found")
		}
		return nil, app_errors.ParseDBError(err)
	}
	if timesheet.Status != from {
		return nil, app_errors.NewInvalidStateError("transition requires a " + from + " timesheet, timesheet is " + timesheet.Status)
	}

	timesheet.Status = to
	if notes != "" {
		timesheet.Notes = notes
	}

	if err := s.db.Save(&timesheet).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return &timesheet, nil
}

// ListQuery builds the timesheet query, newest period first. A zero userID
// covers all users.
func (s *TimesheetService) ListQuery(userID uint) *gorm.DB {
	query := s.db.Model(&models.Timesheet{})
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	return query.Order("period_start DESC")
}

// List returns the user's timesheets, newest period first. A zero userID
// returns all timesheets.
func (s *TimesheetService) List(userID uint) ([]models.Timesheet, *app_errors.APIError) {
	var timesheets []models.Timesheet
	if err := s.ListQuery(userID).Find(&timesheets).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return timesheets, nil
}
