// Package services implements the attendance state machines and the
// background reminder scheduler.
package services

import (
	"strings"
	"time"

	app_errors "crewclock/internal/errors"
	"crewclock/internal/geofence"
	"crewclock/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TimeEntryService owns the per-employee time-entry state machine:
// active -> completed -> edited -> approved | rejected.
type TimeEntryService struct {
	db *gorm.DB
}

// NewTimeEntryService creates a new TimeEntryService.
func NewTimeEntryService(db *gorm.DB) *TimeEntryService {
	return &TimeEntryService{db: db}
}

// ClockInParams describes a clock-in request. Location carries the raw
// device location payload as supplied; it is resolved against the facility
// geofence when one is configured.
type ClockInParams struct {
	UserID          uint
	FacilityID      *uint
	JobID           *uint
	ContractID      *uint
	Location        []byte
	ManagerOverride bool
	OverrideReason  string
	Notes           string
}

// ClockIn creates a new active entry for the user. It rejects a second
// concurrent clock-in with Conflict and enforces the facility geofence when
// both a geofence and a device reading resolve.
func (s *TimeEntryService) ClockIn(params ClockInParams) (*models.TimeEntry, *app_errors.APIError) {
	var activeCount int64
	err := s.db.Model(&models.TimeEntry{}).
		Where("user_id = ? AND status = ?", params.UserID, models.TimeEntryStatusActive).
		Count(&activeCount).Error
	if err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	if activeCount > 0 {
		return nil, app_errors.NewConflictError("user already has an active time entry")
	}

	entry := &models.TimeEntry{
		PublicID:   uuid.NewString(),
		UserID:     params.UserID,
		JobID:      params.JobID,
		ContractID: params.ContractID,
		FacilityID: params.FacilityID,
		ClockIn:    time.Now(),
		Status:     models.TimeEntryStatusActive,
		Notes:      params.Notes,
		CreatedVia: models.CreatedViaClock,
	}

	if apiErr := s.applyGeofence(entry, params); apiErr != nil {
		return nil, apiErr
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return entry, nil
}

// applyGeofence resolves the facility geofence and the device reading and
// enforces the radius. A facility without a configured geofence, or a request
// without a resolvable reading, passes through unchecked.
func (s *TimeEntryService) applyGeofence(entry *models.TimeEntry, params ClockInParams) *app_errors.APIError {
	if params.FacilityID == nil {
		return nil
	}

	var facility models.Facility
	if err := s.db.First(&facility, *params.FacilityID).Error; err != nil {
		if dbErr := app_errors.ParseDBError(err); dbErr.Code == app_errors.ErrResourceNotFound.Code {
			return app_errors.NewNotFoundError("facility not found")
		}
		return app_errors.ParseDBError(err)
	}

	fence := geofence.ResolveFacilityGeofence(facility.Address)
	if fence == nil {
		return nil
	}

	reading := geofence.ResolveDeviceReading(params.Location)
	if reading == nil {
		return nil
	}

	entry.LocationPayload = params.Location

	receipt, err := geofence.Enforce(*reading, *fence)
	entry.GeofenceDistM = &receipt.DistanceMeters
	if err == nil {
		return nil
	}

	if !params.ManagerOverride {
		logrus.WithFields(logrus.Fields{
			"event":                 "geofence_violation",
			"user_id":               params.UserID,
			"facility_id":           *params.FacilityID,
			"distance_meters":       receipt.DistanceMeters,
			"allowed_radius_meters": receipt.AllowedRadiusMeters,
		}).Warn("Clock-in rejected outside geofence")
		return app_errors.NewOutsideGeofenceError(receipt.DistanceMeters, receipt.AllowedRadiusMeters)
	}

	if strings.TrimSpace(params.OverrideReason) == "" {
		return app_errors.NewValidationError("override reason is required for a manager override")
	}

	entry.OverrideReason = params.OverrideReason
	logrus.WithFields(logrus.Fields{
		"event":                 "geofence_override",
		"user_id":               params.UserID,
		"facility_id":           *params.FacilityID,
		"distance_meters":       receipt.DistanceMeters,
		"allowed_radius_meters": receipt.AllowedRadiusMeters,
		"override_reason":       params.OverrideReason,
	}).Warn("Clock-in outside geofence allowed by manager override")
	return nil
}

// ClockOut sets the clock-out instant on an active entry and completes it.
func (s *TimeEntryService) ClockOut(entryID uint, notes string) (*models.TimeEntry, *app_errors.APIError) {
	entry, apiErr := s.getEntry(entryID)
	if apiErr != nil {
		return nil, apiErr
	}
	if entry.Status != models.TimeEntryStatusActive {
		return nil, app_errors.NewInvalidStateError("clock-out requires an active entry, entry is " + entry.Status)
	}

	now := time.Now()
	entry.ClockOut = &now
	entry.Status = models.TimeEntryStatusCompleted
	if notes != "" {
		entry.Notes = notes
	}

	if err := s.db.Save(entry).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return entry, nil
}

// ManualEntryParams describes an entry created with both instants supplied.
type ManualEntryParams struct {
	UserID       uint
	JobID        *uint
	ContractID   *uint
	FacilityID   *uint
	ClockIn      time.Time
	ClockOut     time.Time
	BreakMinutes int
	Notes        string
}

// ManualEntry creates an entry directly in the completed state; it never
// passes through active.
func (s *TimeEntryService) ManualEntry(params ManualEntryParams) (*models.TimeEntry, *app_errors.APIError) {
	if apiErr := validateInterval(params.ClockIn, params.ClockOut, params.BreakMinutes); apiErr != nil {
		return nil, apiErr
	}

	clockOut := params.ClockOut
	entry := &models.TimeEntry{
		PublicID:     uuid.NewString(),
		UserID:       params.UserID,
		JobID:        params.JobID,
		ContractID:   params.ContractID,
		FacilityID:   params.FacilityID,
		ClockIn:      params.ClockIn,
		ClockOut:     &clockOut,
		BreakMinutes: params.BreakMinutes,
		Notes:        params.Notes,
		Status:       models.TimeEntryStatusCompleted,
		CreatedVia:   models.CreatedViaManual,
	}

	if err := s.db.Create(entry).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return entry, nil
}

// EditParams lists the fields a correction may change. Nil fields are left
// untouched.
type EditParams struct {
	ClockIn      *time.Time
	ClockOut     *time.Time
	BreakMinutes *int
	Notes        *string
	JobID        *uint
	FacilityID   *uint
}

// Edit applies a correction to a completed or edited entry. The reason is
// mandatory and kept for audit; the clock interval is re-validated after the
// changes are applied.
func (s *TimeEntryService) Edit(entryID uint, params EditParams, editReason string) (*models.TimeEntry, *app_errors.APIError) {
	if strings.TrimSpace(editReason) == "" {
		return nil, app_errors.NewValidationError("edit reason is required")
	}

	entry, apiErr := s.getEntry(entryID)
	if apiErr != nil {
		return nil, apiErr
	}
	if entry.Status != models.TimeEntryStatusCompleted && entry.Status != models.TimeEntryStatusEdited {
		return nil, app_errors.NewInvalidStateError("edit requires a completed or edited entry, entry is " + entry.Status)
	}

	if params.ClockIn != nil {
		entry.ClockIn = *params.ClockIn
	}
	if params.ClockOut != nil {
		entry.ClockOut = params.ClockOut
	}
	if params.BreakMinutes != nil {
		entry.BreakMinutes = *params.BreakMinutes
	}
	if params.Notes != nil {
		entry.Notes = *params.Notes
	}
	if params.JobID != nil {
		entry.JobID = params.JobID
	}
	if params.FacilityID != nil {
		entry.FacilityID = params.FacilityID
	}

	if entry.ClockOut == nil {
		return nil, app_errors.NewValidationError("edited entry must retain a clock-out instant")
	}
	if apiErr := validateInterval(entry.ClockIn, *entry.ClockOut, entry.BreakMinutes); apiErr != nil {
		return nil, apiErr
	}

	entry.Status = models.TimeEntryStatusEdited
	entry.EditReason = editReason

	if err := s.db.Save(entry).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return entry, nil
}

// Approve moves a completed or edited entry to the terminal approved state.
func (s *TimeEntryService) Approve(entryID uint) (*models.TimeEntry, *app_errors.APIError) {
	return s.review(entryID, models.TimeEntryStatusApproved, "")
}

// Reject moves a completed or edited entry to the terminal rejected state.
func (s *TimeEntryService) Reject(entryID uint, notes string) (*models.TimeEntry, *app_errors.APIError) {
	return s.review(entryID, models.TimeEntryStatusRejected, notes)
}

func (s *TimeEntryService) review(entryID uint, target, notes string) (*models.TimeEntry, *app_errors.APIError) {
	entry, apiErr := s.getEntry(entryID)
	if apiErr != nil {
		return nil, apiErr
	}
	if entry.Status != models.TimeEntryStatusCompleted && entry.Status != models.TimeEntryStatusEdited {
		return nil, app_errors.NewInvalidStateError("review requires a completed or edited entry, entry is " + entry.Status)
	}

	entry.Status = target
	if notes != "" {
		entry.Notes = notes
	}

	if err := s.db.Save(entry).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return entry, nil
}

// ListFilter narrows the entry listing.
type ListFilter struct {
	UserID uint
	Status string
	From   *time.Time
	To     *time.Time
}

// ListQuery builds the filtered entry query, newest first. Handlers feed it
// to response.Paginate.
func (s *TimeEntryService) ListQuery(filter ListFilter) *gorm.DB {
	query := s.db.Model(&models.TimeEntry{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("clock_in >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("clock_in < ?", *filter.To)
	}
	return query.Order("clock_in DESC")
}

// List returns entries matching the filter, newest first.
func (s *TimeEntryService) List(filter ListFilter) ([]models.TimeEntry, *app_errors.APIError) {
	var entries []models.TimeEntry
	if err := s.ListQuery(filter).Find(&entries).Error; err != nil {
		return nil, app_errors.ParseDBError(err)
	}
	return entries, nil
}

func (s *TimeEntryService) getEntry(entryID uint) (*models.TimeEntry, *app_errors.APIError) {
	var entry models.TimeEntry
	if err := s.db.First(&entry, entryID).Error; err != nil {
		if dbErr := app_errors.ParseDBError(err); dbErr.Code == app_errors.ErrResourceNotFound.Code {
			return nil, app_errors.NewNotFoundError("time entry not found")
		}
		return nil, app_errors.ParseDBError(err)
	}
	return &entry, nil
}

func validateInterval(clockIn, clockOut time.Time, breakMinutes int) *app_errors.APIError {
	if !clockOut.After(clockIn) {
		return app_errors.NewValidationError("clock-out must be after clock-in")
	}
	if breakMinutes < 0 {
		return app_errors.NewValidationError("break minutes cannot be negative")
	}
	if elapsed := int(clockOut.Sub(clockIn).Minutes()); breakMinutes > elapsed {
		return app_errors.NewValidationError("break minutes cannot exceed the elapsed time")
	}
	return nil
}
