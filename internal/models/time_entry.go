package models

import (
	"time"

	"gorm.io/datatypes"
)

// Time entry status constants
const (
	TimeEntryStatusActive    = "active"
	TimeEntryStatusCompleted = "completed"
	TimeEntryStatusEdited    = "edited"
	TimeEntryStatusApproved  = "approved"
	TimeEntryStatusRejected  = "rejected"
)

// Time entry origin constants
const (
	CreatedViaClock  = "clock"
	CreatedViaManual = "manual"
)

// TimeEntry corresponds to the time_entries table. Entries are never
// physically deleted by this service; archival is an external concern.
type TimeEntry struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID     string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"public_id"`
	UserID       uint       `gorm:"not null;index:idx_time_entries_user_status,priority:1" json:"user_id"`
	JobID        *uint      `gorm:"index" json:"job_id,omitempty"`
	ContractID   *uint      `gorm:"index" json:"contract_id,omitempty"`
	FacilityID   *uint      `gorm:"index" json:"facility_id,omitempty"`
	ClockIn      time.Time  `gorm:"not null;index" json:"clock_in"`
	ClockOut     *time.Time `json:"clock_out,omitempty"`
	BreakMinutes int        `gorm:"not null;default:0" json:"break_minutes"`
	Notes        string     `gorm:"type:varchar(1024)" json:"notes,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;index:idx_time_entries_user_status,priority:2" json:"status"`
	EditReason   string     `gorm:"type:varchar(512)" json:"edit_reason,omitempty"`
	CreatedVia   string     `gorm:"type:varchar(10);not null" json:"created_via"`

	// Geofence audit trail. OverrideReason is set only when a manager override
	// let a clock-in proceed despite a geofence violation.
	OverrideReason  string         `gorm:"type:varchar(512)" json:"override_reason,omitempty"`
	GeofenceDistM   *float64       `json:"geofence_distance_m,omitempty"`
	LocationPayload datatypes.JSON `gorm:"type:json" json:"location_payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the entry is in a terminal review state.
func (e *TimeEntry) IsTerminal() bool {
	return e.Status == TimeEntryStatusApproved || e.Status == TimeEntryStatusRejected
}

// WorkedMinutes returns clockOut - clockIn - breaks in whole minutes.
// Returns 0 and false when the entry has no clock-out yet.
func (e *TimeEntry) WorkedMinutes() (int, bool) {
	if e.ClockOut == nil {
		return 0, false
	}
	return int(e.ClockOut.Sub(e.ClockIn).Minutes()) - e.BreakMinutes, true
}
