package models

import (
	"time"

	"gorm.io/datatypes"
)

// Timesheet status constants
const (
	TimesheetStatusDraft     = "draft"
	TimesheetStatusSubmitted = "submitted"
	TimesheetStatusApproved  = "approved"
	TimesheetStatusRejected  = "rejected"
)

// Timesheet corresponds to the timesheets table. The composite unique index
// backs the one-timesheet-per-(user, period) invariant; a rejected timesheet
// is regenerated in place rather than inserted as a sibling row.
type Timesheet struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID    string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"public_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_timesheets_user_period,priority:1" json:"user_id"`
	PeriodStart time.Time `gorm:"not null;uniqueIndex:idx_timesheets_user_period,priority:2" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null;uniqueIndex:idx_timesheets_user_period,priority:3" json:"period_end"`
	Status      string    `gorm:"type:varchar(20);not null;index" json:"status"`

	// Aggregation results over the entries whose clockIn falls in
	// [PeriodStart, PeriodEnd). EntryIDs preserves the selection order.
	TotalMinutes   int            `gorm:"not null;default:0" json:"total_minutes"`
	EntryCount     int            `gorm:"not null;default:0" json:"entry_count"`
	ClampedEntries int            `gorm:"not null;default:0" json:"clamped_entries"`
	EntryIDs       datatypes.JSON `gorm:"type:json" json:"entry_ids,omitempty"`

	Notes     string    `gorm:"type:varchar(1024)" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
