package models

import "time"

// Appointment status constants
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusCompleted = "completed"
)

// Contract status constants
const (
	ContractStatusActive     = "active"
	ContractStatusExpired    = "expired"
	ContractStatusTerminated = "terminated"
)

// Appointment is a scheduled facility visit picked up by the appointment
// reminder job when it starts within the configured reminder window.
type Appointment struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FacilityID  uint      `gorm:"not null;index" json:"facility_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"type:varchar(255)" json:"title,omitempty"`
	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`
	Status      string    `gorm:"type:varchar(20);not null;default:scheduled;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Contract is a service agreement picked up by the contract-expiry reminder
// job when it ends within the configured expiry window.
type Contract struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FacilityID  uint      `gorm:"not null;index" json:"facility_id"`
	AccountName string    `gorm:"type:varchar(255)" json:"account_name,omitempty"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null;index" json:"end_date"`
	Status      string    `gorm:"type:varchar(20);not null;default:active;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
