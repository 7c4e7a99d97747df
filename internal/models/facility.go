package models

import (
	"time"

	"gorm.io/datatypes"
)

// Facility corresponds to the facilities table. Address is kept as a
// schemaless JSON payload because the address record format evolved over
// time; coordinate extraction tolerates both flat and nested shapes.
type Facility struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Address   datatypes.JSON `gorm:"type:json" json:"address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
