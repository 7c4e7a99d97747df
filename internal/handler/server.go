// Package handler contains the HTTP handlers for the attendance API.
package handler

import (
	"crewclock/internal/services"
	"crewclock/internal/types"

	"go.uber.org/dig"
	"gorm.io/gorm"
)

// Server holds the dependencies shared by all HTTP handlers.
type Server struct {
	DB               *gorm.DB
	config           types.ConfigManager
	TimeEntryService *services.TimeEntryService
	TimesheetService *services.TimesheetService
}

// ServerParams defines the dependencies for the Server.
type ServerParams struct {
	dig.In
	DB               *gorm.DB
	Config           types.ConfigManager
	TimeEntryService *services.TimeEntryService
	TimesheetService *services.TimesheetService
}

// NewServer is the constructor for Server, with dependencies injected by dig.
func NewServer(params ServerParams) *Server {
	return &Server{
		DB:               params.DB,
		config:           params.Config,
		TimeEntryService: params.TimeEntryService,
		TimesheetService: params.TimesheetService,
	}
}
