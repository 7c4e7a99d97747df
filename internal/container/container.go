// Package container assembles the dependency injection container.
package container

import (
	"crewclock/internal/app"
	"crewclock/internal/config"
	"crewclock/internal/db"
	"crewclock/internal/handler"
	"crewclock/internal/router"
	"crewclock/internal/services"
	"crewclock/internal/store"

	"go.uber.org/dig"
)

// BuildContainer registers every provider and returns the assembled container.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		// Infrastructure
		config.NewManager,
		store.NewStore,
		db.NewDB,

		// Domain services
		services.NewTimeEntryService,
		services.NewTimesheetService,
		services.NewLogNotifier,
		services.NewReminderJobs,
		services.NewReminderScheduler,

		// HTTP layer
		handler.NewServer,
		router.NewRouter,

		// Application
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
