package services

import (
	"context"
	"testing"
	"time"

	"crewclock/internal/models"
	"crewclock/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, cfg types.SchedulerConfig, jobs *ReminderJobs) *ReminderScheduler {
	t.Helper()
	return &ReminderScheduler{
		cfg:      cfg,
		jobs:     jobs,
		stopChan: make(chan struct{}),
	}
}

func TestSchedulerDisabledIsNoop(t *testing.T) {
	scheduler := newTestScheduler(t, types.SchedulerConfig{Enabled: false}, nil)

	scheduler.Start()
	assert.False(t, scheduler.started.Load())

	// Stop on a never-started scheduler returns immediately
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	scheduler.Stop(ctx)
}

func TestSchedulerRunsBothJobs(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	jobs, _ := newTestJobs(t, db, notifier)

	seedAppointment(t, db, time.Now().Add(2*time.Hour), models.AppointmentStatusScheduled)
	seedContract(t, db, time.Now().AddDate(0, 0, 10), models.ContractStatusActive)

	scheduler := newTestScheduler(t, jobs.cfg, jobs)
	scheduler.runCycle()

	assert.Len(t, notifier.appointmentIDs, 1)
	assert.Len(t, notifier.contractIDs, 1)
	assert.False(t, scheduler.running.Load(), "running flag must clear after the cycle")
}

func TestSchedulerSingleFlight(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	jobs, _ := newTestJobs(t, db, notifier)

	seedAppointment(t, db, time.Now().Add(2*time.Hour), models.AppointmentStatusScheduled)

	scheduler := newTestScheduler(t, jobs.cfg, jobs)

	// Simulate a cycle still in flight: the overlapping invocation must
	// return without touching the jobs.
	scheduler.running.Store(true)
	scheduler.runCycle()
	assert.Empty(t, notifier.appointmentIDs)
	assert.True(t, scheduler.running.Load(), "a skipped cycle must not clear the in-flight flag")

	scheduler.running.Store(false)
	scheduler.runCycle()
	assert.Len(t, notifier.appointmentIDs, 1)
}

func TestSchedulerStartStop(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	jobs, _ := newTestJobs(t, db, notifier)

	cfg := jobs.cfg
	cfg.IntervalMs = 60000 // first cycle fires immediately, no tick during the test
	scheduler := newTestScheduler(t, cfg, jobs)

	scheduler.Start()
	require.True(t, scheduler.started.Load())
	scheduler.Start() // idempotent

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	scheduler.Stop(ctx)

	assert.False(t, scheduler.running.Load())
}
