package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"crewclock/internal/types"

	"github.com/sirupsen/logrus"
)

// ReminderScheduler periodically triggers the reminder jobs. It is a
// process-wide singleton with single-flight execution: a cycle invoked while
// the previous one is still in flight is skipped entirely, not queued. The
// running flag is the de facto backpressure mechanism — a stuck job extends
// its cycle's window and later ticks are skipped until it resolves.
type ReminderScheduler struct {
	cfg      types.SchedulerConfig
	jobs     *ReminderJobs
	running  atomic.Bool
	started  atomic.Bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewReminderScheduler creates a new ReminderScheduler. The configuration is
// resolved once by the config manager; it is not re-read per cycle.
func NewReminderScheduler(configManager types.ConfigManager, jobs *ReminderJobs) *ReminderScheduler {
	return &ReminderScheduler{
		cfg:      configManager.GetSchedulerConfig(),
		jobs:     jobs,
		stopChan: make(chan struct{}),
	}
}

// Start begins the reminder loop. It is a no-op when the scheduler is
// disabled and idempotent when already started. The first cycle fires
// immediately; subsequent cycles follow the resolved interval.
func (s *ReminderScheduler) Start() {
	if !s.cfg.Enabled {
		logrus.Debug("Reminder scheduler disabled, not starting")
		return
	}
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	logrus.Infof("Starting reminder scheduler with %dms interval", s.cfg.IntervalMs)
	s.wg.Add(1)
	go s.runLoop()
}

// Stop stops the scheduler, respecting the context for shutdown timeout.
func (s *ReminderScheduler) Stop(ctx context.Context) {
	if !s.started.Load() {
		return
	}
	close(s.stopChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("ReminderScheduler stopped gracefully.")
	case <-ctx.Done():
		logrus.Warn("ReminderScheduler stop timed out.")
	}
}

func (s *ReminderScheduler) runLoop() {
	defer s.wg.Done()

	s.runCycle()

	ticker := time.NewTicker(time.Duration(s.cfg.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runCycle()
		case <-s.stopChan:
			return
		}
	}
}

// runCycle executes one reminder cycle. The two jobs run concurrently; the
// cycle waits for both before clearing the running flag. A job failure is
// logged and contained — it never terminates the timer.
func (s *ReminderScheduler) runCycle() {
	if !s.running.CompareAndSwap(false, true) {
		logrus.WithField("event", "reminder_cycle_skipped").
			Info("Previous reminder cycle still in flight, skipping")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	logrus.WithField("event", "reminder_cycle_start").Debug("Reminder cycle starting")

	var wg sync.WaitGroup
	runJob := func(name string, job func(context.Context) (int, error)) {
		defer wg.Done()
		count, err := job(context.Background())
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"event": "reminder_job_failed",
				"job":   name,
			}).Error("Reminder job failed")
			return
		}
		logrus.WithFields(logrus.Fields{
			"job":  name,
			"sent": count,
		}).Debug("Reminder job finished")
	}

	wg.Add(2)
	go runJob("appointment_reminders", s.jobs.SendAppointmentReminders)
	go runJob("contract_expiry_reminders", s.jobs.SendContractExpiryReminders)
	wg.Wait()

	logrus.WithFields(logrus.Fields{
		"event":    "reminder_cycle_done",
		"duration": time.Since(start).String(),
	}).Debug("Reminder cycle finished")
}
