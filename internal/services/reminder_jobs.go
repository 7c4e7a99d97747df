package services

import (
	"context"
	"fmt"
	"time"

	"crewclock/internal/models"
	"crewclock/internal/store"
	"crewclock/internal/types"
	"crewclock/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier dispatches reminder notifications. Delivery (email, SMS, push) is
// an external collaborator; the jobs only count successful dispatches.
type Notifier interface {
	NotifyAppointment(ctx context.Context, appointment *models.Appointment) error
	NotifyContractExpiry(ctx context.Context, contract *models.Contract) error
}

// LogNotifier is the default Notifier: it records each reminder in the
// structured log. Deployments wire a real dispatcher in its place.
type LogNotifier struct{}

// NewLogNotifier creates the default log-backed notifier.
func NewLogNotifier() Notifier {
	return &LogNotifier{}
}

// NotifyAppointment logs an appointment reminder.
func (n *LogNotifier) NotifyAppointment(_ context.Context, appointment *models.Appointment) error {
	logrus.WithFields(logrus.Fields{
		"event":          "appointment_reminder",
		"appointment_id": appointment.ID,
		"user_id":        appointment.UserID,
		"scheduled_at":   appointment.ScheduledAt.Format(time.RFC3339),
	}).Info("Appointment reminder dispatched")
	return nil
}

// NotifyContractExpiry logs a contract-expiry reminder.
func (n *LogNotifier) NotifyContractExpiry(_ context.Context, contract *models.Contract) error {
	logrus.WithFields(logrus.Fields{
		"event":       "contract_expiry_reminder",
		"contract_id": contract.ID,
		"account":     contract.AccountName,
		"end_date":    contract.EndDate.Format(time.RFC3339),
	}).Info("Contract expiry reminder dispatched")
	return nil
}

// ReminderJobs holds the two reminder jobs the scheduler drives each cycle.
// Sent reminders are recorded in the store with a TTL covering their window
// so an overlapping window or a restarted process does not re-notify.
type ReminderJobs struct {
	db       *gorm.DB
	storage  store.Store
	notifier Notifier
	cfg      types.SchedulerConfig
}

// NewReminderJobs creates a new ReminderJobs.
func NewReminderJobs(db *gorm.DB, storage store.Store, notifier Notifier, configManager types.ConfigManager) *ReminderJobs {
	return &ReminderJobs{
		db:       db,
		storage:  storage,
		notifier: notifier,
		cfg:      configManager.GetSchedulerConfig(),
	}
}

// SendAppointmentReminders notifies for scheduled appointments starting
// within the reminder window. Returns the number of notifications sent.
func (j *ReminderJobs) SendAppointmentReminders(ctx context.Context) (int, error) {
	window := time.Duration(j.cfg.AppointmentReminderHours) * time.Hour
	now := time.Now()

	var appointments []models.Appointment
	err := j.db.WithContext(ctx).
		Where("status = ? AND scheduled_at > ? AND scheduled_at <= ?",
			models.AppointmentStatusScheduled, now, now.Add(window)).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	if err != nil {
		if utils.IsTransientDBError(err) {
			logrus.WithError(err).Warn("Appointment reminder query hit a transient DB error")
			return 0, nil
		}
		return 0, err
	}

	sent := 0
	for i := range appointments {
		appointment := &appointments[i]
		key := fmt.Sprintf("reminder:appointment:%d", appointment.ID)
		if !j.claim(key, window) {
			continue
		}
		if err := j.notifier.NotifyAppointment(ctx, appointment); err != nil {
			logrus.WithError(err).WithField("appointment_id", appointment.ID).
				Error("Failed to dispatch appointment reminder")
			// Release the claim so the next cycle retries the dispatch.
			if delErr := j.storage.Delete(key); delErr != nil {
				logrus.WithError(delErr).WithField("key", key).Warn("Failed to release reminder claim")
			}
			continue
		}
		sent++
	}
	return sent, nil
}

// SendContractExpiryReminders notifies for active contracts ending within
// the expiry window. Returns the number of notifications sent.
func (j *ReminderJobs) SendContractExpiryReminders(ctx context.Context) (int, error) {
	window := time.Duration(j.cfg.ContractExpiryDays) * 24 * time.Hour
	now := time.Now()

	var contracts []models.Contract
	err := j.db.WithContext(ctx).
		Where("status = ? AND end_date > ? AND end_date <= ?",
			models.ContractStatusActive, now, now.Add(window)).
		Order("end_date ASC").
		Find(&contracts).Error
	if err != nil {
		if utils.IsTransientDBError(err) {
			logrus.WithError(err).Warn("Contract expiry query hit a transient DB error")
			return 0, nil
		}
		return 0, err
	}

	sent := 0
	for i := range contracts {
		contract := &contracts[i]
		key := fmt.Sprintf("reminder:contract:%d", contract.ID)
		if !j.claim(key, window) {
			continue
		}
		if err := j.notifier.NotifyContractExpiry(ctx, contract); err != nil {
			logrus.WithError(err).WithField("contract_id", contract.ID).
				Error("Failed to dispatch contract expiry reminder")
			if delErr := j.storage.Delete(key); delErr != nil {
				logrus.WithError(delErr).WithField("key", key).Warn("Failed to release reminder claim")
			}
			continue
		}
		sent++
	}
	return sent, nil
}

// claim marks the reminder as sent for the duration of its window. A store
// failure counts as claimed=false so the reminder is retried next cycle
// rather than double-sent.
func (j *ReminderJobs) claim(key string, ttl time.Duration) bool {
	ok, err := j.storage.SetNX(key, []byte("1"), ttl)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Reminder dedupe store unavailable, skipping")
		return false
	}
	return ok
}
