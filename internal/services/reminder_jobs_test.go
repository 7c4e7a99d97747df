package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"crewclock/internal/models"
	"crewclock/internal/store"
	"crewclock/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu             sync.Mutex
	appointmentIDs []uint
	contractIDs    []uint
	failNext       bool
}

func (n *recordingNotifier) NotifyAppointment(_ context.Context, appointment *models.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext {
		n.failNext = false
		return errors.New("smtp unavailable")
	}
	n.appointmentIDs = append(n.appointmentIDs, appointment.ID)
	return nil
}

func (n *recordingNotifier) NotifyContractExpiry(_ context.Context, contract *models.Contract) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext {
		n.failNext = false
		return errors.New("smtp unavailable")
	}
	n.contractIDs = append(n.contractIDs, contract.ID)
	return nil
}

func newTestJobs(t *testing.T, db *gorm.DB, notifier Notifier) (*ReminderJobs, *store.MemoryStore) {
	t.Helper()
	storage := store.NewMemoryStore()
	t.Cleanup(func() { storage.Close() })
	jobs := &ReminderJobs{
		db:       db,
		storage:  storage,
		notifier: notifier,
		cfg: types.SchedulerConfig{
			Enabled:                  true,
			IntervalMs:               60000,
			AppointmentReminderHours: 24,
			ContractExpiryDays:       30,
		},
	}
	return jobs, storage
}

func seedAppointment(t *testing.T, db *gorm.DB, scheduledAt time.Time, status string) *models.Appointment {
	t.Helper()
	appointment := &models.Appointment{
		FacilityID:  1,
		UserID:      1,
		Title:       "deep clean walkthrough",
		ScheduledAt: scheduledAt,
		Status:      status,
	}
	require.NoError(t, db.Create(appointment).Error)
	return appointment
}

func seedContract(t *testing.T, db *gorm.DB, endDate time.Time, status string) *models.Contract {
	t.Helper()
	contract := &models.Contract{
		FacilityID:  1,
		AccountName: "Northside Medical",
		StartDate:   endDate.AddDate(-1, 0, 0),
		EndDate:     endDate,
		Status:      status,
	}
	require.NoError(t, db.Create(contract).Error)
	return contract
}

func TestSendAppointmentReminders_WindowSelection(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	jobs, _ := newTestJobs(t, db, notifier)

	now := time.Now()
	inWindow := seedAppointment(t, db, now.Add(2*time.Hour), models.AppointmentStatusScheduled)
	seedAppointment(t, db, now.Add(48*time.Hour), models.AppointmentStatusScheduled) // beyond window
	seedAppointment(t, db, now.Add(-time.Hour), models.AppointmentStatusScheduled)   // already started
	seedAppointment(t, db, now.Add(2*time.Hour), models.AppointmentStatusCancelled)  // wrong status

	sent, err := jobs.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []uint{inWindow.ID}, notifier.appointmentIDs)
}

func TestSendAppointmentReminders_Dedupe(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	jobs, _ := newTestJobs(t, db, notifier)

	seedAppointment(t, db, time.Now().Add(2*time.Hour), models.AppointmentStatusScheduled)

	sent, err := jobs.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	// Second run within the same window sends nothing
	sent, err = jobs.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, notifier.appointmentIDs, 1)
}

func TestSendAppointmentReminders_FailureReleasesClaim(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{failNext: true}
	jobs, storage := newTestJobs(t, db, notifier)

	appointment := seedAppointment(t, db, time.Now().Add(2*time.Hour), models.AppointmentStatusScheduled)

	sent, err := jobs.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	key := fmt.Sprintf("reminder:appointment:%d", appointment.ID)
	exists, err := storage.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists, "failed dispatch must release its claim")

	// Next cycle retries and succeeds
	sent, err = jobs.SendAppointmentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestSendContractExpiryReminders(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	jobs, _ := newTestJobs(t, db, notifier)

	now := time.Now()
	expiring := seedContract(t, db, now.AddDate(0, 0, 10), models.ContractStatusActive)
	seedContract(t, db, now.AddDate(0, 0, 90), models.ContractStatusActive)     // beyond window
	seedContract(t, db, now.AddDate(0, 0, -1), models.ContractStatusActive)     // already ended
	seedContract(t, db, now.AddDate(0, 0, 10), models.ContractStatusTerminated) // wrong status

	sent, err := jobs.SendContractExpiryReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []uint{expiring.ID}, notifier.contractIDs)

	sent, err = jobs.SendContractExpiryReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
