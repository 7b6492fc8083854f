package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"medica-backend/internal/models"
)

const reminderPollInterval = 1 * time.Hour

type reminderStore interface {
	ListDueReminders(ctx context.Context, day time.Time) ([]models.AppointmentReminder, error)
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error
}

type reminderMailer interface {
	SendAppointmentReminder(to string, a AppointmentEmail) error
}

// ReminderScheduler e-mails patients the day before their appointment.
type ReminderScheduler struct {
	appointments reminderStore
	email        reminderMailer
	stopChan     chan struct{}
}

func NewReminderScheduler(appointments reminderStore, email reminderMailer) *ReminderScheduler {
	return &ReminderScheduler{
		appointments: appointments,
		email:        email,
		stopChan:     make(chan struct{}),
	}
}

func (s *ReminderScheduler) Start() {
	if s.appointments == nil || s.email == nil {
		return
	}

	go s.loop()

	log.Printf("Appointment reminder scheduler started")
}

func (s *ReminderScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *ReminderScheduler) loop() {
	// Run on startup as well as by interval.
	s.sendReminders(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(reminderPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendReminders(context.Background(), time.Now().UTC())
		}
	}
}

// sendReminders mails every not-yet-reminded appointment falling on the day
// after now. It returns the number of reminders sent.
func (s *ReminderScheduler) sendReminders(ctx context.Context, now time.Time) int {
	day := reminderDay(now)

	due, err := s.appointments.ListDueReminders(ctx, day)
	if err != nil {
		log.Printf("appointment reminders: failed to list appointments for %s: %v", day.Format("2006-01-02"), err)
		return 0
	}

	sent := 0
	for _, rem := range due {
		err := s.email.SendAppointmentReminder(rem.Email, AppointmentEmail{
			PatientName: rem.FullName,
			DoctorName:  rem.DoctorName,
			Date:        rem.Date,
			TimeSlot:    rem.TimeSlot,
		})
		if err != nil {
			log.Printf("appointment reminders: failed to send to %s: %v", rem.Email, err)
			continue
		}

		if err := s.appointments.MarkReminded(ctx, rem.AppointmentID, now); err != nil {
			log.Printf("appointment reminders: failed to mark %s reminded: %v", rem.AppointmentID, err)
		}
		sent++
	}
	return sent
}

// reminderDay is the calendar day (UTC) after now.
func reminderDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
