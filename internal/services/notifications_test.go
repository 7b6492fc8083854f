package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"medica-backend/internal/models"
)

type stubReminderStore struct {
	due      []models.AppointmentReminder
	listErr  error
	askedDay time.Time
	reminded []uuid.UUID
}

func (s *stubReminderStore) ListDueReminders(ctx context.Context, day time.Time) ([]models.AppointmentReminder, error) {
	s.askedDay = day
	return s.due, s.listErr
}

func (s *stubReminderStore) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.reminded = append(s.reminded, id)
	return nil
}

type stubMailer struct {
	sentTo []string
	failTo string
}

func (m *stubMailer) SendAppointmentReminder(to string, a AppointmentEmail) error {
	if to == m.failTo {
		return errors.New("smtp down")
	}
	m.sentTo = append(m.sentTo, to)
	return nil
}

func TestReminderDay(t *testing.T) {
	now := time.Date(2026, 2, 28, 23, 30, 0, 0, time.UTC)
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := reminderDay(now); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestSendReminders(t *testing.T) {
	now := time.Date(2026, 2, 16, 10, 0, 0, 0, time.UTC)
	okID, failID := uuid.New(), uuid.New()

	store := &stubReminderStore{due: []models.AppointmentReminder{
		{AppointmentID: okID, Email: "ram@example.com", FullName: "Ram", DoctorName: "Dr. Yadav", TimeSlot: "09:00 AM"},
		{AppointmentID: failID, Email: "sita@example.com", FullName: "Sita", DoctorName: "Dr. Lisa", TimeSlot: "10:30 AM"},
	}}
	mailer := &stubMailer{failTo: "sita@example.com"}

	sent := NewReminderScheduler(store, mailer).sendReminders(context.Background(), now)

	if sent != 1 {
		t.Fatalf("expected 1 reminder sent, got %d", sent)
	}
	if !store.askedDay.Equal(time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected reminders for the next day, asked for %s", store.askedDay)
	}
	if len(store.reminded) != 1 || store.reminded[0] != okID {
		t.Fatalf("expected only the delivered reminder to be marked, got %v", store.reminded)
	}
}

func TestSendReminders_ListFailure(t *testing.T) {
	store := &stubReminderStore{listErr: errors.New("db down")}
	mailer := &stubMailer{}

	if sent := NewReminderScheduler(store, mailer).sendReminders(context.Background(), time.Now()); sent != 0 {
		t.Fatalf("expected nothing sent, got %d", sent)
	}
	if len(mailer.sentTo) != 0 {
		t.Fatalf("expected no mail on list failure")
	}
}
