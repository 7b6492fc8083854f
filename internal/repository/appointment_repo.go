package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"medica-backend/internal/models"
)

// ErrSlotTaken is returned when the doctor already has a live booking for the slot.
var ErrSlotTaken = errors.New("appointment slot already booked")

type AppointmentRepo struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{pool: pool}
}

func (r *AppointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	a.ID = uuid.New()
	a.Status = "requested"

	err := r.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, user_id, doctor_id, full_name, phone, reason, date, time_slot, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at`,
		a.ID, a.UserID, a.DoctorID, a.FullName, a.Phone, a.Reason, a.Date, a.TimeSlot, a.Status,
	).Scan(&a.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlotTaken
	}
	return err
}

const appointmentSelect = `SELECT a.id, a.user_id, a.doctor_id, d.name, s.title, a.full_name, a.phone, a.reason,
		a.date, a.time_slot, a.status, a.created_at, a.cancelled_at
	FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN specialties s ON s.key = d.specialty_key`

func scanAppointment(row interface{ Scan(...interface{}) error }, a *models.Appointment) error {
	return row.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.DoctorName, &a.Specialty, &a.FullName, &a.Phone,
		&a.Reason, &a.Date, &a.TimeSlot, &a.Status, &a.CreatedAt, &a.CancelledAt)
}

func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error) {
	rows, err := r.pool.Query(ctx, appointmentSelect+` WHERE a.user_id = $1 ORDER BY a.date DESC, a.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := scanAppointment(rows, &a); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	a := &models.Appointment{}
	if err := scanAppointment(r.pool.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id), a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel marks a requested appointment as cancelled. It reports false when the
// appointment does not exist, belongs to someone else, or is already cancelled.
func (r *AppointmentRepo) Cancel(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = 'cancelled', cancelled_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status <> 'cancelled'`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListDueReminders returns live appointments on day that have not been reminded yet.
func (r *AppointmentRepo) ListDueReminders(ctx context.Context, day time.Time) ([]models.AppointmentReminder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, u.email, a.full_name, d.name, a.date, a.time_slot
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.date = $1 AND a.status = 'requested' AND a.reminded_at IS NULL AND u.is_active`,
		day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []models.AppointmentReminder{}
	for rows.Next() {
		var rem models.AppointmentReminder
		if err := rows.Scan(&rem.AppointmentID, &rem.Email, &rem.FullName, &rem.DoctorName, &rem.Date, &rem.TimeSlot); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *AppointmentRepo) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, "UPDATE appointments SET reminded_at = $1 WHERE id = $2", at, id)
	return err
}
