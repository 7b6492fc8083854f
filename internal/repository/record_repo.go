package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medica-backend/internal/models"
)

// RecordRepo reads and writes a patient's clinical records: medical history,
// uploaded reports and allergies.
type RecordRepo struct {
	pool *pgxpool.Pool
}

func NewRecordRepo(pool *pgxpool.Pool) *RecordRepo {
	return &RecordRepo{pool: pool}
}

func (r *RecordRepo) ListHistory(ctx context.Context, medicalID string) ([]models.MedicalHistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, medical_id, condition, notes, created_at FROM medical_history
		WHERE medical_id = $1 ORDER BY created_at DESC`, medicalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.MedicalHistoryEntry{}
	for rows.Next() {
		var e models.MedicalHistoryEntry
		if err := rows.Scan(&e.ID, &e.MedicalID, &e.Condition, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *RecordRepo) ListReports(ctx context.Context, medicalID string) ([]models.Report, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, medical_id, title, file_url, status, created_at FROM reports
		WHERE medical_id = $1 ORDER BY created_at DESC`, medicalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.MedicalID, &rep.Title, &rep.FileURL, &rep.Status, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *RecordRepo) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	rep := &models.Report{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, medical_id, title, file_url, extracted_text, status, created_at FROM reports WHERE id = $1`, id,
	).Scan(&rep.ID, &rep.MedicalID, &rep.Title, &rep.FileURL, &rep.ExtractedText, &rep.Status, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *RecordRepo) SetReportStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE reports SET status = $1 WHERE id = $2", status, id)
	return err
}

func (r *RecordRepo) SaveReportText(ctx context.Context, id uuid.UUID, text string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE reports SET extracted_text = $1, status = 'extracted' WHERE id = $2", text, id)
	return err
}

func (r *RecordRepo) ListAllergies(ctx context.Context, medicalID string) ([]models.Allergy, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, medical_id, allergen, category, reaction, severity, created_at FROM allergies
		WHERE medical_id = $1 ORDER BY created_at DESC`, medicalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	allergies := []models.Allergy{}
	for rows.Next() {
		var a models.Allergy
		if err := rows.Scan(&a.ID, &a.MedicalID, &a.Allergen, &a.Category, &a.Reaction, &a.Severity, &a.CreatedAt); err != nil {
			return nil, err
		}
		allergies = append(allergies, a)
	}
	return allergies, rows.Err()
}

func (r *RecordRepo) CreateAllergy(ctx context.Context, a *models.Allergy) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx,
		`INSERT INTO allergies (id, medical_id, allergen, category, reaction, severity)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		a.ID, a.MedicalID, a.Allergen, a.Category, a.Reaction, a.Severity,
	).Scan(&a.CreatedAt)
}

// DeleteAllergy removes an allergy belonging to medicalID and reports whether a row matched.
func (r *RecordRepo) DeleteAllergy(ctx context.Context, medicalID string, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM allergies WHERE id = $1 AND medical_id = $2", id, medicalID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
