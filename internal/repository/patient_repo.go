package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"medica-backend/internal/models"
)

type PatientRepo struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) *PatientRepo {
	return &PatientRepo{pool: pool}
}

const patientColumns = `medical_id, full_name, gender, date_of_birth, blood_group, phone, address, created_at`

// List returns up to limit patients ordered by medical_id. A non-empty q
// matches medical_id or full_name case-insensitively.
func (r *PatientRepo) List(ctx context.Context, q string, limit int) ([]models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	args := []interface{}{}

	if strings.TrimSpace(q) != "" {
		query += ` WHERE medical_id ILIKE $1 OR full_name ILIKE $1`
		args = append(args, containsPattern(q))
	}
	args = append(args, limit)
	query += ` ORDER BY medical_id LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.MedicalID, &p.FullName, &p.Gender, &p.DateOfBirth, &p.BloodGroup,
			&p.Phone, &p.Address, &p.CreatedAt); err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *PatientRepo) GetByMedicalID(ctx context.Context, medicalID string) (*models.Patient, error) {
	p := &models.Patient{}
	err := r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE medical_id = $1`, medicalID).Scan(
		&p.MedicalID, &p.FullName, &p.Gender, &p.DateOfBirth, &p.BloodGroup, &p.Phone, &p.Address, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
