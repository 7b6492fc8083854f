package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"medica-backend/internal/models"
)

// DirectoryRepo serves the read-only hospital catalog seeded by migrations.
type DirectoryRepo struct {
	pool *pgxpool.Pool
}

func NewDirectoryRepo(pool *pgxpool.Pool) *DirectoryRepo {
	return &DirectoryRepo{pool: pool}
}

func (r *DirectoryRepo) ListSpecialties(ctx context.Context) ([]models.Specialty, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, title, emoji FROM specialties ORDER BY sort_order, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specialties := []models.Specialty{}
	for rows.Next() {
		var s models.Specialty
		if err := rows.Scan(&s.Key, &s.Title, &s.Emoji); err != nil {
			return nil, err
		}
		specialties = append(specialties, s)
	}
	return specialties, rows.Err()
}

const doctorSelect = `SELECT d.id, d.name, d.specialty_key, s.title, d.rating::float8,
		d.about, d.education, d.focus, d.languages, d.experience, d.availability
	FROM doctors d JOIN specialties s ON s.key = d.specialty_key`

// ListDoctors returns all doctors, or those of one specialty when specialty is set.
func (r *DirectoryRepo) ListDoctors(ctx context.Context, specialty string) ([]models.Doctor, error) {
	query := doctorSelect + ` WHERE ($1 = '' OR d.specialty_key = $1) ORDER BY s.sort_order, d.sort_order`

	rows, err := r.pool.Query(ctx, query, strings.ToLower(strings.TrimSpace(specialty)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := []models.Doctor{}
	for rows.Next() {
		var d models.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.SpecialtyKey, &d.SpecialtyLabel, &d.Rating,
			&d.About, &d.Education, &d.Focus, &d.Languages, &d.Experience, &d.Availability); err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (r *DirectoryRepo) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	d := &models.Doctor{}
	err := r.pool.QueryRow(ctx, doctorSelect+` WHERE d.id = $1`, id).Scan(
		&d.ID, &d.Name, &d.SpecialtyKey, &d.SpecialtyLabel, &d.Rating,
		&d.About, &d.Education, &d.Focus, &d.Languages, &d.Experience, &d.Availability,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DirectoryRepo) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, hint, emoji FROM departments ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := []models.Department{}
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Hint, &d.Emoji); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *DirectoryRepo) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	d := &models.Department{}
	err := r.pool.QueryRow(ctx, `SELECT id, name, hint, emoji FROM departments WHERE id = $1`, id).Scan(
		&d.ID, &d.Name, &d.Hint, &d.Emoji,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DirectoryRepo) ListEmergencyContacts(ctx context.Context, q string) ([]models.EmergencyContact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, subtitle, phone FROM emergency_contacts
		WHERE name ILIKE $1 OR subtitle ILIKE $1 OR phone ILIKE $1
		ORDER BY id`, containsPattern(q))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.EmergencyContact{}
	for rows.Next() {
		var c models.EmergencyContact
		if err := rows.Scan(&c.ID, &c.Name, &c.Subtitle, &c.Phone); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *DirectoryRepo) ListPharmacies(ctx context.Context, q string) ([]models.Pharmacy, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, location FROM pharmacies
		WHERE name ILIKE $1 OR location ILIKE $1
		ORDER BY id`, containsPattern(q))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pharmacies := []models.Pharmacy{}
	for rows.Next() {
		var p models.Pharmacy
		if err := rows.Scan(&p.ID, &p.Name, &p.Location); err != nil {
			return nil, err
		}
		pharmacies = append(pharmacies, p)
	}
	return pharmacies, rows.Err()
}
