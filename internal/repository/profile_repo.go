package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medica-backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Ensure creates the profile row for userID if it does not exist yet.
func (r *ProfileRepo) Ensure(ctx context.Context, userID uuid.UUID, fullName string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, full_name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		userID, fullName,
	)
	return err
}

func (r *ProfileRepo) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, phone, medical_id, updated_at FROM profiles WHERE id = $1`, userID,
	).Scan(&p.ID, &p.FullName, &p.Phone, &p.MedicalID, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the non-nil fields of req.
func (r *ProfileRepo) Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	query := `UPDATE profiles SET
			full_name = COALESCE($2, full_name),
			phone = COALESCE($3, phone),
			medical_id = COALESCE($4, medical_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, full_name, phone, medical_id, updated_at`

	p := &models.Profile{}
	err := r.pool.QueryRow(ctx, query, userID, req.FullName, req.Phone, req.MedicalID).Scan(
		&p.ID, &p.FullName, &p.Phone, &p.MedicalID, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
