package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medica-backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// ListThread returns a user's conversation with one department, oldest first.
func (r *MessageRepo) ListThread(ctx context.Context, userID uuid.UUID, departmentID string) ([]models.DepartmentMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, department_id, mine, text, created_at FROM department_messages
		WHERE user_id = $1 AND department_id = $2 ORDER BY created_at, id`, userID, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.DepartmentMessage{}
	for rows.Next() {
		var m models.DepartmentMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.DepartmentID, &m.Mine, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CreatePair stores the user's message and the department reply in one transaction.
func (r *MessageRepo) CreatePair(ctx context.Context, sent, reply *models.DepartmentMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, m := range []*models.DepartmentMessage{sent, reply} {
		m.ID = uuid.New()
		err := tx.QueryRow(ctx,
			`INSERT INTO department_messages (id, user_id, department_id, mine, text, created_at)
			VALUES ($1, $2, $3, $4, $5, clock_timestamp()) RETURNING created_at`,
			m.ID, m.UserID, m.DepartmentID, m.Mine, m.Text,
		).Scan(&m.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
