package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bobsgarage/api/internal/models"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

type FeedbackRepository struct {
	pool PgxPool
}

func NewFeedbackRepository(pool PgxPool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

const feedbackColumns = `id, name, email, message, rating, approved, created_at`

func (r *FeedbackRepository) scanFeedback(row pgx.Row) (models.Feedback, error) {
	var fb models.Feedback
	if err := row.Scan(
		&fb.ID,
		&fb.Name,
		&fb.Email,
		&fb.Message,
		&fb.Rating,
		&fb.Approved,
		&fb.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Feedback{}, ErrFeedbackNotFound
		}
		return models.Feedback{}, err
	}
	return fb, nil
}

func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	const query = `
		INSERT INTO feedback (name, email, message, rating, approved, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		fb.Name, fb.Email, fb.Message, fb.Rating,
	).Scan(&fb.ID, &fb.CreatedAt)
}

func (r *FeedbackRepository) ListApproved(ctx context.Context) ([]models.Feedback, error) {
	const query = `SELECT ` + feedbackColumns + ` FROM feedback WHERE approved ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *FeedbackRepository) ListAll(ctx context.Context) ([]models.Feedback, error) {
	const query = `SELECT ` + feedbackColumns + ` FROM feedback ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *FeedbackRepository) list(ctx context.Context, query string, args ...any) ([]models.Feedback, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Feedback
	for rows.Next() {
		fb, err := r.scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fb)
	}
	return entries, rows.Err()
}

func (r *FeedbackRepository) Approve(ctx context.Context, id int64) error {
	const query = `UPDATE feedback SET approved = TRUE WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrFeedbackNotFound
	}
	return nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM feedback WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrFeedbackNotFound
	}
	return nil
}
