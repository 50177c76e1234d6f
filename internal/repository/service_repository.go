package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bobsgarage/api/internal/models"
)

var ErrServiceNotFound = errors.New("service not found")

type ServiceRepository struct {
	pool PgxPool
}

func NewServiceRepository(pool PgxPool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

const serviceColumns = `id, name, description, price_cents, image_url, created_at, updated_at`

func (r *ServiceRepository) scanService(row pgx.Row) (models.Service, error) {
	var svc models.Service
	if err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.Description,
		&svc.PriceCents,
		&svc.ImageURL,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Service{}, ErrServiceNotFound
		}
		return models.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	const query = `
		INSERT INTO services (name, description, price_cents, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		svc.Name, svc.Description, svc.PriceCents, svc.ImageURL,
	).Scan(&svc.ID, &svc.CreatedAt)
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (models.Service, error) {
	const query = `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	return r.scanService(r.pool.QueryRow(ctx, query, id))
}

func (r *ServiceRepository) List(ctx context.Context) ([]models.Service, error) {
	const query = `SELECT ` + serviceColumns + ` FROM services ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		svc, err := r.scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (r *ServiceRepository) Update(ctx context.Context, svc models.Service) error {
	const query = `
		UPDATE services
		SET name = $2, description = $3, price_cents = $4, image_url = $5, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		svc.ID, svc.Name, svc.Description, svc.PriceCents, svc.ImageURL,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM services WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}
