package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"bobsgarage/api/internal/models"
)

var ErrPostNotFound = errors.New("blog post not found")

type BlogRepository struct {
	pool PgxPool
}

func NewBlogRepository(pool PgxPool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

const postColumns = `id, title, body, image_url, published, author_id, created_at, updated_at`

func (r *BlogRepository) scanPost(row pgx.Row) (models.BlogPost, error) {
	var post models.BlogPost
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.ImageURL,
		&post.Published,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.BlogPost{}, ErrPostNotFound
		}
		return models.BlogPost{}, err
	}
	return post, nil
}

func (r *BlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	const query = `
		INSERT INTO blog_posts (title, body, image_url, published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		post.Title, post.Body, post.ImageURL, post.Published, post.AuthorID,
	).Scan(&post.ID, &post.CreatedAt)
}

func (r *BlogRepository) GetByID(ctx context.Context, id int64) (models.BlogPost, error) {
	const query = `SELECT ` + postColumns + ` FROM blog_posts WHERE id = $1`
	return r.scanPost(r.pool.QueryRow(ctx, query, id))
}

// ListPublished returns posts visible to the public site, newest first.
func (r *BlogRepository) ListPublished(ctx context.Context, limit, offset int) ([]models.BlogPost, error) {
	const query = `
		SELECT ` + postColumns + ` FROM blog_posts
		WHERE published ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

// ListAll returns every post, drafts included, for the admin dashboard.
func (r *BlogRepository) ListAll(ctx context.Context, limit, offset int) ([]models.BlogPost, error) {
	const query = `
		SELECT ` + postColumns + ` FROM blog_posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

func (r *BlogRepository) list(ctx context.Context, query string, args ...any) ([]models.BlogPost, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.BlogPost
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *BlogRepository) Update(ctx context.Context, post models.BlogPost) error {
	const query = `
		UPDATE blog_posts
		SET title = $2, body = $3, image_url = $4, published = $5, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		post.ID, post.Title, post.Body, post.ImageURL, post.Published,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM blog_posts WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}
