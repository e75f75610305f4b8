package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const uniqueViolation = "23505"

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository constructs repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	const query = `INSERT INTO support_tags (name, color) VALUES ($1,$2) RETURNING id`
	err := r.pool.QueryRow(ctx, query, tag.Name, tag.Color).Scan(&tag.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	const query = `SELECT id, name, color FROM support_tags WHERE name=$1`
	var tag domain.Tag
	if err := r.pool.QueryRow(ctx, query, name).Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}
