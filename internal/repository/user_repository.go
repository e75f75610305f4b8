package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const userColumns = `id, name, email, login, active, COALESCE(password_hash, ''), created_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, login, active, password_hash)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''))
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Login,
		user.Active,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE login=$1`, login)
}

func (r *userRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE name=$1 ORDER BY created_at LIMIT 1`, name)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if filter.ActiveOnly {
		query += ` WHERE active`
	}
	query += fmt.Sprintf(` ORDER BY name ASC LIMIT %d`, filter.Limit)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Login,
			&user.Active,
			&user.PasswordHash,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Login,
		&user.Active,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
