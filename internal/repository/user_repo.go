package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"personen-api/internal/domain"
)

// ErrUserNotFound reports that no user row matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the read-only persistence contract for login lookups.
// FindByCredentials exists for the plaintext compatibility mode, which
// matches username and password in a single query the way the original
// service did.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	FindByCredentials(ctx context.Context, username, password string) (domain.User, error)
}

// PgUserRepository implements UserRepository using pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `
		SELECT username, password
		FROM "user"
		WHERE username = $1
	`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.Username, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

func (r *PgUserRepository) FindByCredentials(ctx context.Context, username, password string) (domain.User, error) {
	const query = `
		SELECT username, password
		FROM "user"
		WHERE username = $1 AND password = $2
	`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, username, password).Scan(&u.Username, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}
