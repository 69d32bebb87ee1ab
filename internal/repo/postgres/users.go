package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mk-ui-dev/renovation-concierge/internal/domain/user"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already used")
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, name, role, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.Name,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, name, role, created_at, updated_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.Name,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}
