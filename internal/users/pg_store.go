package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morezero/typed-rpc/pkg/db"
)

const pgLogPrefix = "users:pg_store"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		role       TEXT NOT NULL,
		manager_id BIGINT REFERENCES users (id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS users_role_idx ON users (role)`,
}

const selectUser = `SELECT u.id, u.name, u.role, m.id, m.name, m.role
	FROM users u LEFT JOIN users m ON m.id = u.manager_id`

// PGStore is a Store backed by Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an open pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the users table when missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if err := db.RunMigrations(ctx, s.pool, migrations); err != nil {
		return fmt.Errorf("%s - ensure schema: %w", pgLogPrefix, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGStore) Get(ctx context.Context, id int64) (*User, error) {
	row := s.pool.QueryRow(ctx, selectUser+` WHERE u.id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s - get user %d: %w", pgLogPrefix, id, err)
	}
	return u, nil
}

func (s *PGStore) List(ctx context.Context, filter ListUsersInput) ([]User, error) {
	var (
		where []string
		args  []any
	)
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}
	query := selectUser
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY u.id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s - list users: %w", pgLogPrefix, err)
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s - scan user: %w", pgLogPrefix, err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s - list users: %w", pgLogPrefix, err)
	}
	return out, nil
}

func (s *PGStore) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if in.ManagerID != nil {
		if _, err := s.Get(ctx, *in.ManagerID); err != nil {
			return nil, err
		}
	}

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (name, role, manager_id) VALUES ($1, $2, $3) RETURNING id`,
		in.Name, string(in.Role), in.ManagerID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("%s - create user: %w", pgLogPrefix, err)
	}
	return s.Get(ctx, id)
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u           User
		role        string
		managerID   *int64
		managerName *string
		managerRole *string
	)
	if err := row.Scan(&u.ID, &u.Name, &role, &managerID, &managerName, &managerRole); err != nil {
		return nil, err
	}
	u.Role = Role(role)
	if managerID != nil {
		u.Manager = &User{ID: *managerID, Name: *managerName, Role: Role(*managerRole)}
	}
	return &u, nil
}
