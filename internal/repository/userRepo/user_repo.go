package userRepo

import (
	"context"
	"errors"
	"fmt"

	"commercial-file-service/internal/model/user"
	"commercial-file-service/pkg/database/postgres"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, role, active`

type UserRepo struct {
	db postgres.DB
}

func New(db postgres.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) conn(ctx context.Context) postgres.DB {
	return postgres.Conn(ctx, r.db)
}

func (r *UserRepo) Create(ctx context.Context, u *user.User) (uint32, error) {
	query := `INSERT INTO users (username, email, password_hash, first_name, last_name, role, active)
		VALUES ($1, $2, $3, $4, $5, $6, true) RETURNING id`
	var userID uint32
	err := r.conn(ctx).QueryRow(ctx, query,
		u.Username, u.Email, u.Password, u.FirstName, u.LastName, string(u.Role)).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user and retrieve id: %w", err)
	}
	u.ID = userID
	u.Active = true
	return userID, nil
}

// GetByID returns nil, nil when there is no active user with the id.
func (r *UserRepo) GetByID(ctx context.Context, id uint32) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND active = true`
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND active = true`
	rows, err := r.conn(ctx).Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u    user.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &role, &u.Active); err != nil {
		return nil, err
	}
	u.Role = user.Role(role)
	return &u, nil
}
