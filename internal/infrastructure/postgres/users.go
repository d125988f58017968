package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rentpal/rentpal-api/internal/domain"
)

const uniqueViolation = "23505"

// UserRepo persists user records.
type UserRepo struct {
	db DB
}

func NewUserRepo(db DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, full_name, email, phone_number, account_type, subscribed, hashed_password, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber, &u.AccountType,
		&u.Subscribed, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", domain.ErrStorage)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
	return scanUser(row)
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, full_name, email, phone_number, account_type, subscribed, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.FullName, u.Email, u.PhoneNumber, u.AccountType, u.Subscribed,
		u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert user: %w", domain.ErrEmailExists)
		}
		return fmt.Errorf("insert user: %w", domain.ErrStorage)
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, email, hash string, now time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET hashed_password = $1, updated_at = $2 WHERE email = $3`,
		hash, now, email)
	if err != nil {
		return fmt.Errorf("update password: %w", domain.ErrStorage)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update password: %w", domain.ErrEmailNotFound)
	}
	return nil
}

func (r *UserRepo) UpdatePhone(ctx context.Context, email, phone string, now time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET phone_number = $1, updated_at = $2 WHERE email = $3`,
		phone, now, email)
	if err != nil {
		return fmt.Errorf("update phone: %w", domain.ErrStorage)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update phone: %w", domain.ErrEmailNotFound)
	}
	return nil
}
