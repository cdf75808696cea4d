package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

// UsersRepository provides persistence helpers for accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `user_id, email, tipo, password_hash, created_at`

// Create inserts an account. A duplicate email returns ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
        INSERT INTO users (user_id, email, tipo, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, user.ID, strings.ToLower(user.Email), user.Role.Tipo(), user.PasswordHash)
	stored, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	return stored, nil
}

// GetByID fetches an account by its identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
}

// GetByEmail fetches an account by email, case-insensitively.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *UsersRepository) getOne(ctx context.Context, query string, arg any) (domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user domain.User
		tipo string
	)
	if err := row.Scan(&user.ID, &user.Email, &tipo, &user.PasswordHash, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.ParseRole(tipo)
	return user, nil
}
