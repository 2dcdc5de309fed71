package repo

import (
	"context"
	"database/sql"

	"github.com/nvellek/agora/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, passwordHash, email string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, email)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, username, password_hash, COALESCE(email, ''), role, last_active, created_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username, passwordHash, email).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.Role, &user.LastActive, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, COALESCE(email, ''), role, last_active, created_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.Role, &user.LastActive, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, COALESCE(email, ''), role, last_active, created_at
		FROM users
		WHERE username = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.Role, &user.LastActive, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Touch Activity
// ==========================

// TouchActivity sets last_active to now. Missing rows are not an error: the
// token outlived the account, and the next ownership check will 404 anyway.
func (r *UserRepo) TouchActivity(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET last_active = now() WHERE id = $1`, id)
	return err
}

// ==========================
// List Online
// ==========================

// ListOnline returns usernames whose last_active falls within the trailing
// window, most recently active first.
func (r *UserRepo) ListOnline(ctx context.Context, windowSeconds int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT username FROM users
		WHERE last_active > now() - ($1 * interval '1 second')
		ORDER BY last_active DESC
	`, windowSeconds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		usernames = append(usernames, u)
	}

	return usernames, rows.Err()
}

// ==========================
// Count Users
// ==========================
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
