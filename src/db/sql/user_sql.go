package db

import (
	"context"
	"fmt"

	"finhealth-server/src/models"
)

const userColumns = `id, name, email, password_hash, currency, created_at`

func scanUser(row interface{ Scan(...any) error }, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Currency,
		&user.CreatedAt,
	)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := scanUser(s.pool.QueryRow(ctx, query, id), &user); err != nil {
		return nil, mapErr("get user", err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := scanUser(s.pool.QueryRow(ctx, query, email), &user); err != nil {
		return nil, mapErr("get user by email", err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, name, email string, passwordHash []byte) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	var user models.User
	if err := scanUser(s.pool.QueryRow(ctx, query, name, email, passwordHash), &user); err != nil {
		return nil, mapErr("create user", err)
	}
	return &user, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id int64, name, currency string) (*models.User, error) {
	query := `
		UPDATE users SET name = $1, currency = $2
		WHERE id = $3
		RETURNING ` + userColumns

	var user models.User
	if err := scanUser(s.pool.QueryRow(ctx, query, name, currency, id), &user); err != nil {
		return nil, mapErr("update user", err)
	}
	return &user, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash []byte) error {
	cmd, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return mapErr("update password", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update password: %w", ErrNotFound)
	}
	return nil
}

// DeleteUser removes the user; owned records go with it via ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete user", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("delete user: %w", ErrNotFound)
	}
	return nil
}
