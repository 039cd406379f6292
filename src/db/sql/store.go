package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already exists")
	ErrOutOfRange = errors.New("value out of range")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	numericOutOfRange   = "22003"
)

// Store runs every query scoped to the owning user.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// mapErr turns driver errors into the package sentinels.
func mapErr(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", what, ErrDuplicate)
		case foreignKeyViolation:
			// The owning user was deleted while its token is still valid.
			return fmt.Errorf("%s: %w", what, ErrNotFound)
		case numericOutOfRange:
			return fmt.Errorf("%s: %w", what, ErrOutOfRange)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
