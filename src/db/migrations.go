package db

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies the embedded schema migrations on a short-lived
// database/sql connection; the request path uses the pgx pool.
func Migrate(url string) error {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) { log.Fatal().Msgf(format, v...) }
func (gooseLogger) Printf(format string, v ...interface{}) { log.Info().Str("component", "goose").Msgf(format, v...) }
