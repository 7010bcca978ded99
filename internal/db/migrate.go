package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/apoll/apoll/internal/db/migrations"
)

// Migrate runs the embedded schema migrations against the database.
//
// goose wants a database/sql handle, not a pgxpool, so this opens a
// short-lived connection through the pgx stdlib driver and closes it when
// the migrations are done. The pool used for serving traffic is created
// separately by New.
func Migrate(ctx context.Context, databaseURL string) error {
	handle, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer handle.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, handle, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
