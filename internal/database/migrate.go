package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"todo-api/pkg/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrations embed.FS

var gooseDialects = map[Dialect]goose.Dialect{
	DialectPostgres: goose.DialectPostgres,
	DialectSQLite:   goose.DialectSQLite3,
}

// MigrateOrCreateSchema creates the todos table if it does not exist yet.
// Safe to run on every startup.
func MigrateOrCreateSchema(ctx context.Context, db *DB) error {
	dialect, ok := gooseDialects[db.Dialect]
	if !ok {
		return fmt.Errorf("no migrations for dialect %q", db.Dialect)
	}
	fsys, err := fs.Sub(migrations, "migrations/"+string(db.Dialect))
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		logger.Info(ctx, "Migration applied", "version", r.Source.Version, "duration", r.Duration.String())
	}
	return nil
}
