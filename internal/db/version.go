package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"

	"github.com/pressly/goose/v3"

	"github.com/lifeos-app/lifeos/internal/db/migrations"
	"github.com/lifeos-app/lifeos/internal/dbpool"
)

// LatestMigration returns the number of embedded SQL migrations.
func LatestMigration() int {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			count++
		}
	}

	return count
}

// MigrationStatus reports the applied schema version and whether migrations
// are still pending.
func MigrationStatus(ctx context.Context, pool *dbpool.Pool, fsys fs.FS) (current int64, pending bool, err error) {
	sqlDB, err := sql.Open("pgx", pool.ConnString())
	if err != nil {
		return 0, false, fmt.Errorf("opening sql.DB for migration status: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return 0, false, fmt.Errorf("creating goose provider: %w", err)
	}

	current, err = provider.GetDBVersion(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("reading schema version: %w", err)
	}

	pending, err = provider.HasPending(ctx)
	if err != nil {
		return current, false, fmt.Errorf("checking pending migrations: %w", err)
	}

	return current, pending, nil
}
