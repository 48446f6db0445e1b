// Package migrations holds the schema of the result archive. Each file
// registers one up/down pair on Migrations, ordered by its timestamp prefix.
package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the set applied by the migrate command and on server start.
var Migrations = migrate.NewMigrations()

//go:embed 0001_create_result_snapshots.sql
var createResultSnapshotsSQL string

const dropResultSnapshotsSQL = `DROP TABLE IF EXISTS result_snapshots`

func init() {
	Migrations.MustRegister(createResultSnapshots, dropResultSnapshots)
}

// createResultSnapshots adds the table holding the last fetched result list
// of each evaluation or student, keyed by (kind, subject).
func createResultSnapshots(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, createResultSnapshotsSQL)
	return err
}

// dropResultSnapshots discards every archived snapshot.
func dropResultSnapshots(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, dropResultSnapshotsSQL)
	return err
}
