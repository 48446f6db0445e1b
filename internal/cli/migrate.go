package cli

import (
	"context"
	"database/sql"
	"fmt"

	"evaluation-console/internal/config"
	pgmigrations "evaluation-console/internal/infra/postgres/migrations"
	"evaluation-console/internal/logging"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd creates or rolls back the result archive schema.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the result archive tables in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			if rollback {
				return rollbackArchive(cmd.Context(), cfg, logger)
			}
			return migrateArchive(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "undo the last applied migration group")
	return cmd
}

// openArchiveMigrator returns a migrator over the archive database with its
// bookkeeping tables created. Callers close the returned db.
func openArchiveMigrator(ctx context.Context, cfg config.Config) (*migrate.Migrator, *bun.DB, error) {
	if cfg.Postgres.URL == "" {
		return nil, nil, fmt.Errorf("postgres url not configured")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init migrations: %w", err)
	}
	return migrator, db, nil
}

// migrateArchive brings result_snapshots up to date. Running it twice is a
// no-op.
func migrateArchive(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	migrator, db, err := openArchiveMigrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}
	if group.IsZero() {
		logger.Info("archive schema already up to date")
		return nil
	}
	logger.Info("archive schema migrated", group.String())
	return nil
}

func rollbackArchive(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	migrator, db, err := openArchiveMigrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("rollback archive: %w", err)
	}
	if group.IsZero() {
		logger.Info("no archive migration to roll back")
		return nil
	}
	logger.Info("archive schema rolled back", group.String())
	return nil
}
