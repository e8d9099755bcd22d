package cli

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"
	"quiz-app-service/internal/config"
	"quiz-app-service/internal/infra/postgres"
	pgmigrations "quiz-app-service/internal/infra/postgres/migrations"
	"quiz-app-service/internal/logging"
)

// NewMigrateCmd applies (or rolls back) database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logging.Init(cfg.Log.Level, cfg.Log.Pretty)
			if rollback {
				return rollbackMigrations(cmd.Context(), cfg)
			}
			return runMigrationsWithConfig(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

func newMigrator(cfg config.Config) (*migrate.Migrator, func() error, error) {
	if cfg.Postgres.URL == "" {
		return nil, nil, errors.New("postgres url not configured")
	}
	db := postgres.Open(cfg.Postgres.URL)
	return migrate.NewMigrator(db, pgmigrations.Migrations), db.Close, nil
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	migrator, closeDB, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := migrator.Init(ctx); err != nil {
		return err
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info().Msg("no new migrations")
		return nil
	}
	log.Info().Str("group", group.String()).Msg("migrations applied")
	return nil
}

func rollbackMigrations(ctx context.Context, cfg config.Config) error {
	migrator, closeDB, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := migrator.Init(ctx); err != nil {
		return err
	}
	group, err := migrator.Rollback(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info().Msg("nothing to roll back")
		return nil
	}
	log.Info().Str("group", group.String()).Msg("migrations rolled back")
	return nil
}
