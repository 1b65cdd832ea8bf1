package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trustflow/trustflow-backend/pkg/config"
	"github.com/trustflow/trustflow-backend/pkg/db"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the TrustFlow database schema with goose",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (default: embedded set; create/validate use "+migrate.DefaultDir+")")

	for _, command := range []string{"up", "down", "status"} {
		command := command
		root.AddCommand(&cobra.Command{
			Use:   command,
			Short: "goose " + command,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), dir, command, func(ctx context.Context, sqlDB *sql.DB, fsys fs.FS) error {
					return migrate.Run(ctx, sqlDB, fsys, command, cmd.OutOrStdout())
				})
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "version <YYYYMMDDHHMMSS>",
		Short: "Migrate up or down to a target version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), dir, "version", func(ctx context.Context, sqlDB *sql.DB, fsys fs.FS) error {
				return migrate.MigrateToVersion(ctx, sqlDB, fsys, args[0], cmd.OutOrStdout())
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := migrate.CreateSQLMigration(diskDir(dir), args[0])
			if err != nil {
				return fmt.Errorf("create migration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check migration file names and annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migrate.ValidateDir(diskDir(dir)); err != nil {
				return fmt.Errorf("migration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
			return nil
		},
	})

	return root
}

func diskDir(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}

// withDB loads config, opens the database and runs fn against it with the
// selected migration source.
func withDB(ctx context.Context, dir, command string, fn func(context.Context, *sql.DB, fs.FS) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fsys, err := migrate.Source(dir)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": command,
		"dir": diskDirLabel(dir),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "resource not working: database", err)
		return err
	}
	defer func() { _ = dbClient.Close() }()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "resource not working: sql database", err)
		return err
	}

	logg.Info(ctx, "migrate ready")
	if err := fn(ctx, sqlDB, fsys); err != nil {
		logg.Error(ctx, "migration failed", err)
		return err
	}
	return nil
}

func diskDirLabel(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}
