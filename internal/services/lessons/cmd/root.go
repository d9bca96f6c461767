package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/config"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// app carries the configuration loaded before any subcommand runs.
type app struct {
	cfg config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "lessons",
		Short:         "Flashcard lessons service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			a.cfg = cfg
			slog.SetDefault(cfg.Logger())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newMigrateCommand(a))
	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newLessonsCommand(a))
	rootCmd.AddCommand(newTokenCommand(a))

	return rootCmd
}

func storeConfig(cfg config.Config) store.Config {
	return store.Config{
		Dialect: store.Dialect(cfg.DB.Driver),
		Postgres: store.PostgresConfig{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			DB:       cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
		},
		SQLitePath:   cfg.DB.Path,
		MaxOpenConns: cfg.DB.MaxOpenConns,
	}
}

// openDB applies pending migrations when auto-migration is on and connects to the database.
func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	storeCfg := storeConfig(cfg)

	if cfg.DB.AutoMigrate {
		if err := store.Migrate(ctx, storeCfg, true); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
	}

	db, err := store.Open(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	return db, nil
}
