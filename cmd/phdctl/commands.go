package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nitn/phd-admission/internal/app/repositories"
	"github.com/nitn/phd-admission/internal/app/services"
	"github.com/nitn/phd-admission/internal/bootstrap"
	"github.com/nitn/phd-admission/internal/config"
	"github.com/nitn/phd-admission/internal/db"
	"github.com/nitn/phd-admission/internal/jobs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "phdctl",
		Short:         "Admin tasks for the PhD admission portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file")

	cmd.AddCommand(
		newMigrateCommand(opts),
		newSweepCommand(opts),
		newCounterCommand(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, zerolog.Logger, error) {
	return bootstrap.LoadConfigAndSetupLogger(o.configPath)
}

func (o *rootOptions) connect(ctx context.Context) (*config.Config, *db.PostgresDB, zerolog.Logger, error) {
	cfg, lgr, err := o.load()
	if err != nil {
		return nil, nil, lgr, err
	}
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, lgr, err
	}
	return cfg, database, lgr, nil
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, database, lgr, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer database.Close()
			return bootstrap.RunMigrations(ctx, cfg, database, lgr)
		},
	}
}

func newSweepCommand(opts *rootOptions) *cobra.Command {
	var maxAge time.Duration
	cmd := &cobra.Command{
		Use:   "sweep-uploads",
		Short: "Remove stale files from the upload staging directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			temp, err := bootstrap.NewTempDir(cfg)
			if err != nil {
				return err
			}
			if maxAge <= 0 {
				maxAge = config.Duration(cfg.Uploads.TempMaxAge, time.Hour)
			}

			removed, err := jobs.NewTempSweeper(temp, maxAge).Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d file(s) from %s\n", removed, temp.Path())
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Remove files older than this (default from config)")
	return cmd
}

func newCounterCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counter",
		Short: "Show the application id counter and the next id it will assign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, database, _, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			name := cfg.Application.CounterName
			current, err := repositories.NewSequenceRepository(database.Pool).Current(ctx, name)
			if err != nil {
				return err
			}

			format := services.ApplicationIDFormat{
				Prefix:  cfg.Application.IDPrefix,
				Width:   cfg.Application.IDWidth,
				Counter: name,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "counter %q = %d, next id %s\n", name, current, format.Format(current+1))
			return nil
		},
	}
}
