// Command daybookctl runs administrative tasks against a Daybook database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/spf13/cobra"

	"github.com/daybook/daybook/internal/backend"
	"github.com/daybook/daybook/internal/config"
	"github.com/daybook/daybook/internal/store"
)

// ctlConfig is the subset of the server configuration the CLI needs.
type ctlConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	AppTimezone string `env:"APP_TIMEZONE" envDefault:"UTC"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

type app struct {
	cfg      ctlConfig
	envFile  string
	timezone string
	logger   *slog.Logger
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "daybookctl",
		Short:         "Administer a Daybook journal database",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&a.cfg.DatabaseURL, "database-url", "", "database URL (defaults to $DATABASE_URL)")
	root.PersistentFlags().StringVar(&a.timezone, "timezone", "", "time zone for calendar days (defaults to $APP_TIMEZONE)")

	root.AddCommand(
		newMigrateCmd(a),
		newCreateAccountCmd(a),
		newSetPasswordCmd(a),
		newImportLegacyCmd(a),
	)
	return root
}

// init resolves configuration: flags win over the environment, which wins
// over the dotenv file.
func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	fromFlag := a.cfg.DatabaseURL
	if err := env.Parse(&a.cfg); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	if fromFlag != "" {
		a.cfg.DatabaseURL = fromFlag
	}
	if a.timezone != "" {
		a.cfg.AppTimezone = a.timezone
	}
	if a.cfg.DatabaseURL == "" {
		return fmt.Errorf("no database: set DATABASE_URL or pass --database-url")
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(a.cfg.LogLevel))
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) location() (*time.Location, error) {
	return config.LoadLocation(a.cfg.AppTimezone)
}

// openStore opens the configured database with migrations applied.
func (a *app) openStore(ctx context.Context) (store.Store, *time.Location, error) {
	loc, err := a.location()
	if err != nil {
		return nil, nil, err
	}
	s, err := backend.Open(ctx, a.cfg.DatabaseURL, loc, true)
	if err != nil {
		return nil, nil, err
	}
	return s, loc, nil
}
