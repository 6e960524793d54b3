package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybook/daybook/internal/cache"
	"github.com/daybook/daybook/internal/legacy"
	"github.com/daybook/daybook/internal/service"
)

func newImportLegacyCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Import users and entries from the old journal database",
		Long: `Import users and entries from the old journal's SQLite database.

Existing usernames are reused. New accounts get no usable password and must
reset it. Entries already present (same account, time and content) are
skipped, so the import can be run again safely.

With REDIS_URL set, the cached calendars of every account that received
entries are dropped so a running server picks the new days up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if from == "" {
				return errors.New("--from is required")
			}

			src, err := legacy.OpenSource(ctx, from)
			if err != nil {
				return err
			}
			defer src.Close()

			s, loc, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			// A running server caches calendars in Redis; imported days
			// must evict them.
			var dates service.DateCache
			if a.cfg.RedisURL != "" {
				c, err := cache.New(ctx, a.cfg.RedisURL)
				if err != nil {
					return fmt.Errorf("connect redis: %w", err)
				}
				defer c.Close()
				dates = c
			}

			accounts := service.NewAccountService(s, s, cache.NewMemorySessions(), 0, nil, a.logger)
			journal := service.NewJournalService(s, dates, loc, nil, service.WithLogger(a.logger))

			report, err := legacy.NewImporter(accounts, journal, loc, a.logger).Run(ctx, src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Migration complete")
			fmt.Fprintf(out, "- accounts created:  %d\n", report.AccountsCreated)
			fmt.Fprintf(out, "- accounts reused:   %d\n", report.AccountsExisting)
			fmt.Fprintf(out, "- entries imported:  %d\n", report.EntriesImported)
			fmt.Fprintf(out, "- entries skipped:   %d\n", report.EntriesSkipped)
			if report.EntriesOrphaned > 0 {
				fmt.Fprintf(out, "- entries without a user: %d\n", report.EntriesOrphaned)
			}
			if report.AccountsCreated > 0 {
				fmt.Fprintln(out, "Imported accounts must be given a password with set-password before logging in.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "path to the legacy SQLite database")
	return cmd
}
