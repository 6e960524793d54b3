package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybook/daybook/internal/backend"
	"github.com/daybook/daybook/internal/litestore"
	"github.com/daybook/daybook/internal/repository"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loc, err := a.location()
			if err != nil {
				return err
			}
			kind, addr, err := backend.Detect(a.cfg.DatabaseURL)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if kind == backend.KindSQLite {
				s, err := litestore.Open(ctx, addr, loc)
				if err != nil {
					return err
				}
				s.Close()
				fmt.Fprintln(out, "sqlite schema is up to date")
				return nil
			}

			repo, err := repository.New(ctx, addr, loc)
			if err != nil {
				return err
			}
			defer repo.Close()

			applied, err := repo.Migrate(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "no pending migrations")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(out, "applied %s\n", v)
			}
			return nil
		},
	}
}
