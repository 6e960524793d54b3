package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daybook/daybook/internal/cache"
	"github.com/daybook/daybook/internal/service"
)

func newCreateAccountCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create an account with a password",
		Long: `Create an account with a password.

Without --password the password is read from the first line of stdin:

  echo "$PASSWORD" | daybookctl create-account --username alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if username == "" {
				return errors.New("--username is required")
			}
			password, err := readPassword(cmd, password)
			if err != nil {
				return err
			}

			s, _, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := service.NewAccountService(s, s, cache.NewMemorySessions(), 0, nil, a.logger)
			account, err := svc.CreateAccount(ctx, username, password)
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created account %s (%s)\n", account.Username, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username (1-150 letters, digits or @.+-_)")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	return cmd
}

func newSetPasswordCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Set a new password on an existing account",
		Long: `Set a new password on an existing account.

Accounts brought in by import-legacy cannot log in until they get one.
Without --password the password is read from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if username == "" {
				return errors.New("--username is required")
			}
			password, err := readPassword(cmd, password)
			if err != nil {
				return err
			}

			s, _, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := service.NewAccountService(s, s, cache.NewMemorySessions(), 0, nil, a.logger)
			account, err := svc.SetPassword(ctx, username, password)
			if err != nil {
				return fmt.Errorf("set password: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", account.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username of the account")
	cmd.Flags().StringVar(&password, "password", "", "new password, at least 8 characters")
	return cmd
}

func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password given on --password or stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
