// Package cli is a thin command-line front end over the vault. It holds no
// state of its own: every command is one explicit vault call.
package cli

import (
	"context"
	"fmt"
	"iter"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/passvault/internal/application"
	"github.com/ericfisherdev/passvault/internal/domain/model"
)

// Vault is the set of vault operations the commands drive.
type Vault interface {
	Add(ctx context.Context, accountName, username, password string) error
	List(ctx context.Context) iter.Seq2[model.Credential, error]
	Find(ctx context.Context, accountName, username string) (*model.Credential, error)
	Edit(ctx context.Context, oldAccountName, oldUsername, newAccountName, newUsername, newPassword string) error
	Delete(ctx context.Context, accountName, username string) error
	Reveal(cred model.Credential) (string, error)
	Count(ctx context.Context) (int, error)
}

// HealthChecker runs a full integrity pass over the vault.
type HealthChecker interface {
	Check(ctx context.Context) (*application.VaultHealth, error)
}

// NewRootCommand builds the passvault command tree. readPassword is used for
// every password entry so tests can supply input without a terminal.
func NewRootCommand(vault Vault, health HealthChecker, readPassword PasswordReader) *cobra.Command {
	root := &cobra.Command{
		Use:           "passvault",
		Short:         "Local encrypted credential vault",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAddCommand(vault, readPassword),
		newListCommand(vault),
		newShowCommand(vault),
		newEditCommand(vault, readPassword),
		newDeleteCommand(vault),
		newStatusCommand(health),
	)
	return root
}

func newAddCommand(vault Vault, readPassword PasswordReader) *cobra.Command {
	return &cobra.Command{
		Use:   "add <account> <username>",
		Short: "Store a new credential",
		Long:  "Store a new credential. The password is prompted for (hidden on a terminal, one line from stdin otherwise).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			if err := vault.Add(cmd.Context(), args[0], args[1], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credential %q for %q stored\n", args[0], args[1])
			return nil
		},
	}
}

func newListCommand(vault Vault) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List stored credentials",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			total, err := vault.Count(cmd.Context())
			if err != nil {
				return err
			}
			if total == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No credentials stored")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tUSERNAME")
			for cred, err := range vault.List(cmd.Context()) {
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", cred.AccountName, cred.Username)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d credential(s)\n", total)
			return nil
		},
	}
}

func newShowCommand(vault Vault) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show <account> <username>",
		Short: "Show a credential with its password masked",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := findExisting(cmd.Context(), vault, args[0], args[1])
			if err != nil {
				return err
			}
			password, err := vault.Reveal(*cred)
			if err != nil {
				return err
			}
			if !reveal {
				password = model.Mask(password)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Account:\t%s\n", cred.AccountName)
			fmt.Fprintf(w, "Username:\t%s\n", cred.Username)
			fmt.Fprintf(w, "Password:\t%s\n", password)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the password in plain text")
	return cmd
}

func newEditCommand(vault Vault, readPassword PasswordReader) *cobra.Command {
	var newAccount, newUsername string

	cmd := &cobra.Command{
		Use:   "edit <account> <username>",
		Short: "Change a credential's account, username or password",
		Long:  "Change a credential. Omitted flags keep the current value; the new password is always prompted for.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := findExisting(cmd.Context(), vault, args[0], args[1]); err != nil {
				return err
			}

			account, username := args[0], args[1]
			if cmd.Flags().Changed("account") {
				account = newAccount
			}
			if cmd.Flags().Changed("username") {
				username = newUsername
			}

			password, err := readPassword("New password: ")
			if err != nil {
				return err
			}
			if err := vault.Edit(cmd.Context(), args[0], args[1], account, username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credential %q for %q updated\n", account, username)
			return nil
		},
	}
	cmd.Flags().StringVar(&newAccount, "account", "", "new account name")
	cmd.Flags().StringVar(&newUsername, "username", "", "new username")
	return cmd
}

func newDeleteCommand(vault Vault) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <account> <username>",
		Short:   "Remove a credential",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := vault.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credential %q for %q deleted\n", args[0], args[1])
			return nil
		},
	}
}

// findExisting looks a credential up and turns absence into model.ErrNotFound.
func findExisting(ctx context.Context, vault Vault, account, username string) (*model.Credential, error) {
	cred, err := vault.Find(ctx, account, username)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, fmt.Errorf("%q for %q: %w", account, username, model.ErrNotFound)
	}
	return cred, nil
}
