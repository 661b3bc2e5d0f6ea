package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/passvault/internal/application"
)

// newStatusCommand reports whether every stored password still decrypts.
// It exits non-zero when the vault is degraded or its key is missing.
func newStatusCommand(health HealthChecker) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Verify that every stored password can be decrypted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := health.Check(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Status:\t%s\n", report.Status)
			fmt.Fprintf(w, "Credentials:\t%d\n", report.Credentials)
			fmt.Fprintf(w, "Master key:\t%s\n", presence(report.KeyPresent))
			for _, cred := range report.Unreadable {
				fmt.Fprintf(w, "Unreadable:\t%s / %s\n", cred.AccountName, cred.Username)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			switch report.Status {
			case application.VaultStatusDegraded:
				return fmt.Errorf("%d of %d credentials cannot be decrypted", len(report.Unreadable), report.Credentials)
			case application.VaultStatusKeyMissing:
				return fmt.Errorf("%d credentials stored but no master key found", report.Credentials)
			}
			return nil
		},
	}
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
