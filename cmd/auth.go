package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/invitebooker/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Gmail and Google Calendar",
		Long: `Authorize invitebooker for a Google account. The command prints a consent
URL; paste the code Google shows you afterwards. The token is stored in the
user cache directory under the account name.

GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if google.HasTokenForAccount(account) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Replacing the existing token for account %q.\n", account)
			}
			url, err := google.AuthURL(account)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Visit this URL to authorize account %q:\n\n  %s\n\nEnter the authorization code: ", account, url)

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			code = strings.TrimSpace(code)
			if code == "" {
				if err != nil {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				return fmt.Errorf("no authorization code entered")
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return err
			}
			fmt.Fprintf(out, "Token saved for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account name the token is stored under")

	return cmd
}
