package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/macbridge/internal/config"
	"github.com/teemow/macbridge/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to online calendars",
	}
	cmd.AddCommand(newAuthGoogleCmd())
	return cmd
}

func newAuthGoogleCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "google",
		Short: "Authorize read-only access to a Google Calendar account",
		Long: `Authorize read-only access to a Google Calendar account.

Run without --code to print the authorization URL. Open it, grant access and
run the command again with the code Google shows you. Tokens are stored per
account, so several accounts can be used side by side.`,
		Example: `  macbridge auth google --account work
  macbridge auth google --account work --code 4/0Ab...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			creds := cfg.GoogleCredentials()
			if err := creds.Validate(); err != nil {
				return err
			}
			conf := google.OAuthConfig(creds)

			w := cmd.OutOrStdout()
			if code == "" {
				url, err := google.AuthURL(conf, account)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "Open this URL in your browser and grant access:")
				fmt.Fprintln(w)
				fmt.Fprintln(w, "  "+url)
				fmt.Fprintln(w)
				fmt.Fprintf(w, "Then run: macbridge auth google --account %s --code CODE\n", account)
				return nil
			}

			store, err := google.NewTokenStore(cfg.Google.TokenDir)
			if err != nil {
				return err
			}
			if err := google.Exchange(cmd.Context(), conf, store, account, code); err != nil {
				return err
			}
			fmt.Fprintf(w, "Token saved for account %s\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account name to store the token under")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent page")
	return cmd
}
