package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ornithology/pkg/auth"
	"ornithology/pkg/config"
	"ornithology/pkg/logger"
	"ornithology/pkg/twitter"
	"ornithology/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Run the browser authorization flow and verify the credential",
	Long: `Run the authorization flow once without fetching anything: open the
browser, wait for the redirect, exchange the code, and look up who the
credential belongs to. Useful for checking a client id and callback
port before a long run.

The credential lives in memory only and is gone when the command
exits; every enrich run authorizes afresh.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client id of the registered app")
	authCmd.Flags().IntVar(&callbackPort, "callback-port", 0, "local port for the authorization redirect")
}

func runAuth(cmd *cobra.Command, args []string) error {
	flags := globalFlags()
	if clientID != "" {
		flags["client-id"] = clientID
	}
	if callbackPort > 0 {
		flags["callback-port"] = callbackPort
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token, err := auth.Negotiate(ctx, auth.Config{
		ClientID:     cfg.Twitter.ClientID,
		Scopes:       twitter.OAuthScopes,
		Endpoint:     twitter.OAuthEndpoint(),
		CallbackPort: cfg.Twitter.CallbackPort,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	client := twitter.NewClient(token, twitter.Options{
		Timeout: cfg.Twitter.Timeout,
		Logger:  log,
	})
	me, err := client.WhoAmI(ctx)
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("authorized as @%s (%s)", me.Username, me.ID))
	return nil
}
