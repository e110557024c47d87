package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/garrettladley/ebaynotify/internal/config"
	"github.com/garrettladley/ebaynotify/internal/env"
	"github.com/garrettladley/ebaynotify/internal/oauth"
	"github.com/garrettladley/ebaynotify/internal/version"
	"github.com/garrettladley/ebaynotify/internal/xslog"
)

const (
	flagEnvironment = "environment"
	flagVerbose     = "verbose"
)

func main() {
	_ = godotenv.Load()

	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notifyctl",
		Short:         "Inspect and test eBay notification delivery",
		Version:       version.Get(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := xslog.LevelWarn
			if verbose, _ := cmd.Flags().GetBool(flagVerbose); verbose {
				level = xslog.LevelDebug
			}
			logger := xslog.NewTextLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(xslog.WithLogger(cmd.Context(), logger))
		},
	}
	rootCmd.PersistentFlags().StringP(flagEnvironment, "e", "", "SANDBOX or PRODUCTION (defaults to EBAY_ENVIRONMENT)")
	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "log requests to stderr")

	rootCmd.AddCommand(challengeCmd(), publicKeyCmd(), verifyCmd())

	return rootCmd
}

// loadConfig reads EBAY_* settings and applies the --environment override.
func loadConfig(cmd *cobra.Command) (config.EBay, error) {
	cfg, err := config.ReadEBay()
	if err != nil {
		return config.EBay{}, fmt.Errorf("failed to read config: %w", err)
	}

	if raw, _ := cmd.Flags().GetString(flagEnvironment); raw != "" {
		environment, err := env.Parse(raw)
		if err != nil {
			return config.EBay{}, err
		}
		cfg.Environment = environment
	}
	return cfg, nil
}

func appCredentials(cfg config.EBay) (oauth.AppCredentials, error) {
	creds := cfg.CredentialsFor(cfg.Environment)
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return oauth.AppCredentials{}, fmt.Errorf("EBAY_%s_CLIENT_ID and EBAY_%s_CLIENT_SECRET are required", cfg.Environment, cfg.Environment)
	}
	return oauth.AppCredentials{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Environment:  cfg.Environment,
	}, nil
}
