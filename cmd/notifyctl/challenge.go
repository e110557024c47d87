package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garrettladley/ebaynotify/internal/service/webhook"
)

func challengeCmd() *cobra.Command {
	var endpoint, verificationToken string

	cmd := &cobra.Command{
		Use:   "challenge <challenge-code>",
		Short: "Compute the endpoint validation response",
		Long:  "Computes the challengeResponse eBay expects from GET /webhook?challenge_code=...",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if endpoint != "" {
				cfg.Endpoint = endpoint
			}
			if verificationToken != "" {
				cfg.VerificationToken = verificationToken
			}

			response, err := webhook.NewProcessor(nil, nil).ValidateEndpoint(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), response)
			return err
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "subscriber endpoint URL (defaults to EBAY_ENDPOINT)")
	cmd.Flags().StringVar(&verificationToken, "verification-token", "", "verification token (defaults to EBAY_VERIFICATION_TOKEN)")

	return cmd
}
