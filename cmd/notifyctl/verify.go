package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/garrettladley/ebaynotify/internal/service/processor"
	"github.com/garrettladley/ebaynotify/internal/service/webhook"
)

func verifyCmd() *cobra.Command {
	var bodyPath, signature, keyPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a captured notification against its signature",
		Long: `Verifies a notification body against its X-EBAY-SIGNATURE header.
The signing key is fetched from eBay unless --key names a local PEM file.`,
		Example: `  notifyctl verify --body notification.json --signature "$(cat signature.txt)"
  notifyctl verify --body - --signature eyJhbGciOi... --key key.pem < notification.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := readInput(cmd, bodyPath)
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}

			n, err := processor.ParseNotification(body)
			if err != nil {
				return err
			}

			envelope, err := webhook.DecodeEnvelope(signature)
			if err != nil {
				return err
			}

			var ok bool
			if keyPath != "" {
				key, err := os.ReadFile(keyPath)
				if err != nil {
					return fmt.Errorf("failed to read key: %w", err)
				}
				ok, err = webhook.Verify(body, envelope, string(key))
				if err != nil {
					return err
				}
			} else {
				ok, err = verifyOnline(cmd, body, signature)
				if err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			printField(w, "topic", n.Metadata.Topic)
			printField(w, "id", n.Notification.NotificationID)
			printField(w, "key id", envelope.KeyID)
			if !ok {
				printFail(w, "signature does not match")
				return webhook.ErrVerificationMismatch
			}
			printOK(w, "signature valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&bodyPath, "body", "", `notification body file ("-" for stdin)`)
	cmd.Flags().StringVar(&signature, "signature", "", "X-EBAY-SIGNATURE header value")
	cmd.Flags().StringVar(&keyPath, "key", "", "PEM public key file; skips the key fetch")
	_ = cmd.MarkFlagRequired("body")
	_ = cmd.MarkFlagRequired("signature")

	return cmd
}

func verifyOnline(cmd *cobra.Command, body []byte, signature string) (bool, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return false, err
	}
	creds, err := appCredentials(cfg)
	if err != nil {
		return false, err
	}
	store, err := newKeyStore()
	if err != nil {
		return false, err
	}
	return webhook.NewSignatureVerifier(store).ValidateSignature(cmd.Context(), body, signature, creds)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	if path == "" {
		return nil, errors.New("--body is required")
	}
	return os.ReadFile(path)
}
