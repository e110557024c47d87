package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garrettladley/ebaynotify/internal/client/ebay"
	"github.com/garrettladley/ebaynotify/internal/oauth"
	"github.com/garrettladley/ebaynotify/internal/service/keystore"
	"github.com/garrettladley/ebaynotify/internal/service/webhook"
	"github.com/garrettladley/ebaynotify/internal/storage"
)

func newKeyStore() (*keystore.Store, error) {
	cache, err := storage.NewMemoryKeyCache(storage.DefaultKeyCacheSize)
	if err != nil {
		return nil, err
	}
	return keystore.NewStore(oauth.NewAppTokenProvider(), ebay.New(), cache), nil
}

func publicKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "public-key <key-id>",
		Short: "Fetch a notification signing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			creds, err := appCredentials(cfg)
			if err != nil {
				return err
			}

			store, err := newKeyStore()
			if err != nil {
				return err
			}

			key, err := store.GetPublicKey(cmd.Context(), args[0], creds)
			if err != nil {
				return err
			}

			formatted, err := webhook.FormatKey(key.Key)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printField(w, "key id", key.KeyID)
			printField(w, "algorithm", key.Algorithm)
			printField(w, "digest", key.Digest)
			printField(w, "env", creds.Environment)
			_, err = fmt.Fprintln(w, formatted)
			return err
		},
	}
}
