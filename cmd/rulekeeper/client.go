package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// apiKeyBytes is the entropy of generated API keys.
const apiKeyBytes = 32

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage API clients",
	}

	var name string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a client and print its API key once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return errors.New("--name is required")
			}

			key, err := generateAPIKey()
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.pool.Close()

			id, err := wire(e).clients.CreateClient(cmd.Context(), name, key)
			if err != nil {
				return err
			}

			e.log.WithFields(logrus.Fields{"client_id": id, "name": name}).Info("client.created")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "client: %s (%s)\n", name, id)
			fmt.Fprintf(out, "api key: %s\n", key)
			fmt.Fprintln(out, "Store this key now; it cannot be shown again.")

			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Client name")

	revokeCmd := &cobra.Command{
		Use:   "revoke <name>",
		Short: "Revoke every active key of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.pool.Close()

			n, err := wire(e).clients.RevokeClient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("no active client named %q", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "revoked %d key(s) of %s\n", n, args[0])

			return nil
		},
	}

	cmd.AddCommand(createCmd, revokeCmd)

	return cmd
}

func generateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating api key: %w", err)
	}

	return "rk_" + hex.EncodeToString(buf), nil
}
