package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamweld/claude-bridge/internal/auth"
)

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysCreateCmd, keysListCmd, keysRevokeCmd, keysRotateCmd, keysVerifyCmd)

	keysCreateCmd.Flags().String("name", "", "label stored with the key")
	keysRotateCmd.Flags().String("name", "", "label for the replacement key (keeps the old label when empty)")
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
}

func openKeyring() (*auth.Keyring, error) {
	return auth.LoadKeyring(auth.DefaultKeyringPath())
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a new API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ring, err := openKeyring()
		if err != nil {
			return err
		}

		key, err := auth.GenerateKey()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		entry := ring.Add(key, name)

		if err := ring.Save(); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, key)
		fmt.Fprintf(os.Stderr, "Stored digest %s in %s. The key above is shown only once.\n",
			entry.Hash[:8], ring.Path)

		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ring, err := openKeyring()
		if err != nil {
			return err
		}

		if len(ring.Entries) == 0 {
			fmt.Fprintln(os.Stdout, "No keys stored.")

			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "HASH\tNAME\tCREATED")

		for _, e := range ring.Entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Hash[:8], e.Name, e.Created.Format(time.RFC3339))
		}

		return w.Flush()
	},
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <hash-prefix>",
	Short: "Delete a key by digest prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ring, err := openKeyring()
		if err != nil {
			return err
		}

		entry, err := ring.Remove(args[0])
		if err != nil {
			return err
		}

		if err := ring.Save(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Revoked %s (%s).\n", entry.Hash[:8], entry.Name)

		return nil
	},
}

var keysRotateCmd = &cobra.Command{
	Use:   "rotate <hash-prefix>",
	Short: "Replace a key, keeping its label unless --name is given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ring, err := openKeyring()
		if err != nil {
			return err
		}

		old, err := ring.Remove(args[0])
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = old.Name
		}

		key, err := auth.GenerateKey()
		if err != nil {
			return err
		}

		entry := ring.Add(key, name)

		if err := ring.Save(); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, key)
		fmt.Fprintf(os.Stderr, "Rotated %s to %s. The key above is shown only once.\n",
			old.Hash[:8], entry.Hash[:8])

		return nil
	},
}

var keysVerifyCmd = &cobra.Command{
	Use:   "verify <key>",
	Short: "Check a key against the configured digests",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		key := args[0]

		if !auth.ValidKeyFormat(key) {
			return errors.New("key does not match the cca_ format")
		}

		// Same sources the server consults: the keyring file plus
		// API_KEY_HASHES.
		verifier, err := auth.FromEnv(slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err != nil {
			return err
		}

		if !verifier.Enabled() {
			return errors.New("no API keys configured")
		}

		if !verifier.Verify(key) {
			return errors.New("key is not authorized")
		}

		fmt.Fprintln(os.Stdout, "Key is valid.")

		return nil
	},
}
