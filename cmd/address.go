package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/address"
	"github.com/ckvault/ckvault/internal/keychain"
)

var addressCmd = &cobra.Command{
	Use:   "address <id>",
	Short: "Derive and print the public address for an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sess, err := unlockSession(cfg.VaultPath, keychain.New())
		if err != nil {
			return err
		}
		defer sess.Lock()

		entry, err := sess.Data().FindByID(args[0])
		if err != nil {
			return err
		}
		if entry.HasSecondaryPassword {
			return fmt.Errorf("entry %q is locked behind a secondary password; use 'get' to unlock it first", entry.Name)
		}
		if entry.Network == "" {
			return fmt.Errorf("entry %q has no network set", entry.Name)
		}

		addr, ok, err := address.DeriveAddress(entry.Secret, entry.SecretType, entry.Network)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("address derivation is not supported for %s on %s", entry.SecretType, entry.Network)
		}
		fmt.Println(addr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
