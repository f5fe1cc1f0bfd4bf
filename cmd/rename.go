package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/keychain"
)

var renameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename an entry",
	Args:  cobra.ExactArgs(2),
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

		if err := sess.Data().Rename(args[0], args[1]); err != nil {
			return err
		}
		if err := sess.SaveWithKey(); err != nil {
			return fmt.Errorf("failed to save vault: %w", err)
		}

		ok("Renamed to %q", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
