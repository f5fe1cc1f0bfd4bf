package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/config"
	"github.com/ckvault/ckvault/internal/keychain"
)

var passwdRecovery bool

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the master password, or reconfigure the recovery question",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sess, err := unlockSession(cfg.VaultPath, keychain.New())
		if err != nil {
			return err
		}
		defer sess.Lock()

		if !passwdRecovery {
			newPW, err := readPasswordConfirm("New master password: ")
			if err != nil {
				return err
			}
			if err := sess.ChangePassword(newPW); err != nil {
				return fmt.Errorf("failed to change master password: %w", err)
			}
			if err := sess.SaveWithKey(); err != nil {
				return fmt.Errorf("failed to save vault: %w", err)
			}
			ok("Master password changed")
		}

		if passwdRecovery || cfg.Recovery == nil {
			if err := setupRecovery(sess, &cfg); err != nil {
				return err
			}
			if err := config.Save(home, cfg); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	passwdCmd.Flags().BoolVar(&passwdRecovery, "recovery", false, "reconfigure the recovery question instead of the master password")
	rootCmd.AddCommand(passwdCmd)
}
