package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/config"
	"github.com/ckvault/ckvault/internal/keychain"
	"github.com/ckvault/ckvault/internal/vaultservice"
)

var backupCmd = &cobra.Command{
	Use:   "backup <path>",
	Short: "Export the vault to an independent encrypted backup file",
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

		exportPW, err := readPasswordConfirm("Backup password: ")
		if err != nil {
			return err
		}
		if err := vaultservice.WriteBackup(args[0], *sess.Data(), exportPW); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		fmt.Printf("Backup written to %s\n", args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <path>",
	Short: "Restore a vault from a backup file, overwriting the current vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		home, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		exportPW, err := readPassword("Backup password: ")
		if err != nil {
			return err
		}
		data, err := vaultservice.ReadBackup(args[0], exportPW)
		if err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		}

		confirmed, err := promptYesNo(fmt.Sprintf("Overwrite vault at %s with the backup's %d entries?", cfg.VaultPath, len(data.Entries)), false)
		if err != nil || !confirmed {
			return err
		}

		masterPW, err := readPasswordConfirm("New master password: ")
		if err != nil {
			return err
		}
		sess, err := vaultservice.Init(cfg.VaultPath, masterPW)
		if err != nil {
			return fmt.Errorf("failed to initialize vault: %w", err)
		}
		defer sess.Lock()
		*sess.Data() = data
		if err := sess.SaveWithKey(); err != nil {
			return fmt.Errorf("failed to save restored vault: %w", err)
		}

		cfg.Recovery = nil
		if err := config.Save(home, cfg); err != nil {
			return err
		}

		ok("Vault restored")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
