package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/config"
	"github.com/ckvault/ckvault/internal/recovery"
	"github.com/ckvault/ckvault/internal/secure"
	"github.com/ckvault/ckvault/internal/vaultservice"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover vault access using your security question, bypassing a forgotten master password",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Recovery == nil {
			return fmt.Errorf("no recovery question is configured for this vault")
		}

		fmt.Println(securityQuestions[cfg.Recovery.QuestionIndex])
		limiter := recovery.NewAttemptLimiter(5)

		var vaultKey *secure.Bytes
		for limiter.Allow() {
			answer, err := readPassword("Answer: ")
			if err != nil {
				return err
			}
			key, rErr := recovery.Recover(*cfg.Recovery, string(answer))
			if rErr == nil {
				vaultKey = key
				break
			}
			fmt.Printf("Incorrect answer (%d attempts remaining)\n", limiter.Remaining())
		}
		if vaultKey == nil {
			return fmt.Errorf("too many attempts")
		}
		defer vaultKey.Close()

		salt, err := vaultservice.PeekSalt(cfg.VaultPath)
		if err != nil {
			return fmt.Errorf("failed to read vault header: %w", err)
		}

		sess, err := vaultservice.UnlockWithKey(cfg.VaultPath, vaultKey, salt)
		if err != nil {
			return fmt.Errorf("recovery key did not unlock the vault: %w", err)
		}
		defer sess.Lock()

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

		cfg.Recovery = nil
		if err := config.Save(home, cfg); err != nil {
			return err
		}

		fmt.Println("Vault recovered and master password changed. Run 'ckvault passwd --recovery' to set up a new recovery question.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
