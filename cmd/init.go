package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/config"
	"github.com/ckvault/ckvault/internal/keychain"
	"github.com/ckvault/ckvault/internal/recovery"
	"github.com/ckvault/ckvault/internal/vaultservice"
)

// securityQuestions is the fixed set a recovery sidecar can be set up
// against; only the index is persisted, so this list can grow across
// releases without invalidating an existing recovery config.
var securityQuestions = []string{
	"What was the name of your first pet?",
	"What city were you born in?",
	"What was your childhood best friend's name?",
	"What is the name of the street you grew up on?",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfg.VaultPath); err == nil {
			return fmt.Errorf("a vault already exists at %s", cfg.VaultPath)
		}

		masterPW, err := readPasswordConfirm("Master password: ")
		if err != nil {
			return err
		}

		sess, err := vaultservice.Init(cfg.VaultPath, masterPW)
		if err != nil {
			return fmt.Errorf("failed to create vault: %w", err)
		}
		defer sess.Lock()

		cfg.FirstRunComplete = true
		if err := setupRecovery(sess, &cfg); err != nil {
			return err
		}
		if err := config.Save(home, cfg); err != nil {
			return err
		}

		if err := maybeStoreKeychain(masterPW); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}

		ok("Vault created at %s", cfg.VaultPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// setupRecovery interactively offers to configure the security-question
// recovery sidecar, sealing the session's current vault key under the
// answer.
func setupRecovery(sess *vaultservice.Session, cfg *config.Config) error {
	ok, err := promptYesNo("Set up a recovery question in case you forget your master password?", true)
	if err != nil || !ok {
		return nil
	}

	fmt.Println()
	for i, q := range securityQuestions {
		fmt.Printf("  %d) %s\n", i, q)
	}
	line, err := readLine(fmt.Sprintf("Choose a question [0-%d]: ", len(securityQuestions)-1))
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(line)
	if err != nil || idx < 0 || idx >= len(securityQuestions) {
		return fmt.Errorf("invalid question index %q", line)
	}

	answer, err := readPasswordConfirm("Answer: ")
	if err != nil {
		return err
	}

	key, _ := sess.CachedKey()
	rc, err := recovery.Setup(uint8(idx), string(answer), key.Bytes())
	if err != nil {
		return fmt.Errorf("failed to set up recovery: %w", err)
	}
	cfg.Recovery = &rc
	return nil
}

// maybeStoreKeychain offers to cache masterPW in the OS keychain.
func maybeStoreKeychain(masterPW []byte) error {
	kc := keychain.New()
	if !kc.IsAvailable() {
		return nil
	}
	ok, err := promptYesNo("Cache the master password in the system keychain?", false)
	if err != nil || !ok {
		return nil
	}
	return kc.Store(string(masterPW))
}
