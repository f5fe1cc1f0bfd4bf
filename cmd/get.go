package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/clipboard"
	"github.com/ckvault/ckvault/internal/keychain"
	"github.com/ckvault/ckvault/internal/keyvault"
	"github.com/ckvault/ckvault/internal/secure"
	"github.com/ckvault/ckvault/internal/vaultmodel"
)

// unwrapDecrypt decrypts entry's locked secret under an already-unwrapped
// entry key. The caller owns the returned secure.String and must Close it.
func unwrapDecrypt(entryKey []byte, entry *vaultmodel.Entry) (*secure.String, error) {
	return keyvault.DecryptSecret(entryKey, entry.EncryptedSecretNonce, entry.EncryptedSecret)
}

var (
	getCopy bool
	getShow bool
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Retrieve a single entry by index or name",
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

		secret := entry.Secret
		if entry.HasSecondaryPassword {
			viewPW, err := readPassword("Secondary password: ")
			if err != nil {
				return err
			}
			entryKey, err := sess.UnwrapEntryKey(entry, viewPW)
			if err != nil {
				return err
			}
			plaintext, err := unwrapDecrypt(entryKey.Bytes(), entry)
			entryKey.Close()
			if err != nil {
				return err
			}
			defer plaintext.Close()
			secret = string(plaintext.Bytes())
		}

		printEntry(entry, secret)

		if getCopy {
			var cl clipboard.Clearer
			timeout := time.Duration(cfg.ClipboardTimeoutSecs) * time.Second
			if err := cl.Copy(secret, timeout); err != nil {
				fmt.Printf("(could not copy to clipboard: %v)\n", err)
			} else {
				fmt.Printf("Copied to clipboard, clearing in %s\n", timeout)
			}
		}
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVar(&getCopy, "copy", false, "copy the secret to the clipboard instead of printing it")
	getCmd.Flags().BoolVar(&getShow, "show", true, "print the secret to stdout")
	rootCmd.AddCommand(getCmd)
}

func printEntry(e *vaultmodel.Entry, secret string) {
	fmt.Printf("Name:    %s\n", e.Name)
	fmt.Printf("Type:    %s\n", e.SecretType)
	if e.Network != "" {
		fmt.Printf("Network: %s\n", e.Network)
	}
	if e.PublicAddress != "" {
		fmt.Printf("Address: %s\n", e.PublicAddress)
	}
	if e.Username != "" {
		fmt.Printf("Username: %s\n", e.Username)
	}
	if getShow && !getCopy {
		fmt.Printf("Secret:  %s\n", secret)
	}
}
