package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/address"
	"github.com/ckvault/ckvault/internal/keychain"
	"github.com/ckvault/ckvault/internal/keyvault"
	"github.com/ckvault/ckvault/internal/vaultmodel"
)

var (
	addType      string
	addNetwork   string
	addUsername  string
	addURL       string
	addNotes     string
	addSecondary bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new entry to the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		secretType, err := parseSecretType(addType)
		if err != nil {
			return err
		}

		secret, err := readPasswordConfirm("Secret: ")
		if err != nil {
			return err
		}

		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sess, err := unlockSession(cfg.VaultPath, keychain.New())
		if err != nil {
			return err
		}
		defer sess.Lock()

		entry := vaultmodel.Entry{
			Name:       name,
			SecretType: secretType,
			Secret:     string(secret),
			Network:    addNetwork,
			Username:   addUsername,
			URL:        addURL,
			Notes:      addNotes,
		}

		if addNetwork != "" && (secretType == vaultmodel.PrivateKey || secretType == vaultmodel.SeedPhrase) {
			addr, ok, err := address.DeriveAddress(entry.Secret, secretType, addNetwork)
			if err != nil {
				return fmt.Errorf("failed to derive address: %w", err)
			}
			if ok {
				entry.PublicAddress = addr
			}
		}

		if addSecondary {
			viewPW, err := readPasswordConfirm("Secondary (view) password: ")
			if err != nil {
				return err
			}
			entryKey, wrap, err := keyvault.WrapEntryKey(viewPW)
			if err != nil {
				return fmt.Errorf("failed to wrap entry key: %w", err)
			}
			ciphertext, nonce, err := keyvault.EncryptSecret(entryKey.Bytes(), entry.Secret)
			entryKey.Close()
			if err != nil {
				return fmt.Errorf("failed to encrypt secret: %w", err)
			}
			entry.HasSecondaryPassword = true
			entry.Secret = vaultmodel.EncryptedSentinel
			entry.EntryKeyWrapped = wrap.Ciphertext
			entry.EntryKeyNonce = wrap.Nonce
			entry.EntryKeySalt = wrap.Salt
			entry.EncryptedSecret = ciphertext
			entry.EncryptedSecretNonce = nonce
		}

		if err := sess.Data().Insert(entry); err != nil {
			return err
		}
		if err := sess.SaveWithKey(); err != nil {
			return fmt.Errorf("failed to save vault: %w", err)
		}

		ok("Added %q", name)
		if entry.PublicAddress != "" {
			fmt.Printf("Address: %s\n", entry.PublicAddress)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addType, "type", "password", "entry type: private-key, seed-phrase, password")
	addCmd.Flags().StringVar(&addNetwork, "network", "", "blockchain network, e.g. ethereum, bitcoin, solana")
	addCmd.Flags().StringVar(&addUsername, "username", "", "username, for password entries")
	addCmd.Flags().StringVar(&addURL, "url", "", "associated URL")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	addCmd.Flags().BoolVar(&addSecondary, "secondary-password", false, "require a second password to view this secret")
	rootCmd.AddCommand(addCmd)
}

func parseSecretType(s string) (vaultmodel.SecretType, error) {
	switch s {
	case "private-key":
		return vaultmodel.PrivateKey, nil
	case "seed-phrase":
		return vaultmodel.SeedPhrase, nil
	case "password":
		return vaultmodel.Password, nil
	default:
		return "", fmt.Errorf("unknown --type %q: expected private-key, seed-phrase, or password", s)
	}
}
