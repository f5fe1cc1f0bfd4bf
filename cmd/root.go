package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose bool

	version = "dev"
	commit  = "none"
	date    = "unknown"

	rootCmd = &cobra.Command{
		Use:   "ckvault",
		Short: "An offline encrypted vault for private keys, seed phrases, and passwords",
		Long: `ckvault is a single-user, offline secret vault for cryptocurrency
private keys, BIP-39 seed phrases, and ordinary passwords.

Everything is sealed at rest with XChaCha20-Poly1305 under an Argon2id
master key. There is no network code, no sync, and no cloud account -
the vault file on disk is the only copy unless you export a backup.

Examples:
  # Create a new vault
  ckvault init

  # Add a new entry
  ckvault add my-wallet --type private-key --network ethereum

  # Retrieve a secret
  ckvault get my-wallet

  # List entries
  ckvault ls`,
	}
)

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

// ok prints a short green confirmation line, the shape most subcommands
// use to report success.
func ok(format string, args ...interface{}) {
	fmt.Println(color.GreenString(format, args...))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&vaultHomeFlag, "home", "", "vault home directory (default $HOME/.ckvault)")
}

// IsVerbose reports whether -v/--verbose was passed.
func IsVerbose() bool {
	return verbose
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
