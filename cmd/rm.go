package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/keychain"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "remove"},
	Short:   "Remove an entry by index or name",
	Args:    cobra.ExactArgs(1),
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
		name := entry.Name

		if !rmForce {
			confirmed, err := promptYesNo(fmt.Sprintf("Remove %q?", name), false)
			if err != nil {
				return err
			}
			if !confirmed {
				return nil
			}
		}

		if err := sess.Data().RemoveByID(args[0]); err != nil {
			return err
		}
		if err := sess.SaveWithKey(); err != nil {
			return fmt.Errorf("failed to save vault: %w", err)
		}

		ok("Removed %q", name)
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(rmCmd)
}
