package cmd

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ckvault/ckvault/internal/keychain"
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all vault entries",
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

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header([]string{"#", "Name", "Type", "Network", "Address"})

		var rows [][]string
		for i, e := range sess.Data().Entries {
			addr := e.PublicAddress
			if addr == "" {
				addr = "-"
			}
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				e.Name,
				string(e.SecretType),
				orDash(e.Network),
				addr,
			})
		}
		_ = table.Bulk(rows)
		return table.Render()
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
