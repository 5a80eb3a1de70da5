package commands

import (
	"playscraper/internal/scrapers/playstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(permissionsCmd)
}

var permissionsCmd = &cobra.Command{
	Use:   "permissions <app id>",
	Short: "Prints the permissions an app requests.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		permissions, err := scraper.Permissions(cmd.Context(), playstore.PermissionsParams{
			AppID:  args[0],
			Locale: locale(),
		})
		if err != nil {
			return err
		}

		t := newTable(table.Row{"Type", "Permission"})
		for _, p := range permissions {
			t.AppendRow(table.Row{p.Type, p.Description})
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
		t.Render()
		return nil
	},
}
