package commands

import (
	"playscraper/internal/scrapers/playstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Prints the app categories of the store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := scraper.Categories(cmd.Context(), playstore.CategoriesParams{
			Locale: locale(),
		})
		if err != nil {
			return err
		}

		t := newTable(table.Row{"Category", "Title"})
		for _, c := range categories {
			t.AppendRow(table.Row{c.ID, c.Title})
		}
		t.Render()
		return nil
	},
}
