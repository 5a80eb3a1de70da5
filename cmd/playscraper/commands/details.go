package commands

import (
	"strings"

	"playscraper/internal/scrapers/playstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(detailsCmd)
}

var detailsCmd = &cobra.Command{
	Use:   "details <app id>",
	Short: "Prints the details of an app.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := scraper.AppDetails(cmd.Context(), playstore.AppDetailsParams{
			AppID:  args[0],
			Locale: locale(),
		})
		if err != nil {
			return err
		}

		t := newTable(table.Row{"Field", "Value"})
		t.AppendRows([]table.Row{
			{"Title", d.Title},
			{"Summary", d.Summary},
			{"Developer", d.Developer},
			{"Developer ID", d.DeveloperID},
			{"Genre", d.Genre},
			{"Installs", d.Installs},
			{"Score", formatScore(d.Score)},
			{"Ratings", d.RatingCount},
			{"Price", d.PriceText},
			{"Version", d.Version},
			{"Android", d.AndroidVersionText},
			{"Content rating", d.ContentRating},
			{"Released", d.ReleaseDate.Format("2006-01-02")},
			{"Updated", d.LastUpdated.Format("2006-01-02")},
			{"Screenshots", strings.Join(d.ScreenshotUrls, "\n")},
			{"Url", d.Url},
		})
		t.Render()

		return saveApps(cmd.Context(), []playstore.App{{
			AppID:     d.AppID,
			Title:     d.Title,
			Summary:   d.Summary,
			Score:     d.Score,
			ScoreText: d.ScoreText,
			Url:       d.Url,
			IconUrl:   d.IconUrl,
			Developer: d.Developer,
			PriceText: d.PriceText,
			Price:     d.Price,
			Currency:  d.Currency,
			IsFree:    d.IsFree,
		}})
	},
}
