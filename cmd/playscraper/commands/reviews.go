package commands

import (
	"fmt"
	"log/slog"

	"playscraper/internal/scrapers/playstore"
	"playscraper/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reviewsSort *string

func init() {
	reviewsSort = reviewsCmd.Flags().String("sort", "newest", "The review order, one of newest, rating or helpfulness.")
	rootCmd.AddCommand(reviewsCmd)
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews <app id> [--sort <order>]",
	Short: "Prints the reviews of an app.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sort, ok := playstore.ParseReviewSort(*reviewsSort)
		if !ok {
			return fmt.Errorf("unknown sort order '%s'", *reviewsSort)
		}
		reviews, err := scraper.Reviews(cmd.Context(), playstore.ReviewsParams{
			AppID:  args[0],
			Sort:   sort,
			Limit:  *limit,
			Locale: locale(),
		})
		if err != nil {
			return err
		}

		t := newTable(table.Row{"Date", "Author", "Score", "Review"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, WidthMax: 80},
		})
		for _, r := range reviews {
			t.AppendRow(table.Row{r.Timestamp.Format("2006-01-02"), r.AuthorUsername, r.Score, r.Text})
		}
		t.Render()

		return withStore(cmd.Context(), func(s store.Store) error {
			err := s.SaveReviews(cmd.Context(), reviews)
			if err != nil {
				return err
			}
			slog.Info("saved reviews", "db", *dbPath, "count", len(reviews))
			return nil
		})
	},
}
