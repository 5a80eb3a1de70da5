package commands

import (
	"fmt"
	"strings"

	"playscraper/internal/scrapers/playstore"

	"github.com/spf13/cobra"
)

var (
	appsCollection *string
	appsCategory   *string
)

func init() {
	names := make([]string, len(playstore.Collections))
	for i, c := range playstore.Collections {
		names[i] = string(c)
	}
	appsCollection = appsCmd.Flags().String("collection", string(playstore.TOP_FREE),
		"The collection to list, one of "+strings.Join(names, ", ")+".")
	appsCategory = appsCmd.Flags().String("category", "", "Limits the collection to a category.")
	rootCmd.AddCommand(appsCmd, developerCmd, similarCmd, searchCmd)
}

var appsCmd = &cobra.Command{
	Use:   "apps [--collection <collection>] [--category <category>]",
	Short: "Prints the apps of a collection.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := playstore.Collection(strings.ToUpper(*appsCollection))
		apps, err := scraper.Apps(cmd.Context(), playstore.AppsParams{
			Collection: collection,
			Category:   *appsCategory,
			Limit:      *limit,
			Locale:     locale(),
		})
		if err != nil {
			return fmt.Errorf("list %s: %w", collection, err)
		}
		renderApps(apps)
		return saveApps(cmd.Context(), apps)
	},
}

var developerCmd = &cobra.Command{
	Use:   "developer <developer id>",
	Short: "Prints the apps of a developer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apps, err := scraper.DeveloperApps(cmd.Context(), playstore.DeveloperAppsParams{
			DevID:  args[0],
			Limit:  *limit,
			Locale: locale(),
		})
		if err != nil {
			return err
		}
		renderApps(apps)
		return saveApps(cmd.Context(), apps)
	},
}

var similarCmd = &cobra.Command{
	Use:   "similar <app id>",
	Short: "Prints the apps the store lists as similar to an app.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apps, err := scraper.SimilarApps(cmd.Context(), playstore.SimilarAppsParams{
			AppID:  args[0],
			Limit:  *limit,
			Locale: locale(),
		})
		if err != nil {
			return err
		}
		renderApps(apps)
		return saveApps(cmd.Context(), apps)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Prints the apps matching a search query.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apps, err := scraper.Search(cmd.Context(), playstore.SearchParams{
			Query:  strings.Join(args, " "),
			Limit:  *limit,
			Locale: locale(),
		})
		if err != nil {
			return err
		}
		renderApps(apps)
		return saveApps(cmd.Context(), apps)
	},
}
