package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"playscraper/internal/components/configutil"
	"playscraper/internal/components/telemetry"
	"playscraper/internal/scrapers/playstore"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	language   *string
	country    *string
	limit      *int
	dbPath     *string
	verbose    *bool
	human      *bool
)

var (
	scraper *playstore.Scraper
	otlp    telemetry.Telemetry
)

func init() {
	flags := rootCmd.PersistentFlags()
	configPath = flags.String("config", "config.json5", "The scraper config file, a .local variant overrides it.")
	language = flags.String("lang", "", "The two letter language of the store front.")
	country = flags.String("country", "", "The two letter country of the store front.")
	limit = flags.Int("limit", 100, "The maximum number of results to fetch.")
	dbPath = flags.String("db", "", "A sqlite database to write results to.")
	verbose = flags.BoolP("verbose", "v", false, "Enables debug logging.")
	human = flags.Bool("human", false, "Paces pages like a person browsing when the config sets no throttle.")
}

var rootCmd = &cobra.Command{
	Use:           "playscraper",
	Short:         "playscraper is a CLI for scraping the google play store.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		telCfg, err := configutil.ReadRecursively[telemetry.Config]("telemetry.json5")
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return fmt.Errorf("read telemetry config: %w", err)
		default:
			otlp, err = telemetry.Setup(cmd.Context(), "playscraper", telCfg)
			if err != nil {
				return fmt.Errorf("setup telemetry: %w", err)
			}
		}

		cfg, err := readConfig(*configPath)
		if err != nil {
			return err
		}
		scraperCfg, err := cfg.scraperConfig()
		if err != nil {
			return err
		}
		if *human && scraperCfg.Throttler == nil {
			scraperCfg.Throttler = playstore.DefaultHumanThrottler()
		}
		scraper, err = playstore.New(scraperCfg, telemetry.SlogAPI{})
		if err != nil {
			return fmt.Errorf("create scraper: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return otlp.Shutdown(ctx)
	},
}

func locale() playstore.Locale {
	return playstore.Locale{Language: *language, Country: *country}
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Debug("command failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
