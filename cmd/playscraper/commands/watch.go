package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playscraper/internal/collector"
	"playscraper/internal/components/chrono"
	"playscraper/internal/components/telemetry"
	"playscraper/internal/scrapers/playstore"
	"playscraper/internal/store"

	"github.com/spf13/cobra"
)

var (
	watchSchedule *string
	watchSort     *string
)

func init() {
	watchSchedule = watchCmd.Flags().String("schedule", "@every 1h", "The cron schedule reviews are collected on.")
	watchSort = watchCmd.Flags().String("sort", "newest", "The review order, one of newest, rating or helpfulness.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <app id>... --db <path/to/output.db> [--schedule <cron spec>]",
	Short: "Collects the reviews of apps into a database on a schedule until interrupted.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if *dbPath == "" {
			return errors.New("watch requires --db")
		}
		sort, ok := playstore.ParseReviewSort(*watchSort)
		if !ok {
			return fmt.Errorf("unknown sort order '%s'", *watchSort)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out, err := store.Open(ctx, *dbPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer out.Close()

		clock := chrono.NewStandardTime(nil)
		tel := telemetry.SlogAPI{}
		c := collector.NewCollector(scraper, out, collector.Options{
			AppIDs: args,
			Sort:   sort,
			Limit:  *limit,
			Locale: locale(),
		}, clock, tel)

		cron := chrono.NewStandardCron(clock, tel)
		err = c.Schedule(ctx, cron, *watchSchedule)
		if err != nil {
			return fmt.Errorf("schedule '%s': %w", *watchSchedule, err)
		}
		slog.Info("watching reviews", "apps", len(args), "schedule", *watchSchedule, "db", *dbPath)

		err = c.Collect(ctx)
		if err != nil {
			slog.Warn("initial collection failed", "err", err)
		}

		<-ctx.Done()
		slog.Info("stopping")

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return cron.Stop(stopCtx)
	},
}
