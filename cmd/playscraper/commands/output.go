package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"playscraper/internal/scrapers/playstore"
	"playscraper/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(*score, 'f', 1, 64)
}

func renderApps(apps []playstore.App) {
	t := newTable(table.Row{"App", "Title", "Developer", "Score", "Price"})
	for _, app := range apps {
		price := app.PriceText
		if app.IsFree {
			price = "Free"
		}
		t.AppendRow(table.Row{app.AppID, app.Title, app.Developer, formatScore(app.Score), price})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(apps)})
	t.Render()
}

// withStore runs fn against the database given by --db, it does nothing when
// no database was given.
func withStore(ctx context.Context, fn func(s store.Store) error) error {
	if *dbPath == "" {
		return nil
	}
	s, err := store.Open(ctx, *dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer s.Close()
	return fn(s)
}

func saveApps(ctx context.Context, apps []playstore.App) error {
	return withStore(ctx, func(s store.Store) error {
		err := s.SaveApps(ctx, apps)
		if err != nil {
			return err
		}
		slog.Info("saved apps", "db", *dbPath, "count", len(apps))
		return nil
	})
}
