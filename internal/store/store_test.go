package store

import (
	"context"
	"testing"
	"time"

	"playscraper/internal/scrapers/playstore"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) Store {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestApps(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	score := 4.5
	price := 1.99
	apps := []playstore.App{
		{
			AppID:     "com.b",
			Title:     "B",
			Developer: "Dev B",
			Url:       "https://play.google.com/store/apps/details?id=com.b",
			PriceText: "$1.99",
			Price:     &price,
			Currency:  "$",
			Score:     &score,
			ScoreText: "4.5",
		},
		{AppID: "com.a", Title: "A", Developer: "Dev A", IsFree: true},
	}
	require.NoError(t, s.SaveApps(ctx, apps))

	stored, err := s.Apps(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]playstore.App{apps[1], apps[0]}, stored); diff != "" {
		t.Fatalf("apps mismatch (-want +got):\n%s", diff)
	}

	apps[1].Title = "A renamed"
	require.NoError(t, s.SaveApps(ctx, apps[1:]))
	stored, err = s.Apps(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "A renamed", stored[0].Title)
}

func TestReviews(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	replied := time.UnixMilli(1700000500000).UTC()
	reviews := []playstore.AppReview{
		{
			ID:             "r1",
			AppID:          "com.a",
			AuthorUsername: "first",
			AuthorImageUrl: "https://play-lh.googleusercontent.com/a/first",
			Score:          5,
			Title:          "Loved it",
			Text:           "great",
			Timestamp:      time.UnixMilli(1700000000123).UTC(),
			Criteria:       []string{"vaf_games_graphics", "vaf_games_controls"},
		},
		{
			ID:             "r2",
			AppID:          "com.a",
			AuthorUsername: "second",
			Score:          2,
			Text:           "meh",
			ReplyText:      "sorry",
			ReplyTimestamp: &replied,
			ThumbsUpCount:  3,
			Timestamp:      time.UnixMilli(1700000400000).UTC(),
			Criteria:       []string{},
		},
		{ID: "r3", AppID: "com.other", Timestamp: time.UnixMilli(0).UTC()},
	}
	require.NoError(t, s.SaveReviews(ctx, reviews))
	require.NoError(t, s.SaveReviews(ctx, reviews[:1]))

	stored, err := s.Reviews(ctx, "com.a")
	require.NoError(t, err)
	if diff := cmp.Diff([]playstore.AppReview{reviews[1], reviews[0]}, stored); diff != "" {
		t.Fatalf("reviews mismatch (-want +got):\n%s", diff)
	}

	stored, err = s.Reviews(ctx, "com.other")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, []string{}, stored[0].Criteria)

	stored, err = s.Reviews(ctx, "com.missing")
	require.NoError(t, err)
	require.Empty(t, stored)
}
