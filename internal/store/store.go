// Package store persists scraped records into a sqlite database.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"playscraper/internal/scrapers/playstore"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and creates if needed) the sqlite database at dsn, ":memory:"
// gives a private in-memory database.
func Open(ctx context.Context, dsn string) (Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return Store{}, err
	}
	// every connection to ":memory:" is its own database
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return NewStore(db), nil
}

func NewStore(db *sql.DB) Store {
	return Store{db: db, now: time.Now}
}

func (s Store) Close() error {
	return s.db.Close()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func encodeCriteria(criteria []string) (string, error) {
	if criteria == nil {
		criteria = []string{}
	}
	out, err := json.Marshal(criteria)
	return string(out), err
}

func decodeCriteria(text string) ([]string, error) {
	criteria := []string{}
	err := json.Unmarshal([]byte(text), &criteria)
	if err != nil {
		return nil, fmt.Errorf("criteria: %w", err)
	}
	return criteria, nil
}

// SaveApps inserts apps, apps that are already stored are overwritten.
func (s Store) SaveApps(ctx context.Context, apps []playstore.App) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	scrapedAt := s.now().UnixMilli()
	for _, app := range apps {
		_, err := tx.ExecContext(
			ctx,
			`insert into app (
				app_id, title, summary, developer, url, icon_url, score, score_text,
				price_text, price, currency, is_free, scraped_at
			) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			on conflict (app_id) do update set
				title = excluded.title,
				summary = excluded.summary,
				developer = excluded.developer,
				url = excluded.url,
				icon_url = excluded.icon_url,
				score = excluded.score,
				score_text = excluded.score_text,
				price_text = excluded.price_text,
				price = excluded.price,
				currency = excluded.currency,
				is_free = excluded.is_free,
				scraped_at = excluded.scraped_at`,
			app.AppID, app.Title, app.Summary, app.Developer, app.Url, app.IconUrl,
			nullFloat(app.Score), app.ScoreText, app.PriceText, nullFloat(app.Price), app.Currency,
			app.IsFree, scrapedAt,
		)
		if err != nil {
			return fmt.Errorf("save app %s: %w", app.AppID, err)
		}
	}
	return tx.Commit()
}

// Apps returns every stored app ordered by app id.
func (s Store) Apps(ctx context.Context) ([]playstore.App, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select app_id, title, summary, developer, url, icon_url, score,
			price_text, price, currency, is_free
		from app order by app_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []playstore.App{}
	for rows.Next() {
		var app playstore.App
		var score, price sql.NullFloat64
		err := rows.Scan(
			&app.AppID, &app.Title, &app.Summary, &app.Developer, &app.Url, &app.IconUrl,
			&score, &app.ScoreText, &app.PriceText, &price, &app.Currency, &app.IsFree,
		)
		if err != nil {
			return nil, err
		}
		app.Score = floatPtr(score)
		app.Price = floatPtr(price)
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// SaveReviews inserts reviews, reviews that are already stored are
// overwritten.
func (s Store) SaveReviews(ctx context.Context, reviews []playstore.AppReview) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	scrapedAt := s.now().UnixMilli()
	for _, review := range reviews {
		var repliedAt sql.NullInt64
		if review.ReplyTimestamp != nil {
			repliedAt = sql.NullInt64{Int64: review.ReplyTimestamp.UnixMilli(), Valid: true}
		}
		criteria, err := encodeCriteria(review.Criteria)
		if err != nil {
			return fmt.Errorf("save review %s: %w", review.ID, err)
		}
		_, err = tx.ExecContext(
			ctx,
			`insert or replace into review (
				id, app_id, url, author, author_image_url, score, title, text,
				reply_text, app_version, thumbs_up, criteria, created_at,
				replied_at, scraped_at
			) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			review.ID, review.AppID, review.Url, review.AuthorUsername, review.AuthorImageUrl,
			review.Score, review.Title, review.Text, review.ReplyText, review.AppVersion,
			review.ThumbsUpCount, criteria, review.Timestamp.UnixMilli(), repliedAt, scrapedAt,
		)
		if err != nil {
			return fmt.Errorf("save review %s: %w", review.ID, err)
		}
	}
	return tx.Commit()
}

// Reviews returns the stored reviews of an app, newest first.
func (s Store) Reviews(ctx context.Context, appID string) ([]playstore.AppReview, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select id, app_id, url, author, score, text, reply_text, app_version,
			thumbs_up, created_at, replied_at
		from review where app_id = ? order by created_at desc`,
		appID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []playstore.AppReview{}
	for rows.Next() {
		var review playstore.AppReview
		var createdAt int64
		var repliedAt sql.NullInt64
		var criteria string
		err := rows.Scan(
			&review.ID, &review.AppID, &review.Url, &review.AuthorUsername, &review.AuthorImageUrl,
			&review.Score, &review.Title, &review.Text, &review.ReplyText, &review.AppVersion,
			&review.ThumbsUpCount, &criteria, &createdAt, &repliedAt,
		)
		if err != nil {
			return nil, err
		}
		review.Criteria, err = decodeCriteria(criteria)
		if err != nil {
			return nil, fmt.Errorf("review %s: %w", review.ID, err)
		}
		review.Timestamp = time.UnixMilli(createdAt).UTC()
		if repliedAt.Valid {
			replied := time.UnixMilli(repliedAt.Int64).UTC()
			review.ReplyTimestamp = &replied
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
