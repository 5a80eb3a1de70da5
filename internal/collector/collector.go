// Package collector periodically scrapes the reviews of a set of apps into a
// review sink.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"playscraper/internal/components/assert"
	"playscraper/internal/components/chrono"
	"playscraper/internal/components/telemetry"
	"playscraper/internal/scrapers/playstore"
)

const (
	report_collect_app  = "collect.app"
	report_collect_save = "collect.save"
	report_collect_runs = "collect.reviews"
)

type ReviewSource interface {
	Reviews(ctx context.Context, params playstore.ReviewsParams) ([]playstore.AppReview, error)
}

type ReviewSink interface {
	SaveReviews(ctx context.Context, reviews []playstore.AppReview) error
}

type Options struct {
	AppIDs []string
	Sort   playstore.ReviewSort
	Limit  int
	playstore.Locale
}

type Collector struct {
	source ReviewSource
	sink   ReviewSink
	opts   Options
	time   chrono.TimeAPI
	tel    telemetry.API

	// a tick that fires while a run is in flight is skipped
	running *sync.Mutex
}

func NewCollector(
	source ReviewSource,
	sink ReviewSink,
	opts Options,
	time chrono.TimeAPI,
	tel telemetry.API,
) Collector {
	assert.NotNil(source)
	assert.NotNil(sink)
	assert.NotNil(time)
	assert.NotNil(tel)

	return Collector{
		source:  source,
		sink:    sink,
		opts:    opts,
		time:    time,
		tel:     telemetry.NewScopedAPI("collector", tel),
		running: &sync.Mutex{},
	}
}

// Collect scrapes and saves the reviews of every app once. A failing app does
// not stop the others, the failures are joined into the returned error.
func (c Collector) Collect(ctx context.Context) error {
	start := c.time.Now()

	var errs []error
	var total int64
	for _, appID := range c.opts.AppIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		reviews, err := c.source.Reviews(ctx, playstore.ReviewsParams{
			AppID:  appID,
			Sort:   c.opts.Sort,
			Limit:  c.opts.Limit,
			Locale: c.opts.Locale,
		})
		if err != nil {
			// the source already reported the failure
			c.tel.ReportWarning(report_collect_app, appID, err)
			errs = append(errs, fmt.Errorf("collect %s: %w", appID, err))
			continue
		}
		err = c.sink.SaveReviews(ctx, reviews)
		if err != nil {
			c.tel.ReportBroken(report_collect_save, appID, err)
			errs = append(errs, fmt.Errorf("save %s: %w", appID, err))
			continue
		}
		total += int64(len(reviews))
	}

	c.tel.ReportCount(report_collect_runs, total)
	c.tel.ReportDebug("collected reviews", len(c.opts.AppIDs), c.time.Now().Sub(start).String())
	return errors.Join(errs...)
}

// Schedule runs Collect every time spec fires until ctx is done.
func (c Collector) Schedule(ctx context.Context, cron chrono.CronAPI, spec string) error {
	return cron.Cron(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if !c.running.TryLock() {
			c.tel.ReportWarning("collect.overlap", spec)
			return
		}
		defer c.running.Unlock()
		// failures were reported per app
		_ = c.Collect(ctx)
	})
}
