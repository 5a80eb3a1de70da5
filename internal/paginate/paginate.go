// Package paginate assembles a list of items out of continuation-token
// paged responses.
package paginate

import (
	"context"
	"fmt"

	"playscraper/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("playscraper.internal.paginate")
var meter = otel.Meter("playscraper.internal.paginate")
var pagesCounter, _ = meter.Int64Counter("paginate_pages_fetched")
var itemsCounter, _ = meter.Int64Counter("paginate_items_fetched")

const (
	report_paginate_items = "paginate.items"
)

// PagedBatch is one decoded page. NextToken is forwarded verbatim to the
// next fetch, it is empty on the last page.
type PagedBatch[T any] struct {
	Items     []T
	NextToken string
}

// RawResponse is the outcome of one fetch.
type RawResponse struct {
	StatusCode int
	Body       string
}

func (r RawResponse) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HttpError is returned for a fetch that completed with a non-success
// status.
type HttpError struct {
	StatusCode int
	Snippet    string
}

func (e *HttpError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("http: status %d", e.StatusCode)
	}
	return fmt.Sprintf("http: status %d: %s", e.StatusCode, e.Snippet)
}

const httpSnippetLength = 200

// NewHttpError builds the error for a non-success response, keeping the head
// of the body.
func NewHttpError(res RawResponse) *HttpError {
	body := []rune(res.Body)
	if len(body) > httpSnippetLength {
		body = append(body[:httpSnippetLength], []rune("...")...)
	}
	return &HttpError{StatusCode: res.StatusCode, Snippet: string(body)}
}

// Throttler paces requests, Wait blocks until the next fetch may start.
type Throttler interface {
	Wait(ctx context.Context) error
}

type (
	Fetch             func(ctx context.Context) (RawResponse, error)
	FetchNext         func(ctx context.Context, token string) (RawResponse, error)
	DecodeBatch[T any] func(raw string) (PagedBatch[T], error)
)

// Request describes a paginated retrieval. The first page may be fetched and
// decoded differently from the following ones.
type Request[T any] struct {
	// Name identifies the operation in traces and reports.
	Name string
	// Budget is the maximum number of items returned.
	Budget int

	Initial       Fetch
	InitialDecode DecodeBatch[T]
	Next          FetchNext
	NextDecode    DecodeBatch[T]

	// Throttler is optional.
	Throttler Throttler
}

type pendingPage[T any] struct {
	fetch  Fetch
	decode DecodeBatch[T]
}

// FetchContinuously fetches pages one after another until the budget is met
// or no continuation token is returned. Any failure aborts the whole run and
// no partial result is returned. The result is truncated to the budget.
func FetchContinuously[T any](ctx context.Context, tel telemetry.API, req Request[T]) ([]T, error) {
	ctx, span := tracer.Start(ctx, "FetchContinuously:"+req.Name)
	defer span.End()
	span.SetAttributes(attribute.Int("budget", req.Budget))

	if req.Budget <= 0 {
		return []T{}, nil
	}

	var items []T
	queue := []pendingPage[T]{{fetch: req.Initial, decode: req.InitialDecode}}
	for page := 0; len(queue) > 0; page++ {
		current := queue[0]
		queue = queue[1:]

		batch, err := fetchPage(ctx, req, current)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("page %d failed", page))
			return nil, fmt.Errorf("%s: page %d: %w", req.Name, page, err)
		}
		items = append(items, batch.Items...)

		pagesCounter.Add(ctx, 1)
		itemsCounter.Add(ctx, int64(len(batch.Items)))
		span.AddEvent("page")

		if len(items) < req.Budget && batch.NextToken != "" {
			token := batch.NextToken
			queue = append(queue, pendingPage[T]{
				fetch: func(ctx context.Context) (RawResponse, error) {
					return req.Next(ctx, token)
				},
				decode: req.NextDecode,
			})
		}
	}

	if len(items) > req.Budget {
		items = items[:req.Budget]
	}
	if items == nil {
		items = []T{}
	}
	tel.ReportCount(report_paginate_items, int64(len(items)))
	return items, nil
}

func fetchPage[T any](ctx context.Context, req Request[T], page pendingPage[T]) (PagedBatch[T], error) {
	if req.Throttler != nil {
		err := req.Throttler.Wait(ctx)
		if err != nil {
			return PagedBatch[T]{}, err
		}
	}

	res, err := page.fetch(ctx)
	if err != nil {
		return PagedBatch[T]{}, fmt.Errorf("fetch: %w", err)
	}
	if !res.Success() {
		return PagedBatch[T]{}, NewHttpError(res)
	}

	batch, err := page.decode(res.Body)
	if err != nil {
		return PagedBatch[T]{}, fmt.Errorf("decode: %w", err)
	}
	return batch, nil
}
