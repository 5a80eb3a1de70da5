package paginate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"playscraper/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

// fakeServer serves pages of sequential integers, the token of page n is
// "page-n".
type fakeServer struct {
	pageSizes  []int
	failOnPage int
	requests   []string
}

func (s *fakeServer) page(n int) RawResponse {
	if s.failOnPage == n {
		return RawResponse{StatusCode: 503, Body: "unavailable"}
	}
	start := 0
	for _, size := range s.pageSizes[:n] {
		start += size
	}
	values := []string{}
	for i := 0; i < s.pageSizes[n]; i++ {
		values = append(values, strconv.Itoa(start+i))
	}
	token := ""
	if n+1 < len(s.pageSizes) {
		token = fmt.Sprintf("page-%d", n+1)
	}
	return RawResponse{StatusCode: 200, Body: token + "|" + strings.Join(values, ",")}
}

func (s *fakeServer) request(budget int) Request[int] {
	return Request[int]{
		Name:   "test",
		Budget: budget,
		Initial: func(ctx context.Context) (RawResponse, error) {
			s.requests = append(s.requests, "initial")
			return s.page(0), nil
		},
		InitialDecode: decodeInts,
		Next: func(ctx context.Context, token string) (RawResponse, error) {
			s.requests = append(s.requests, token)
			n, err := strconv.Atoi(strings.TrimPrefix(token, "page-"))
			if err != nil {
				return RawResponse{}, err
			}
			return s.page(n), nil
		},
		NextDecode: decodeInts,
	}
}

func decodeInts(raw string) (PagedBatch[int], error) {
	token, values, ok := strings.Cut(raw, "|")
	if !ok {
		return PagedBatch[int]{}, errors.New("missing separator")
	}
	batch := PagedBatch[int]{NextToken: token, Items: []int{}}
	if values == "" {
		return batch, nil
	}
	for _, v := range strings.Split(values, ",") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return PagedBatch[int]{}, err
		}
		batch.Items = append(batch.Items, n)
	}
	return batch, nil
}

func TestFetchContinuouslyBudget(t *testing.T) {
	testCases := []struct {
		name      string
		pageSizes []int
		budget    int
		expected  int
		requests  int
	}{
		{name: "budget within first page", pageSizes: []int{5, 5, 5}, budget: 3, expected: 3, requests: 1},
		{name: "budget at page boundary", pageSizes: []int{5, 5, 5}, budget: 10, expected: 10, requests: 2},
		{name: "overshoot is discarded", pageSizes: []int{5, 5, 5}, budget: 7, expected: 7, requests: 2},
		{name: "token exhaustion", pageSizes: []int{5, 5, 5}, budget: 100, expected: 15, requests: 3},
		{name: "empty page keeps going", pageSizes: []int{2, 0, 2}, budget: 4, expected: 4, requests: 3},
		{name: "zero budget", pageSizes: []int{5}, budget: 0, expected: 0, requests: 0},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			server := &fakeServer{pageSizes: test.pageSizes, failOnPage: -1}
			rec := telemetry.NewRecorder()

			items, err := FetchContinuously(context.Background(), rec, server.request(test.budget))
			require.NoError(t, err)
			require.Len(t, items, test.expected)
			require.Len(t, server.requests, test.requests)
			for i, item := range items {
				require.Equal(t, i, item)
			}
		})
	}
}

func TestFetchContinuouslyFailFast(t *testing.T) {
	server := &fakeServer{pageSizes: []int{5, 5, 5}, failOnPage: 1}
	rec := telemetry.NewRecorder()

	items, err := FetchContinuously(context.Background(), rec, server.request(20))
	require.Nil(t, items)

	var httpErr *HttpError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, 503, httpErr.StatusCode)
	require.Equal(t, "unavailable", httpErr.Snippet)
	require.Equal(t, []string{"initial", "page-1"}, server.requests)
	// the caller owns the failure and reports it
	require.Empty(t, rec.Reports("broken"))
}

func TestFetchContinuouslyDecodeFailure(t *testing.T) {
	server := &fakeServer{pageSizes: []int{5, 5}, failOnPage: -1}
	req := server.request(10)
	req.NextDecode = func(raw string) (PagedBatch[int], error) {
		return PagedBatch[int]{}, errors.New("bad page")
	}

	items, err := FetchContinuously(context.Background(), telemetry.NewRecorder(), req)
	require.Nil(t, items)
	require.ErrorContains(t, err, "bad page")
}

func TestFetchContinuouslyFetchError(t *testing.T) {
	server := &fakeServer{pageSizes: []int{5}, failOnPage: -1}
	req := server.request(10)
	boom := errors.New("connection reset")
	req.Initial = func(ctx context.Context) (RawResponse, error) {
		return RawResponse{}, boom
	}

	_, err := FetchContinuously(context.Background(), telemetry.NewRecorder(), req)
	require.ErrorIs(t, err, boom)
}

type countingThrottler struct {
	calls int
	err   error
}

func (c *countingThrottler) Wait(ctx context.Context) error {
	c.calls++
	return c.err
}

func TestFetchContinuouslyThrottler(t *testing.T) {
	server := &fakeServer{pageSizes: []int{1, 1, 1}, failOnPage: -1}
	throttler := &countingThrottler{}
	req := server.request(3)
	req.Throttler = throttler

	items, err := FetchContinuously(context.Background(), telemetry.NewRecorder(), req)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, items)
	require.Equal(t, 3, throttler.calls)

	throttler.err = context.Canceled
	_, err = FetchContinuously(context.Background(), telemetry.NewRecorder(), req)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewHttpErrorTruncates(t *testing.T) {
	err := NewHttpError(RawResponse{StatusCode: 429, Body: strings.Repeat("x", 1000)})
	require.Equal(t, 429, err.StatusCode)
	require.Len(t, err.Snippet, httpSnippetLength+3)
	require.Contains(t, err.Error(), "429")
}
