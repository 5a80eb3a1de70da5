// client.go holds the transport side of the scraper, it knows how to reach
// the store but nothing about what the responses mean.

package playstore

import (
	"context"
	"fmt"
	"math"
	"net/http/cookiejar"
	"net/url"
	"time"

	"playscraper/internal/components/assert"
	"playscraper/internal/components/telemetry"
	"playscraper/internal/paginate"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_get          = "client.get"
	report_client_batchexecute = "client.batchexecute"
)

const DefaultBaseUrl = "https://play.google.com"

type clientOptions struct {
	baseUrl           string
	requestsPerSecond float64
	timeout           time.Duration
	userAgents        []string
}

type client struct {
	baseUrl *url.URL
	http    *resty.Client
	agents  userAgents

	tel telemetry.API
}

func newClient(opts clientOptions, tel telemetry.API) (*client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.baseUrl)

	parsedBaseUrl, err := url.Parse(opts.baseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	timeout := opts.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient.SetTimeout(timeout)

	c := &client{
		baseUrl: parsedBaseUrl,
		http:    httpClient,
		agents:  newUserAgents(opts.userAgents),
		tel:     tel,
	}

	// a burst of at least one request per second means no request is
	// ever dropped, only delayed
	limit := rate.Inf
	burst := 1
	if opts.requestsPerSecond > 0 {
		limit = rate.Limit(opts.requestsPerSecond)
		burst = int(math.Max(1, math.Ceil(opts.requestsPerSecond)))
	}
	rateLimiter := rate.NewLimiter(limit, burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("user-agent", c.agents.next())
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)

	return c, nil
}

// get fetches a page of the store, path may already carry a query string in
// which case query is appended to it.
func (c *client) get(ctx context.Context, path string, query map[string]string) (paginate.RawResponse, error) {
	c.tel.ReportDebug(report_client_get, path)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return paginate.RawResponse{}, fmt.Errorf("get %s: %w", path, err)
	}
	return paginate.RawResponse{
		StatusCode: res.StatusCode(),
		Body:       res.String(),
	}, nil
}

// batchexecute posts an rpc envelope built by one of the *RequestBody
// functions.
func (c *client) batchexecute(ctx context.Context, rpcID, language, country, body string) (paginate.RawResponse, error) {
	c.tel.ReportDebug(report_client_batchexecute, rpcID)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(batchexecuteQuery(rpcID, language, country)).
		SetFormData(map[string]string{
			"f.req": body,
		}).
		Post(batchexecutePath)
	if err != nil {
		return paginate.RawResponse{}, fmt.Errorf("batchexecute %s: %w", rpcID, err)
	}
	return paginate.RawResponse{
		StatusCode: res.StatusCode(),
		Body:       res.String(),
	}, nil
}
