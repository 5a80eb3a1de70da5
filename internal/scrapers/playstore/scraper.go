// Package playstore scrapes app listings, details, reviews and permissions
// from the Google Play store web front.
package playstore

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"playscraper/internal/components/assert"
	"playscraper/internal/components/telemetry"
	"playscraper/internal/decode"
	"playscraper/internal/paginate"
	"playscraper/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("playscraper.internal.scrapers.playstore")

const (
	report_scraper_categories     = "scraper.categories"
	report_scraper_app_details    = "scraper.app-details"
	report_scraper_apps           = "scraper.apps"
	report_scraper_developer_apps = "scraper.developer-apps"
	report_scraper_similar_apps   = "scraper.similar-apps"
	report_scraper_search         = "scraper.search"
	report_scraper_reviews        = "scraper.reviews"
	report_scraper_permissions    = "scraper.permissions"
)

const (
	DefaultLanguage = "en"
	DefaultCountry  = "us"
)

type Config struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// Language and Country are used by operations that leave their locale
	// empty.
	Language string
	Country  string

	// RequestsPerSecond caps the request rate of the client, 0 disables the
	// cap.
	RequestsPerSecond float64
	Timeout           time.Duration
	UserAgents        []string

	// Throttler paces the pages of paginated operations, it defaults to
	// NoThrottling.
	Throttler paginate.Throttler

	// Decode defaults to decode.DefaultOptions.
	Decode *decode.Options
}

type Scraper struct {
	client    *client
	parser    parser
	throttler paginate.Throttler
	language  string
	country   string

	tel telemetry.API
}

func New(cfg Config, tel telemetry.API) (*Scraper, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("playstore_scraper", tel)

	if cfg.BaseUrl == "" {
		cfg.BaseUrl = DefaultBaseUrl
	}
	cfg.BaseUrl = strings.TrimSuffix(cfg.BaseUrl, "/")
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	if cfg.Throttler == nil {
		cfg.Throttler = NoThrottling{}
	}
	opts := decode.DefaultOptions
	if cfg.Decode != nil {
		opts = *cfg.Decode
	}

	c, err := newClient(clientOptions{
		baseUrl:           cfg.BaseUrl,
		requestsPerSecond: cfg.RequestsPerSecond,
		timeout:           cfg.Timeout,
		userAgents:        cfg.UserAgents,
	}, tel)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		client: c,
		parser: newParser(
			newSpecSet(),
			cfg.BaseUrl,
			decode.NewDecoder(opts, tel),
			decode.NewListDecoder(opts, tel),
		),
		throttler: cfg.Throttler,
		language:  cfg.Language,
		country:   cfg.Country,
		tel:       tel,
	}, nil
}

// Locale selects the language and country of the store front, empty fields
// fall back to the scraper's defaults.
type Locale struct {
	Language string
	Country  string
}

func (s *Scraper) locale(l Locale) Locale {
	if l.Language == "" {
		l.Language = s.language
	}
	if l.Country == "" {
		l.Country = s.country
	}
	return l
}

func (l Locale) query() map[string]string {
	return localeQuery(l.Language, l.Country)
}

func (l Locale) validate() error {
	return validateLocale(l.Language, l.Country)
}

// fail records err on the span and reports it as broken.
func (s *Scraper) fail(span trace.Span, id string, err error) error {
	s.tel.ReportBroken(id, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// fetchOne performs a request that is not part of a paginated run.
func fetchOne(ctx context.Context, fetch paginate.Fetch) (string, error) {
	res, err := fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	if !res.Success() {
		return "", paginate.NewHttpError(res)
	}
	return res.Body, nil
}

type CategoriesParams struct {
	Locale
}

func (s *Scraper) Categories(ctx context.Context, params CategoriesParams) ([]Category, error) {
	ctx, span := tracer.Start(ctx, "Categories")
	defer span.End()

	locale := s.locale(params.Locale)
	if err := locale.validate(); err != nil {
		return nil, err
	}

	body, err := fetchOne(ctx, func(ctx context.Context) (paginate.RawResponse, error) {
		return s.client.get(ctx, "/store/apps", locale.query())
	})
	if err != nil {
		return nil, s.fail(span, report_scraper_categories, fmt.Errorf("categories: %w", err))
	}
	categories, err := s.parser.categories(body)
	if err != nil {
		return nil, s.fail(span, report_scraper_categories, fmt.Errorf("categories: %w", err))
	}
	s.tel.ReportCount(report_scraper_categories, int64(len(categories)))
	return categories, nil
}

type AppDetailsParams struct {
	AppID string
	Locale
}

func (s *Scraper) detailsQuery(appID string, locale Locale) map[string]string {
	query := locale.query()
	query["id"] = appID
	return query
}

func (s *Scraper) AppDetails(ctx context.Context, params AppDetailsParams) (AppDetails, error) {
	ctx, span := tracer.Start(ctx, "AppDetails")
	defer span.End()
	span.SetAttributes(attribute.String("app_id", params.AppID))

	locale := s.locale(params.Locale)
	if err := firstError(validateAppID(params.AppID), locale.validate()); err != nil {
		return AppDetails{}, err
	}

	body, err := fetchOne(ctx, func(ctx context.Context) (paginate.RawResponse, error) {
		return s.client.get(ctx, "/store/apps/details", s.detailsQuery(params.AppID, locale))
	})
	if err != nil {
		return AppDetails{}, s.fail(span, report_scraper_app_details, fmt.Errorf("app details %s: %w", params.AppID, err))
	}
	details, err := s.parser.appDetails(body, params.AppID)
	if err != nil {
		return AppDetails{}, s.fail(span, report_scraper_app_details, fmt.Errorf("app details %s: %w", params.AppID, err))
	}
	return details, nil
}

// appsFromCluster paginates through a listing, the first page is the html
// cluster page and every following one comes from the apps rpc.
func (s *Scraper) appsFromCluster(
	ctx context.Context,
	name string,
	initial paginate.Fetch,
	initialSpec pageSpec,
	locale Locale,
	limit int,
) ([]App, error) {
	return paginate.FetchContinuously(ctx, s.tel, paginate.Request[App]{
		Name:          name,
		Budget:        limit,
		Initial:       initial,
		InitialDecode: s.parser.appsPage(initialSpec),
		Next: func(ctx context.Context, token string) (paginate.RawResponse, error) {
			body, err := appsRequestBody(token, appsPageSize)
			if err != nil {
				return paginate.RawResponse{}, err
			}
			return s.client.batchexecute(ctx, rpc_apps, locale.Language, locale.Country, body)
		},
		NextDecode: s.parser.appsPage(s.parser.specs.apps),
		Throttler:  s.throttler,
	})
}

func (s *Scraper) clusterFetch(clusterUrl string, locale Locale) paginate.Fetch {
	return func(ctx context.Context) (paginate.RawResponse, error) {
		return s.client.get(ctx, clusterUrl, locale.query())
	}
}

type AppsParams struct {
	Collection Collection
	// Category narrows the collection down to a category id as returned by
	// Categories, it is optional.
	Category string
	Limit    int
	Locale
}

func (s *Scraper) Apps(ctx context.Context, params AppsParams) ([]App, error) {
	ctx, span := tracer.Start(ctx, "Apps")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", string(params.Collection)),
		attribute.String("category", params.Category),
	)

	locale := s.locale(params.Locale)
	err := firstError(
		s.parser.specs.validateCollection(params.Collection),
		locale.validate(),
		validateLimit(params.Limit),
	)
	if err != nil {
		return nil, err
	}

	path := "/store/apps/top"
	if params.Collection.isNew() {
		path = "/store/apps/new"
	}
	if params.Category != "" {
		path += "/category/" + url.PathEscape(params.Category)
	}

	body, err := fetchOne(ctx, func(ctx context.Context) (paginate.RawResponse, error) {
		return s.client.get(ctx, path, locale.query())
	})
	if err != nil {
		return nil, s.fail(span, report_scraper_apps, fmt.Errorf("apps %s: %w", params.Collection, err))
	}
	clusterUrl, err := s.parser.clusterUrl(body, params.Collection)
	if err != nil {
		return nil, s.fail(span, report_scraper_apps, fmt.Errorf("apps %s: %w", params.Collection, err))
	}

	apps, err := s.appsFromCluster(
		ctx,
		"apps",
		s.clusterFetch(clusterUrl, locale),
		s.parser.specs.appsInitial,
		locale,
		params.Limit,
	)
	if err != nil {
		return nil, s.fail(span, report_scraper_apps, err)
	}
	return apps, nil
}

type DeveloperAppsParams struct {
	// DevID is either the numeric developer id or the developer name.
	DevID string
	Limit int
	Locale
}

var numericDevID = regexp.MustCompile(`^[0-9]+$`)

func (s *Scraper) DeveloperApps(ctx context.Context, params DeveloperAppsParams) ([]App, error) {
	ctx, span := tracer.Start(ctx, "DeveloperApps")
	defer span.End()
	span.SetAttributes(attribute.String("dev_id", params.DevID))

	locale := s.locale(params.Locale)
	err := firstError(
		validateNotBlank("developer id", params.DevID),
		locale.validate(),
		validateLimit(params.Limit),
	)
	if err != nil {
		return nil, err
	}

	path := "/store/apps/developer"
	spec := s.parser.specs.appsDevIDNaN
	if numericDevID.MatchString(params.DevID) {
		path = "/store/apps/dev"
		spec = s.parser.specs.appsInitial
	}
	query := locale.query()
	query["id"] = params.DevID

	apps, err := s.appsFromCluster(
		ctx,
		"developer_apps",
		func(ctx context.Context) (paginate.RawResponse, error) {
			return s.client.get(ctx, path, query)
		},
		spec,
		locale,
		params.Limit,
	)
	if err != nil {
		return nil, s.fail(span, report_scraper_developer_apps, err)
	}
	return apps, nil
}

type SimilarAppsParams struct {
	AppID string
	Limit int
	Locale
}

func (s *Scraper) SimilarApps(ctx context.Context, params SimilarAppsParams) ([]App, error) {
	ctx, span := tracer.Start(ctx, "SimilarApps")
	defer span.End()
	span.SetAttributes(attribute.String("app_id", params.AppID))

	locale := s.locale(params.Locale)
	err := firstError(
		validateAppID(params.AppID),
		locale.validate(),
		validateLimit(params.Limit),
	)
	if err != nil {
		return nil, err
	}

	body, err := fetchOne(ctx, func(ctx context.Context) (paginate.RawResponse, error) {
		return s.client.get(ctx, "/store/apps/details", s.detailsQuery(params.AppID, locale))
	})
	if err != nil {
		return nil, s.fail(span, report_scraper_similar_apps, fmt.Errorf("similar apps %s: %w", params.AppID, err))
	}
	clusterUrl, err := s.parser.similarClusterUrl(body)
	if err != nil {
		return nil, s.fail(span, report_scraper_similar_apps, fmt.Errorf("similar apps %s: %w", params.AppID, err))
	}

	apps, err := s.appsFromCluster(
		ctx,
		"similar_apps",
		s.clusterFetch(clusterUrl, locale),
		s.parser.specs.appsInitial,
		locale,
		params.Limit,
	)
	if err != nil {
		return nil, s.fail(span, report_scraper_similar_apps, err)
	}
	return apps, nil
}

type SearchParams struct {
	Query string
	Limit int
	Locale
}

const moreResultsSelector = `a[href*="search_collection_more_results_cluster"]`

// moreResultsLink finds the link to the full result listing, small result
// sets are rendered on the search page itself and carry no such link.
func moreResultsLink(ctx context.Context, body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", err
	}
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find(moreResultsSelector)) {
		if strings.HasPrefix(anchor.Href, "/store/apps/collection/") {
			return anchor.Href, nil
		}
	}
	return "", nil
}

func (s *Scraper) Search(ctx context.Context, params SearchParams) ([]App, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", params.Query))

	locale := s.locale(params.Locale)
	err := firstError(
		validateNotBlank("query", params.Query),
		locale.validate(),
		validateLimit(params.Limit),
	)
	if err != nil {
		return nil, err
	}

	query := locale.query()
	query["c"] = "apps"
	query["q"] = params.Query
	body, err := fetchOne(ctx, func(ctx context.Context) (paginate.RawResponse, error) {
		return s.client.get(ctx, "/store/search", query)
	})
	if err != nil {
		return nil, s.fail(span, report_scraper_search, fmt.Errorf("search %q: %w", params.Query, err))
	}

	link, err := moreResultsLink(ctx, body)
	if err != nil {
		return nil, s.fail(span, report_scraper_search, fmt.Errorf("search %q: %w", params.Query, err))
	}
	initial := func(ctx context.Context) (paginate.RawResponse, error) {
		return paginate.RawResponse{StatusCode: 200, Body: body}, nil
	}
	if link != "" {
		s.tel.ReportDebug(report_scraper_search, "following more results", link)
		initial = s.clusterFetch(link, locale)
	}

	apps, err := s.appsFromCluster(
		ctx,
		"search",
		initial,
		s.parser.specs.appsInitial,
		locale,
		params.Limit,
	)
	if err != nil {
		return nil, s.fail(span, report_scraper_search, err)
	}
	return apps, nil
}

type ReviewsParams struct {
	AppID string
	// Sort defaults to SORT_NEWEST.
	Sort  ReviewSort
	Limit int
	Locale
}

func (s *Scraper) Reviews(ctx context.Context, params ReviewsParams) ([]AppReview, error) {
	ctx, span := tracer.Start(ctx, "Reviews")
	defer span.End()
	span.SetAttributes(attribute.String("app_id", params.AppID))

	locale := s.locale(params.Locale)
	err := firstError(
		validateAppID(params.AppID),
		locale.validate(),
		validateLimit(params.Limit),
	)
	if err != nil {
		return nil, err
	}
	sort := params.Sort
	if sort == 0 {
		sort = SORT_NEWEST
	}

	fetch := func(ctx context.Context, token string) (paginate.RawResponse, error) {
		body, err := reviewsRequestBody(params.AppID, sort, token)
		if err != nil {
			return paginate.RawResponse{}, err
		}
		return s.client.batchexecute(ctx, rpc_reviews, locale.Language, locale.Country, body)
	}
	decodePage := s.parser.reviewsPage(params.AppID)

	reviews, err := paginate.FetchContinuously(ctx, s.tel, paginate.Request[AppReview]{
		Name:   "reviews",
		Budget: params.Limit,
		Initial: func(ctx context.Context) (paginate.RawResponse, error) {
			return fetch(ctx, "")
		},
		InitialDecode: decodePage,
		Next:          fetch,
		NextDecode:    decodePage,
		Throttler:     s.throttler,
	})
	if err != nil {
		return nil, s.fail(span, report_scraper_reviews, err)
	}
	return reviews, nil
}

type PermissionsParams struct {
	AppID string
	Locale
}

func (s *Scraper) Permissions(ctx context.Context, params PermissionsParams) ([]Permission, error) {
	ctx, span := tracer.Start(ctx, "Permissions")
	defer span.End()
	span.SetAttributes(attribute.String("app_id", params.AppID))

	locale := s.locale(params.Locale)
	if err := firstError(validateAppID(params.AppID), locale.validate()); err != nil {
		return nil, err
	}

	reqBody, err := permissionsRequestBody(params.AppID)
	if err != nil {
		return nil, err
	}
	body, err := fetchOne(ctx, func(ctx context.Context) (paginate.RawResponse, error) {
		return s.client.batchexecute(ctx, rpc_permissions, locale.Language, locale.Country, reqBody)
	})
	if err != nil {
		return nil, s.fail(span, report_scraper_permissions, fmt.Errorf("permissions %s: %w", params.AppID, err))
	}
	permissions, err := s.parser.permissions(body)
	if err != nil {
		return nil, s.fail(span, report_scraper_permissions, fmt.Errorf("permissions %s: %w", params.AppID, err))
	}
	return permissions, nil
}
