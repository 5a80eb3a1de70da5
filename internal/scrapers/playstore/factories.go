package playstore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"playscraper/internal/tree"
	"playscraper/internal/treepath"
)

var (
	priceRegex    = regexp.MustCompile(`([0-9]+[.,][0-9]*)`)
	currencyRegex = regexp.MustCompile(`([^0-9.,\s]+)`)
)

const releaseDateLayout = "Jan 2, 2006"

// parsePrice returns nil when the text holds no price, which means the app
// is free.
func parsePrice(priceText string) *float64 {
	match := priceRegex.FindString(priceText)
	if match == "" {
		return nil
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &price
}

func parseCurrency(priceText string) string {
	return currencyRegex.FindString(priceText)
}

// developerID cuts the developer id out of a developer page link.
func developerID(link string) string {
	_, after, found := strings.Cut(link, "?id=")
	if !found {
		return link
	}
	return after
}

func optionalFloat(fields treepath.FieldMap, field string) *float64 {
	f, ok := fields.Float(field)
	if !ok {
		return nil
	}
	return &f
}

func newApp(fields treepath.FieldMap, baseUrl string) (App, error) {
	appID, err := fields.RequireString(field_app_id)
	if err != nil {
		return App{}, err
	}
	title, err := fields.RequireString(field_title)
	if err != nil {
		return App{}, err
	}
	url, err := fields.RequireString(field_url)
	if err != nil {
		return App{}, err
	}
	icon, err := fields.RequireString(field_icon_url)
	if err != nil {
		return App{}, err
	}
	developer, err := fields.RequireString(field_developer)
	if err != nil {
		return App{}, err
	}

	priceText := fields.StringOr(field_price_text, "")
	price := parsePrice(priceText)
	currency := ""
	if priceText != "" {
		currency = parseCurrency(priceText)
	}

	return App{
		AppID:     appID,
		Title:     title,
		Summary:   fields.StringOr(field_summary, ""),
		Score:     optionalFloat(fields, field_score),
		ScoreText: fields.StringOr(field_score_text, ""),
		Url:       baseUrl + url,
		IconUrl:   icon,
		Developer: developer,
		PriceText: priceText,
		Price:     price,
		Currency:  currency,
		IsFree:    price == nil,
	}, nil
}

// appIsFree decides from the price text alone, it never fails on items that
// miss unrelated fields.
func appIsFree(item tree.Value, spec treepath.Spec) bool {
	p, ok := spec.Path(field_price_text)
	if !ok {
		return true
	}
	text, _ := treepath.Extract(item, p)
	priceText, _ := text.Str()
	return parsePrice(priceText) == nil
}

func newAppDetails(fields treepath.FieldMap, screenshotUrl treepath.Path) (AppDetails, error) {
	var firstErr error
	require := func(field string) string {
		s, err := fields.RequireString(field)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return s
	}

	details := AppDetails{
		Title:                    require(field_title),
		DescriptionHtml:          require(field_description),
		Summary:                  fields.StringOr(field_summary, ""),
		Installs:                 fields.StringOr(field_installs, "0"),
		MinInstalls:              fields.IntOr(field_min_installs, 0),
		MaxInstalls:              fields.IntOr(field_max_installs, 0),
		Score:                    optionalFloat(fields, field_score),
		ScoreText:                fields.StringOr(field_score_text, ""),
		RatingCount:              fields.IntOr(field_rating_count, 0),
		ReviewCount:              fields.IntOr(field_review_count, 0),
		IsAvailable:              fields.Present(field_is_available),
		OffersInAppPurchases:     fields.Present(field_offers_iap),
		InAppPurchasesPriceRange: fields.StringOr(field_iap_price_range, ""),
		Developer:                require(field_developer),
		DeveloperID:              developerID(require(field_developer_id)),
		DeveloperInternalID:      require(field_developer_internal_id),
		DeveloperEmail:           require(field_developer_email),
		DeveloperWebsite:         fields.StringOr(field_developer_website, ""),
		DeveloperAddress:         fields.StringOr(field_developer_address, ""),
		PrivacyPolicyUrl:         fields.StringOr(field_privacy_policy_url, ""),
		Genre:                    require(field_genre),
		GenreID:                  require(field_genre_id),
		FamilyGenre:              fields.StringOr(field_family_genre, ""),
		FamilyGenreID:            fields.StringOr(field_family_genre_id, ""),
		IconUrl:                  require(field_icon_url),
		HeaderImageUrl:           require(field_header_image_url),
		VideoUrl:                 fields.StringOr(field_video_url, ""),
		VideoThumbnailUrl:        fields.StringOr(field_video_thumbnail_url, ""),
		ContentRating:            require(field_content_rating),
		ContentRatingDescription: fields.StringOr(field_content_rating_description, ""),
		ContainsAds:              fields.Present(field_contains_ads),
		Version:                  require(field_version),
		LastUpdateChangelog:      fields.StringOr(field_last_update_changelog, ""),
		IsEditorsChoice:          fields.Present(field_is_editors_choice),
	}
	rawReleaseDate := require(field_release_date)
	if firstErr != nil {
		return AppDetails{}, firstErr
	}

	// the price is given in micros, 0 means free
	micros := fields.IntOr(field_price, 0)
	details.IsFree = micros == 0
	if !details.IsFree {
		price := float64(micros) / 1_000_000
		details.Price = &price
		details.PriceText = fields.StringOr(field_price_text, "")
		details.Currency = fields.StringOr(field_currency, "")
	}

	if text, ok := fields.String(field_android_version); ok {
		details.AndroidVersionText = text
		details.AndroidVersion = "Varies"
		if version, _, _ := strings.Cut(text, " "); version != "" {
			details.AndroidVersion = version
		}
	}

	details.RatingsHistogram = ratingsHistogram(fields)

	screenshots, err := screenshotUrls(fields, screenshotUrl)
	if err != nil {
		return AppDetails{}, err
	}
	details.ScreenshotUrls = screenshots

	releaseDate, err := time.Parse(releaseDateLayout, rawReleaseDate)
	if err != nil {
		return AppDetails{}, fmt.Errorf("field %q: %w", field_release_date, err)
	}
	details.ReleaseDate = releaseDate
	details.LastUpdated = time.Unix(fields.IntOr(field_last_update_timestamp, 0), 0).UTC()

	return details, nil
}

// ratingsHistogram maps the star labels "1".."5" to their rating count. Index
// 0 of the raw histogram is unused.
func ratingsHistogram(fields treepath.FieldMap) map[string]int64 {
	out := make(map[string]int64, 5)
	raw, _ := fields.Array(field_ratings_histogram)
	for stars := 1; stars <= 5; stars++ {
		label := strconv.Itoa(stars)
		out[label] = 0
		if stars >= len(raw) {
			continue
		}
		count, ok := treepath.Extract(raw[stars], treepath.Must(1))
		if !ok {
			continue
		}
		n, _ := count.Int64()
		out[label] = n
	}
	return out
}

func screenshotUrls(fields treepath.FieldMap, urlPath treepath.Path) ([]string, error) {
	raw, ok := fields.Array(field_screenshots)
	if !ok {
		return []string{}, nil
	}
	out := make([]string, 0, len(raw))
	for i, item := range raw {
		v, ok := treepath.Extract(item, urlPath)
		if !ok {
			return nil, fmt.Errorf("screenshot %d: url not found at %s", i, urlPath)
		}
		url, ok := v.Str()
		if !ok {
			return nil, fmt.Errorf("screenshot %d: url is %s", i, v.Kind())
		}
		out = append(out, url)
	}
	return out, nil
}

// reviewTimestamp converts a [seconds, nanos] pair, nanos are optional.
func reviewTimestamp(v tree.Value) (time.Time, bool) {
	seconds, ok := treepath.Extract(v, treepath.Must(0))
	if !ok {
		return time.Time{}, false
	}
	sec, ok := seconds.Int64()
	if !ok {
		return time.Time{}, false
	}
	var nanos int64
	if n, ok := treepath.Extract(v, treepath.Must(1)); ok {
		nanos, _ = n.Int64()
	}
	return time.UnixMilli(sec*1000 + nanos/int64(time.Millisecond)).UTC(), true
}

func newAppReview(fields treepath.FieldMap) (AppReview, error) {
	id, err := fields.RequireString(field_id)
	if err != nil {
		return AppReview{}, err
	}
	author, err := fields.RequireString(field_author_username)
	if err != nil {
		return AppReview{}, err
	}
	authorImage, err := fields.RequireString(field_author_image_url)
	if err != nil {
		return AppReview{}, err
	}
	text, err := fields.RequireString(field_text)
	if err != nil {
		return AppReview{}, err
	}
	score, err := fields.RequireInt(field_score)
	if err != nil {
		return AppReview{}, err
	}
	thumbsUp, err := fields.RequireInt(field_thumbs_up_count)
	if err != nil {
		return AppReview{}, err
	}

	timestamp, ok := reviewTimestamp(fields[field_timestamp])
	if !ok {
		return AppReview{}, fmt.Errorf("field %q: not a [seconds, nanos] pair", field_timestamp)
	}

	review := AppReview{
		ID:             id,
		AuthorUsername: author,
		AuthorImageUrl: authorImage,
		Timestamp:      timestamp,
		Score:          int(score),
		Title:          fields.StringOr(field_title, ""),
		Text:           text,
		ReplyText:      fields.StringOr(field_reply_text, ""),
		AppVersion:     fields.StringOr(field_app_version, ""),
		ThumbsUpCount:  int(thumbsUp),
		Criteria:       []string{},
	}
	if reply, ok := reviewTimestamp(fields[field_reply_timestamp]); ok {
		review.ReplyTimestamp = &reply
	}
	criteria, _ := fields.Array(field_criteria)
	for _, c := range criteria {
		name, ok := treepath.Extract(c, treepath.Must(0))
		if !ok {
			continue
		}
		if s, ok := name.Str(); ok {
			review.Criteria = append(review.Criteria, s)
		}
	}
	return review, nil
}

func newCategory(fields treepath.FieldMap) (Category, error) {
	rawID, err := fields.RequireString(field_id)
	if err != nil {
		return Category{}, err
	}
	title, err := fields.RequireString(field_title)
	if err != nil {
		return Category{}, err
	}
	id := rawID
	if i := strings.LastIndex(rawID, "/"); i >= 0 {
		id = rawID[i+1:]
	}
	return Category{ID: id, Title: title}, nil
}
