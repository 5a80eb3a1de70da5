package playstore

import (
	"fmt"

	"playscraper/internal/treepath"
	"playscraper/internal/variant"
)

// logical field names shared by every spec of the same entity
const (
	field_app_id     = "app_id"
	field_title      = "title"
	field_summary    = "summary"
	field_score      = "score"
	field_score_text = "score_text"
	field_url        = "url"
	field_icon_url   = "icon_url"
	field_developer  = "developer"
	field_price_text = "price_text"
	field_price      = "price"
	field_currency   = "currency"

	field_description                = "description"
	field_installs                   = "installs"
	field_min_installs               = "min_installs"
	field_max_installs               = "max_installs"
	field_rating_count               = "rating_count"
	field_review_count               = "review_count"
	field_ratings_histogram          = "ratings_histogram"
	field_is_available               = "is_available"
	field_offers_iap                 = "offers_iap"
	field_iap_price_range            = "iap_price_range"
	field_android_version            = "android_version"
	field_developer_id               = "developer_id"
	field_developer_internal_id      = "developer_internal_id"
	field_developer_email            = "developer_email"
	field_developer_website          = "developer_website"
	field_developer_address          = "developer_address"
	field_privacy_policy_url         = "privacy_policy_url"
	field_genre                      = "genre"
	field_genre_id                   = "genre_id"
	field_family_genre               = "family_genre"
	field_family_genre_id            = "family_genre_id"
	field_header_image_url           = "header_image_url"
	field_screenshots                = "screenshots"
	field_video_url                  = "video_url"
	field_video_thumbnail_url        = "video_thumbnail_url"
	field_content_rating             = "content_rating"
	field_content_rating_description = "content_rating_description"
	field_contains_ads               = "contains_ads"
	field_release_date               = "release_date"
	field_last_update_timestamp      = "last_update_timestamp"
	field_version                    = "version"
	field_last_update_changelog      = "last_update_changelog"
	field_is_editors_choice          = "is_editors_choice"

	field_id               = "id"
	field_author_username  = "author_username"
	field_author_image_url = "author_image_url"
	field_timestamp        = "timestamp"
	field_text             = "text"
	field_reply_timestamp  = "reply_timestamp"
	field_reply_text       = "reply_text"
	field_app_version      = "app_version"
	field_thumbs_up_count  = "thumbs_up_count"
	field_criteria         = "criteria"

	field_items = "items"
	field_token = "token"
)

// pageSpec locates the item list and continuation token of a page.
type pageSpec struct {
	page treepath.Spec
	item treepath.Spec
}

// permissionsSpec locates the categorized permission sections and the flat
// list of leftover permissions that belong to no category.
type permissionsSpec struct {
	sections     []treepath.Path
	categoryType treepath.Path
	permissions  treepath.Path
	description  treepath.Path
	leftover     treepath.Path
}

// specSet holds every positional layout the scraper knows about. It is built
// once by newSpecSet and only read afterwards.
type specSet struct {
	appsInitial    pageSpec
	appsDevIDNaN   pageSpec
	apps           pageSpec
	reviews        pageSpec
	appDetails     treepath.Spec
	screenshotUrl  treepath.Path
	clusterUrl     treepath.Path
	categoryLists  []treepath.Path
	category       treepath.Spec
	allCollections treepath.Path
	collectionsTop variant.Table
	collectionsNew variant.Table
	permissions    permissionsSpec
}

func appSpec(name string, prefix ...any) treepath.Spec {
	p := func(elements ...any) treepath.Path {
		return treepath.Must(append(append([]any{}, prefix...), elements...)...)
	}
	return treepath.NewSpec(name, map[string]treepath.Path{
		field_app_id:     p(0, 0),
		field_title:      p(3),
		field_summary:    p(13, 1),
		field_score:      p(4, 1),
		field_score_text: p(4, 0),
		field_url:        p(10, 4, 2),
		field_icon_url:   p(1, 3, 2),
		field_developer:  p(14),
		field_price_text: p(8, 1, 0, 2),
		field_price:      p(8, 1, 0, 0),
		field_currency:   p(8, 1, 0, 1),
	})
}

func listPage(name string, items, token treepath.Path) treepath.Spec {
	return treepath.NewSpec(name, map[string]treepath.Path{
		field_items: items,
		field_token: token,
	})
}

// collectionTable returns the layout table the collection's listing page is
// resolved with.
func (s specSet) collectionTable(c Collection) variant.Table {
	if c.isNew() {
		return s.collectionsNew
	}
	return s.collectionsTop
}

func (s specSet) validateCollection(c Collection) error {
	if !s.collectionTable(c).Has(string(c)) {
		return &ValidationError{Param: "collection", Reason: fmt.Sprintf("unknown collection %q", c)}
	}
	return nil
}

func newSpecSet() specSet {
	details := func(elements ...any) treepath.Path {
		return treepath.Must(append([]any{"ds:4", 1, 2}, elements...)...)
	}

	collectionSuffixCluster := treepath.Must(0, 3, 4, 2)
	collectionSuffixItems := treepath.Must(0, 0)

	return specSet{
		appsInitial: pageSpec{
			page: listPage(
				"apps_initial_page",
				treepath.Must("ds:3", 0, 1, 0, 21, 0),
				treepath.Must("ds:3", 0, 1, 0, 21, 1, 3, 1),
			),
			item: appSpec("app_initial"),
		},
		appsDevIDNaN: pageSpec{
			page: listPage(
				"apps_dev_id_nan_initial_page",
				treepath.Must("ds:3", 0, 1, 0, 22, 0),
				treepath.Must("ds:3", 0, 1, 0, 22, 1, 3, 1),
			),
			item: appSpec("app_dev_id_nan", 0),
		},
		apps: pageSpec{
			page: listPage(
				"apps_page",
				treepath.Must(0, 2, 0, 0, 0),
				treepath.Must(0, 2, 0, 0, 7, 1),
			),
			item: treepath.NewSpec("app", map[string]treepath.Path{
				field_app_id:     treepath.Must(12, 0),
				field_title:      treepath.Must(2),
				field_summary:    treepath.Must(4, 1, 1, 1, 1),
				field_score:      treepath.Must(6, 0, 2, 1, 1),
				field_score_text: treepath.Must(6, 0, 2, 1, 0),
				field_url:        treepath.Must(9, 4, 2),
				field_icon_url:   treepath.Must(1, 1, 0, 3, 2),
				field_developer:  treepath.Must(4, 0, 0, 0),
				field_price_text: treepath.Must(7, 0, 3, 2, 1, 0, 2),
				field_price:      treepath.Must(7, 0, 3, 2, 1, 0, 0),
				field_currency:   treepath.Must(7, 0, 3, 2, 1, 0, 1),
			}),
		},
		reviews: pageSpec{
			page: listPage(
				"reviews_page",
				treepath.Must(0, 2, 0),
				treepath.Must(0, 2, 1, 1),
			),
			item: treepath.NewSpec("app_review", map[string]treepath.Path{
				field_id:               treepath.Must(0),
				field_author_username:  treepath.Must(1, 0),
				field_author_image_url: treepath.Must(1, 1, 3, 2),
				field_timestamp:        treepath.Must(5),
				field_score:            treepath.Must(2),
				field_text:             treepath.Must(4),
				field_reply_timestamp:  treepath.Must(7, 2),
				field_reply_text:       treepath.Must(7, 1),
				field_app_version:      treepath.Must(10),
				field_thumbs_up_count:  treepath.Must(6),
				field_criteria:         treepath.Must(12, 0),
			}),
		},
		appDetails: treepath.NewSpec("app_details", map[string]treepath.Path{
			field_title:                      details(0, 0),
			field_description:                details(72, 0, 1),
			field_summary:                    details(73, 0, 1),
			field_installs:                   details(13, 0),
			field_min_installs:               details(13, 1),
			field_max_installs:               details(13, 2),
			field_score:                      details(51, 0, 1),
			field_score_text:                 details(51, 0, 0),
			field_rating_count:               details(51, 2, 1),
			field_review_count:               details(51, 3, 1),
			field_ratings_histogram:          details(51, 1),
			field_price_text:                 details(57, 0, 0, 0, 0, 1, 0, 2),
			field_price:                      details(57, 0, 0, 0, 0, 1, 0, 0),
			field_currency:                   details(57, 0, 0, 0, 0, 1, 0, 1),
			field_is_available:               details(18, 0),
			field_offers_iap:                 details(19, 0),
			field_iap_price_range:            details(19, 0),
			field_android_version:            details(140, 1, 1, 0, 0, 1),
			field_developer:                  details(68, 0),
			field_developer_id:               details(68, 1, 4, 2),
			field_developer_internal_id:      details(68, 1, 4, 2),
			field_developer_email:            details(69, 1, 0),
			field_developer_website:          details(69, 0, 5, 2),
			field_developer_address:          details(69, 2, 0),
			field_privacy_policy_url:         details(99, 0, 5, 2),
			field_genre:                      details(79, 0, 0, 0),
			field_genre_id:                   details(79, 0, 0, 2),
			field_family_genre:               treepath.Must("ds:5", 0, 12, 13, 1, 0),
			field_family_genre_id:            treepath.Must("ds:5", 0, 12, 13, 1, 2),
			field_icon_url:                   details(95, 0, 3, 2),
			field_header_image_url:           details(96, 0, 3, 2),
			field_screenshots:                details(78, 0),
			field_video_url:                  details(100, 0, 0, 3, 2),
			field_video_thumbnail_url:        details(100, 1, 0, 3, 2),
			field_content_rating:             details(9, 0),
			field_content_rating_description: details(9, 2, 1),
			field_contains_ads:               details(48),
			field_release_date:               details(10, 0),
			field_last_update_timestamp:      details(145, 0, 1, 0),
			field_version:                    details(140, 0, 0, 0),
			field_last_update_changelog:      details(144, 1, 1),
			field_is_editors_choice:          treepath.Must("ds:5", 0, 12, 15, 0),
		}),
		screenshotUrl: treepath.Must(3, 2),
		clusterUrl:    treepath.Must("ds:7", 1, 1, 0, 0, 3, 4, 2),
		categoryLists: []treepath.Path{
			treepath.Must("ds:0", 0, 1, 0, 3, 0, 3),
			treepath.Must("ds:0", 0, 1, 0, 3, 1, 3),
			treepath.Must("ds:0", 0, 1, 0, 3, 2, 3),
		},
		category: treepath.NewSpec("category", map[string]treepath.Path{
			field_id:    treepath.Must(1, 0),
			field_title: treepath.Must(1, 1),
		}),
		allCollections: treepath.Must("ds:3", 0, 1),
		collectionsTop: variant.NewTable(
			"collections_top",
			collectionSuffixCluster,
			collectionSuffixItems,
			map[int]map[string]treepath.Path{
				2: {
					string(TOP_FREE): treepath.Must(0),
					string(TOP_PAID): treepath.Must(1),
				},
				3: {
					string(TOP_FREE): treepath.Must(0),
					string(TOP_PAID): treepath.Must(1),
					string(GROSSING): treepath.Must(2),
				},
				4: {
					string(TOP_FREE): treepath.Must(0),
					string(GROSSING): treepath.Must(1),
					string(TRENDING): treepath.Must(2),
					string(TOP_PAID): treepath.Must(3),
				},
				6: {
					string(TOP_FREE):           treepath.Must(0),
					string(TOP_PAID):           treepath.Must(1),
					string(GROSSING):           treepath.Must(2),
					string(TOP_FREE_GAMES):     treepath.Must(3),
					string(TOP_PAID_GAMES):     treepath.Must(4),
					string(TOP_GROSSING_GAMES): treepath.Must(5),
				},
			},
		),
		collectionsNew: variant.NewTable(
			"collections_new",
			collectionSuffixCluster,
			collectionSuffixItems,
			map[int]map[string]treepath.Path{
				1: {
					string(NEW_FREE): treepath.Must(0),
				},
				2: {
					string(NEW_FREE): treepath.Must(0),
					string(NEW_PAID): treepath.Must(1),
				},
				4: {
					string(NEW_FREE):       treepath.Must(0),
					string(NEW_PAID):       treepath.Must(1),
					string(NEW_FREE_GAMES): treepath.Must(2),
					string(NEW_PAID_GAMES): treepath.Must(3),
				},
			},
		),
		permissions: permissionsSpec{
			sections: []treepath.Path{
				treepath.Must(0, 2, 0),
				treepath.Must(0, 2, 1),
			},
			categoryType: treepath.Must(0),
			permissions:  treepath.Must(2),
			description:  treepath.Must(1),
			leftover:     treepath.Must(0, 2, 2),
		},
	}
}
