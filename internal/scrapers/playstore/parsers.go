package playstore

import (
	"errors"
	"fmt"

	"playscraper/internal/decode"
	"playscraper/internal/paginate"
	"playscraper/internal/tree"
	"playscraper/internal/treepath"
	"playscraper/internal/variant"
)

const defaultPermissionType = "Other"

// parser turns raw response bodies into records. It holds no state besides
// the immutable specs and decoders it was built with.
type parser struct {
	specs       specSet
	baseUrl     string
	decoder     decode.Decoder
	listDecoder decode.ListDecoder
}

func newParser(specs specSet, baseUrl string, decoder decode.Decoder, listDecoder decode.ListDecoder) parser {
	return parser{
		specs:       specs,
		baseUrl:     baseUrl,
		decoder:     decoder,
		listDecoder: listDecoder,
	}
}

// pageToken reads the continuation token of a page, an explicit null or a
// missing token both mean there is no next page.
func pageToken(fields treepath.FieldMap) string {
	token, _ := fields.String(field_token)
	return token
}

// appsPage returns the decode step for one page of apps laid out by spec.
func (p parser) appsPage(spec pageSpec) paginate.DecodeBatch[App] {
	return func(raw string) (paginate.PagedBatch[App], error) {
		content, err := p.listDecoder.Decode(raw)
		if err != nil {
			return paginate.PagedBatch[App]{}, err
		}
		page := treepath.ExtractSpec(content, spec.page)
		items, _ := page.Array(field_items)

		apps := make([]App, 0, len(items))
		for i, item := range items {
			app, err := newApp(treepath.ExtractSpec(item, spec.item), p.baseUrl)
			if err != nil {
				return paginate.PagedBatch[App]{}, fmt.Errorf("%s: item %d: %w", spec.item.Name(), i, err)
			}
			apps = append(apps, app)
		}
		return paginate.PagedBatch[App]{Items: apps, NextToken: pageToken(page)}, nil
	}
}

// reviewsPage returns the decode step for a page of reviews, every review is
// stamped with the app it belongs to.
func (p parser) reviewsPage(appID string) paginate.DecodeBatch[AppReview] {
	return func(raw string) (paginate.PagedBatch[AppReview], error) {
		content, err := p.decoder.Decode(raw)
		if err != nil {
			return paginate.PagedBatch[AppReview]{}, err
		}
		page := treepath.ExtractSpec(content, p.specs.reviews.page)
		items, _ := page.Array(field_items)

		reviews := make([]AppReview, 0, len(items))
		for i, item := range items {
			review, err := newAppReview(treepath.ExtractSpec(item, p.specs.reviews.item))
			if err != nil {
				return paginate.PagedBatch[AppReview]{}, fmt.Errorf("review %d: %w", i, err)
			}
			review.AppID = appID
			review.Url = fmt.Sprintf("%s/store/apps/details?id=%s&reviewId=%s", p.baseUrl, appID, review.ID)
			reviews = append(reviews, review)
		}
		return paginate.PagedBatch[AppReview]{Items: reviews, NextToken: pageToken(page)}, nil
	}
}

func (p parser) appDetails(raw, appID string) (AppDetails, error) {
	content, err := p.decoder.Decode(raw)
	if err != nil {
		return AppDetails{}, err
	}
	details, err := newAppDetails(
		treepath.ExtractSpec(content, p.specs.appDetails),
		p.specs.screenshotUrl,
	)
	if err != nil {
		return AppDetails{}, fmt.Errorf("app details: %w", err)
	}
	details.AppID = appID
	details.Url = fmt.Sprintf("%s/store/apps/details?id=%s", p.baseUrl, appID)
	return details, nil
}

func (p parser) categories(raw string) ([]Category, error) {
	content, err := p.decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	categories := []Category{}
	for _, listPath := range p.specs.categoryLists {
		list, ok := treepath.Extract(content, listPath)
		if !ok {
			continue
		}
		items, ok := list.Array()
		if !ok {
			continue
		}
		for i, item := range items {
			category, err := newCategory(treepath.ExtractSpec(item, p.specs.category))
			if err != nil {
				return nil, fmt.Errorf("category %d at %s: %w", i, listPath, err)
			}
			categories = append(categories, category)
		}
	}
	return categories, nil
}

// clusterUrl finds the relative link to the full listing of collection on a
// collection overview page. The paid collection is checked to only hold paid
// apps, the layouts of the free and paid collections are easily confused.
func (p parser) clusterUrl(raw string, collection Collection) (string, error) {
	content, err := p.decoder.Decode(raw)
	if err != nil {
		return "", err
	}
	container, ok := treepath.Extract(content, p.specs.allCollections)
	if !ok || container.Kind() != tree.ArrayKind {
		return "", &variant.ResponseParsingError{
			Reason: fmt.Sprintf("collection %s contains no clusters", collection),
		}
	}

	table := p.specs.collectionTable(collection)
	bundle, err := table.ResolveContainer(container)
	if err != nil {
		return "", err
	}
	clusterPath, err := table.ClusterPath(bundle, string(collection))
	if err != nil {
		return "", err
	}
	link, ok := treepath.Extract(container, clusterPath)
	if !ok {
		return "", &variant.ResponseParsingError{
			Reason: fmt.Sprintf("collection %s cluster url not found", collection),
		}
	}
	url, ok := link.Str()
	if !ok {
		return "", &variant.ResponseParsingError{
			Reason: fmt.Sprintf("collection %s cluster url is %s", collection, link.Kind()),
		}
	}

	if collection == TOP_PAID {
		itemSpec := p.specs.appsInitial.item
		err = table.RequirePaidOnly(container, string(collection), func(item tree.Value) bool {
			return appIsFree(item, itemSpec)
		})
		if err != nil {
			return "", err
		}
	}
	return url, nil
}

// similarClusterUrl finds the link to the similar apps listing on a details
// page.
func (p parser) similarClusterUrl(raw string) (string, error) {
	content, err := p.decoder.Decode(raw)
	if err != nil {
		return "", err
	}
	link, ok := treepath.Extract(content, p.specs.clusterUrl)
	if !ok {
		return "", &variant.ResponseParsingError{Reason: "similar apps cluster url not found"}
	}
	url, ok := link.Str()
	if !ok {
		return "", &variant.ResponseParsingError{
			Reason: fmt.Sprintf("similar apps cluster url is %s", link.Kind()),
		}
	}
	return url, nil
}

func (p parser) permissions(raw string) ([]Permission, error) {
	content, err := p.decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	spec := p.specs.permissions

	out := []Permission{}
	for _, sectionPath := range spec.sections {
		section, ok := treepath.Extract(content, sectionPath)
		if !ok {
			continue
		}
		categories, ok := section.Array()
		if !ok {
			continue
		}
		for _, category := range categories {
			kind := defaultPermissionType
			if v, ok := treepath.Extract(category, spec.categoryType); ok {
				if s, ok := v.Str(); ok {
					kind = s
				}
			}
			list, _ := treepath.Extract(category, spec.permissions)
			permissions, err := permissionList(list, kind, spec.description)
			if err != nil {
				return nil, err
			}
			out = append(out, permissions...)
		}
	}

	leftover, _ := treepath.Extract(content, spec.leftover)
	permissions, err := permissionList(leftover, defaultPermissionType, spec.description)
	if err != nil {
		return nil, err
	}
	return append(out, permissions...), nil
}

var errNoDescription = errors.New("permission has no description")

func permissionList(list tree.Value, kind string, description treepath.Path) ([]Permission, error) {
	items, ok := list.Array()
	if !ok {
		return nil, nil
	}
	out := make([]Permission, 0, len(items))
	for i, item := range items {
		v, ok := treepath.Extract(item, description)
		if !ok {
			return nil, fmt.Errorf("%s permission %d: %w", kind, i, errNoDescription)
		}
		text, ok := v.Str()
		if !ok {
			return nil, fmt.Errorf("%s permission %d: %w", kind, i, errNoDescription)
		}
		out = append(out, Permission{Type: kind, Description: text})
	}
	return out, nil
}
