// Package variant picks which positional layout applies to a response, keyed
// by the length of the container holding its collections.
package variant

import (
	"fmt"
	"sort"
	"strings"

	"playscraper/internal/tree"
	"playscraper/internal/treepath"
)

// UnknownVariantError is returned when a response has a shape no bundle was
// registered for.
type UnknownVariantError struct {
	Table      string
	Signature  int
	Collection string
	// Known lists the collections the resolved layout does carry.
	Known      []string
}

func (e *UnknownVariantError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf(
			"variant %s: collection %s is not part of the layout for signature %d (has %s)",
			e.Table, e.Collection, e.Signature, strings.Join(e.Known, ", "),
		)
	}
	return fmt.Sprintf("variant %s: no layout registered for signature %d", e.Table, e.Signature)
}

// ResponseParsingError is returned when a response violates a structural
// invariant of its layout.
type ResponseParsingError struct {
	Reason string
}

func (e *ResponseParsingError) Error() string {
	return "response parsing: " + e.Reason
}

// Bundle is the layout registered for one signature: the path of every
// collection it carries, relative to the collections container.
type Bundle struct {
	signature   int
	collections map[string]treepath.Path
}

func (b Bundle) Signature() int { return b.signature }

// Collection returns the base path of the named collection.
func (b Bundle) Collection(name string) (treepath.Path, bool) {
	p, ok := b.collections[name]
	return p, ok
}

// Collections returns the collection names of the bundle in sorted order.
func (b Bundle) Collections() []string {
	out := make([]string, 0, len(b.collections))
	for name := range b.collections {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Table is a closed set of bundles. Every bundle shares the suffix paths that
// locate a collection's cluster link and its initial items.
type Table struct {
	name          string
	clusterSuffix treepath.Path
	initialSuffix treepath.Path
	bundles       map[int]Bundle
}

// NewTable builds an immutable table. layouts maps a signature to the base
// path of each collection present in that layout.
func NewTable(
	name string,
	clusterSuffix, initialSuffix treepath.Path,
	layouts map[int]map[string]treepath.Path,
) Table {
	bundles := make(map[int]Bundle, len(layouts))
	for signature, collections := range layouts {
		copied := make(map[string]treepath.Path, len(collections))
		for k, v := range collections {
			copied[k] = v
		}
		bundles[signature] = Bundle{signature: signature, collections: copied}
	}
	return Table{
		name:          name,
		clusterSuffix: clusterSuffix,
		initialSuffix: initialSuffix,
		bundles:       bundles,
	}
}

func (t Table) Name() string { return t.name }

// Resolve returns the bundle registered for signature.
func (t Table) Resolve(signature int) (Bundle, error) {
	b, ok := t.bundles[signature]
	if !ok {
		return Bundle{}, &UnknownVariantError{Table: t.name, Signature: signature}
	}
	return b, nil
}

// Has reports whether any bundle of the table carries collection.
func (t Table) Has(collection string) bool {
	for _, b := range t.bundles {
		if _, ok := b.collections[collection]; ok {
			return true
		}
	}
	return false
}

func (t Table) collectionPath(b Bundle, collection string) (treepath.Path, error) {
	p, ok := b.Collection(collection)
	if !ok {
		return treepath.Path{}, &UnknownVariantError{
			Table:      t.name,
			Signature:  b.signature,
			Collection: collection,
			Known:      b.Collections(),
		}
	}
	return p, nil
}

// ClusterPath locates the cluster link of collection in the bundle.
func (t Table) ClusterPath(b Bundle, collection string) (treepath.Path, error) {
	p, err := t.collectionPath(b, collection)
	if err != nil {
		return treepath.Path{}, err
	}
	return p.Concat(t.clusterSuffix), nil
}

// InitialItemsPath locates the items of collection embedded in the page.
func (t Table) InitialItemsPath(b Bundle, collection string) (treepath.Path, error) {
	p, err := t.collectionPath(b, collection)
	if err != nil {
		return treepath.Path{}, err
	}
	return p.Concat(t.initialSuffix), nil
}

// ResolveContainer resolves the bundle for a collections container using its
// length as the signature.
func (t Table) ResolveContainer(container tree.Value) (Bundle, error) {
	if container.Kind() != tree.ArrayKind {
		return Bundle{}, &ResponseParsingError{
			Reason: fmt.Sprintf("collections container is %s, not Array", container.Kind()),
		}
	}
	return t.Resolve(container.Len())
}

// RequirePaidOnly checks that every initial item of collection is paid
// according to isFree. A missing item list or a single free item is a
// ResponseParsingError, items are never filtered.
func (t Table) RequirePaidOnly(container tree.Value, collection string, isFree func(tree.Value) bool) error {
	b, err := t.ResolveContainer(container)
	if err != nil {
		return err
	}
	p, err := t.InitialItemsPath(b, collection)
	if err != nil {
		return err
	}

	items, ok := treepath.Extract(container, p)
	if !ok {
		return &ResponseParsingError{
			Reason: fmt.Sprintf("collection %s has no items at %s", collection, p),
		}
	}
	arr, ok := items.Array()
	if !ok {
		return &ResponseParsingError{
			Reason: fmt.Sprintf("collection %s items at %s are %s, not Array", collection, p, items.Kind()),
		}
	}
	for i, item := range arr {
		if isFree(item) {
			return &ResponseParsingError{
				Reason: fmt.Sprintf("collection %s contains a free item at index %d when it should not", collection, i),
			}
		}
	}
	return nil
}
