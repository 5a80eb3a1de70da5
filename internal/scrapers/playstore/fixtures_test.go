package playstore

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"playscraper/internal/components/telemetry"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// put returns root with v stored at path, arrays are grown with nulls as
// needed.
func put(root any, v any, path ...int) any {
	if len(path) == 0 {
		return v
	}
	arr, _ := root.([]any)
	for len(arr) <= path[0] {
		arr = append(arr, nil)
	}
	arr[path[0]] = put(arr[path[0]], v, path[1:]...)
	return arr
}

func mustJson(t *testing.T, v any) string {
	t.Helper()
	encoded, err := json.Marshal(v)
	require.NoError(t, err)
	return string(encoded)
}

// htmlPage renders a page carrying one AF_initDataCallback block per entry.
func htmlPage(t *testing.T, blocks map[string]any, extra string) string {
	t.Helper()
	keys := make([]string, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<!doctype html><html><head>")
	for _, k := range keys {
		fmt.Fprintf(
			&b,
			`<script nonce="n">AF_initDataCallback({key: '%s', hash: '1', data:%s, sideChannel: {}});</script>`,
			k, mustJson(t, blocks[k]),
		)
	}
	b.WriteString("</head><body>")
	b.WriteString(extra)
	b.WriteString("</body></html>")
	return b.String()
}

// batchResponse wraps payload the way the batchexecute endpoint does. The
// chunked form carries a length line before every envelope.
func batchResponse(t *testing.T, rpcID string, payload any, chunked bool) string {
	t.Helper()
	envelope := mustJson(t, []any{
		[]any{"wrb.fr", rpcID, mustJson(t, payload), nil, nil, nil, "generic"},
	})
	if !chunked {
		return ")]}'\n\n" + envelope
	}
	return fmt.Sprintf(")]}'\n\n%d\n%s\n25\n[[\"e\",4,null,null,130]]\n", len(envelope), envelope)
}

// appItem is an app as laid out on html listing pages.
func appItem(id, title, priceText string) any {
	var item any
	item = put(item, id, 0, 0)
	item = put(item, title, 3)
	item = put(item, "summary of "+title, 13, 1)
	item = put(item, 4.5, 4, 1)
	item = put(item, "4.5", 4, 0)
	item = put(item, "/store/apps/details?id="+id, 10, 4, 2)
	item = put(item, "https://img.example/"+id, 1, 3, 2)
	item = put(item, "Dev of "+title, 14)
	if priceText != "" {
		item = put(item, priceText, 8, 1, 0, 2)
	}
	return item
}

// rpcAppItem is an app as laid out by the apps rpc.
func rpcAppItem(id, title, priceText string) any {
	var item any
	item = put(item, id, 12, 0)
	item = put(item, title, 2)
	item = put(item, "summary of "+title, 4, 1, 1, 1, 1)
	item = put(item, 3.9, 6, 0, 2, 1, 1)
	item = put(item, "3.9", 6, 0, 2, 1, 0)
	item = put(item, "/store/apps/details?id="+id, 9, 4, 2)
	item = put(item, "https://img.example/"+id, 1, 1, 0, 3, 2)
	item = put(item, "Dev of "+title, 4, 0, 0, 0)
	if priceText != "" {
		item = put(item, priceText, 7, 0, 3, 2, 1, 0, 2)
	}
	return item
}

// clusterPage is the first page of a listing.
func clusterPage(t *testing.T, token string, items ...any) string {
	var ds3 any
	ds3 = put(ds3, items, 0, 1, 0, 21, 0)
	if token != "" {
		ds3 = put(ds3, token, 0, 1, 0, 21, 1, 3, 1)
	}
	return htmlPage(t, map[string]any{"ds:3": ds3}, "")
}

// appsRpcPage is a following page of a listing.
func appsRpcPage(t *testing.T, token string, items ...any) string {
	var payload any
	payload = put(payload, items, 0, 0, 0)
	if token != "" {
		payload = put(payload, token, 0, 0, 7, 1)
	}
	return batchResponse(t, rpc_apps, payload, true)
}

type collectionFixture struct {
	clusterUrl string
	items      []any
}

// collectionsPage is a collection overview page holding the given
// collections in order.
func collectionsPage(t *testing.T, collections ...collectionFixture) string {
	container := []any{}
	for _, c := range collections {
		var entry any
		entry = put(entry, c.clusterUrl, 0, 3, 4, 2)
		entry = put(entry, c.items, 0, 0)
		container = append(container, entry)
	}
	var ds3 any
	ds3 = put(ds3, container, 0, 1)
	return htmlPage(t, map[string]any{"ds:3": ds3}, "")
}

type fakeStore struct {
	mu       sync.Mutex
	requests []string
	forms    []string
}

func (f *fakeStore) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if r.Method == http.MethodPost {
		f.forms = append(f.forms, r.PostForm.Get("f.req"))
	}
}

func (f *fakeStore) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.requests...)
}

// Forms returns the f.req field of every POST request.
func (f *fakeStore) Forms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.forms...)
}

// newTestScraper serves routes from a local server, handlers of POST routes
// see a parsed form.
func newTestScraper(t *testing.T, routes map[string]http.HandlerFunc) (*Scraper, *fakeStore, *telemetry.Recorder) {
	t.Helper()

	store := &fakeStore{}
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		handler := handler
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			store.record(r)
			handler(w, r)
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	rec := telemetry.NewRecorder()
	scraper, err := New(Config{BaseUrl: server.URL}, rec)
	require.NoError(t, err)
	return scraper, store, rec
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}
}

// byRpc dispatches batchexecute requests on the rpc id and the continuation
// token found in the request body.
func byRpc(pages map[string]map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rpcID := r.URL.Query().Get("rpcids")
		byToken, ok := pages[rpcID]
		if !ok {
			http.Error(w, "unknown rpc "+rpcID, http.StatusNotFound)
			return
		}
		freq := r.PostForm.Get("f.req")
		for token, body := range byToken {
			if token != "" && strings.Contains(freq, token) {
				fmt.Fprint(w, body)
				return
			}
		}
		body, ok := byToken[""]
		if !ok {
			http.Error(w, "no page", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}
}
