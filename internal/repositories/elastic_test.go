package repositories

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]any
}

// fakeES answers Elasticsearch REST calls from a route table keyed by
// "METHOD /path". Unknown routes get a 404.
type fakeES struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter)
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}}
	for k := range r.URL.Query() {
		rec.Query[k] = r.URL.Query().Get(k)
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if h, ok := f.routes[r.Method+" "+r.URL.Path]; ok {
		h(w)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception"},"status":404}`)
}

func (f *fakeES) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeES) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func reply(status int, body string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func esConfigFor(t *testing.T, srv *httptest.Server) config.ESConfig {
	t.Helper()
	addr := srv.Listener.Addr().(*net.TCPAddr)
	return config.ESConfig{Host: addr.IP.String(), Port: addr.Port, Refresh: "true"}
}

func newFakeSearch(t *testing.T, routes map[string]func(http.ResponseWriter)) (Gateway, *fakeES) {
	t.Helper()
	fake := &fakeES{routes: routes}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	gw, err := NewSearchGateway(esConfigFor(t, srv), nil, quietLogger())
	require.NoError(t, err)
	return gw, fake
}

func TestValidateIndexName(t *testing.T) {
	valid := []string{"policies", "claims-2024", "a.b_c"}
	for _, name := range valid {
		assert.NoError(t, validateIndexName(name), name)
	}

	invalid := []string{"", "Policies", "_hidden", "-dash", "+plus", "a/b", "a b", "a*", "..", "a:b", "a#b"}
	for _, name := range invalid {
		assert.ErrorIs(t, validateIndexName(name), ErrInvalidRequest, name)
	}
}

func TestSearchGateway_PutWithAndWithoutID(t *testing.T) {
	gw, fake := newFakeSearch(t, map[string]func(http.ResponseWriter){
		"PUT /policies/_doc/p-1": reply(http.StatusOK, `{"_id":"p-1","result":"updated"}`),
		"POST /policies/_doc":    reply(http.StatusCreated, `{"_id":"generated","result":"created"}`),
	})
	ctx := context.Background()

	ids, err := gw.Put(ctx, "policies", []models.Record{
		{ID: "p-1", Fields: map[string]any{"title": "Home"}},
		{Fields: map[string]any{"title": "Auto"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "generated"}, ids)

	req := fake.last()
	assert.Equal(t, "Auto", req.Body["title"])
	assert.Equal(t, "true", req.Query["refresh"])
}

func TestSearchGateway_PutRejectsBadInput(t *testing.T) {
	gw, fake := newFakeSearch(t, nil)
	ctx := context.Background()

	_, err := gw.Put(ctx, "Bad", []models.Record{{}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = gw.Put(ctx, "policies", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, fake.paths())
}

func TestSearchGateway_QueryDefaultsToMatchAll(t *testing.T) {
	gw, fake := newFakeSearch(t, map[string]func(http.ResponseWriter){
		"POST /policies/_search": reply(http.StatusOK, `{
			"hits": {
				"total": {"value": 42, "relation": "eq"},
				"hits": [
					{"_id": "a", "_score": 1.5, "_source": {"title": "Home"}},
					{"_id": "b", "_score": null, "_source": {"title": "Auto"}}
				]
			}
		}`),
	})

	res, err := gw.Query(context.Background(), "policies", models.Query{Limit: 2, Offset: 4})
	require.NoError(t, err)

	assert.Equal(t, 42, res.Total)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "a", res.Hits[0].ID)
	assert.InDelta(t, 1.5, res.Hits[0].Score, 1e-9)
	assert.Equal(t, "Home", res.Hits[0].Fields["title"])
	assert.Zero(t, res.Hits[1].Score)

	req := fake.last()
	assert.Equal(t, "2", req.Query["size"])
	assert.Equal(t, "4", req.Query["from"])
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, req.Body["query"])
}

func TestSearchGateway_QueryPassesCriteria(t *testing.T) {
	gw, fake := newFakeSearch(t, map[string]func(http.ResponseWriter){
		"POST /policies/_search": reply(http.StatusOK, `{"hits":{"total":{"value":0},"hits":[]}}`),
	})
	criteria := map[string]any{"match": map[string]any{"title": "flood"}}

	res, err := gw.Query(context.Background(), "policies", models.Query{Criteria: criteria, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Equal(t, criteria, fake.last().Body["query"])
}

func TestSearchGateway_QueryMissingIndexIsUpstream(t *testing.T) {
	gw, _ := newFakeSearch(t, nil)

	_, err := gw.Query(context.Background(), "missing", models.Query{Limit: 10})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestSearchGateway_RemoveByIDsAndQuery(t *testing.T) {
	gw, fake := newFakeSearch(t, map[string]func(http.ResponseWriter){
		"DELETE /policies/_doc/a":         reply(http.StatusOK, `{"result":"deleted"}`),
		"POST /policies/_delete_by_query": reply(http.StatusOK, `{"deleted":3}`),
	})
	ctx := context.Background()

	// b is not routed and answers 404, which delete tolerates
	err := gw.Remove(ctx, "policies", []string{"a", "b"}, map[string]any{"term": map[string]any{"kind": "auto"}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DELETE /policies/_doc/a",
		"DELETE /policies/_doc/b",
		"POST /policies/_delete_by_query",
	}, fake.paths())

	assert.ErrorIs(t, gw.Remove(ctx, "policies", nil, nil), ErrInvalidRequest)
}

func TestSearchGateway_EnsureCollection(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		gw, fake := newFakeSearch(t, map[string]func(http.ResponseWriter){
			"PUT /policies": reply(http.StatusOK, `{"acknowledged":true}`),
		})
		schema := map[string]any{"mappings": map[string]any{"properties": map[string]any{}}}

		require.NoError(t, gw.EnsureCollection(context.Background(), "policies", schema))
		assert.Equal(t, []string{"HEAD /policies", "PUT /policies"}, fake.paths())
		assert.Contains(t, fake.last().Body, "mappings")
	})

	t.Run("existing index is left alone", func(t *testing.T) {
		gw, fake := newFakeSearch(t, map[string]func(http.ResponseWriter){
			"HEAD /policies": reply(http.StatusOK, ""),
		})

		require.NoError(t, gw.EnsureCollection(context.Background(), "policies", nil))
		assert.Equal(t, []string{"HEAD /policies"}, fake.paths())
	})
}

func TestSearchGateway_DropCollection(t *testing.T) {
	t.Run("deletes existing index", func(t *testing.T) {
		gw, fake := newFakeSearch(t, map[string]func(http.ResponseWriter){
			"HEAD /policies":   reply(http.StatusOK, ""),
			"DELETE /policies": reply(http.StatusOK, `{"acknowledged":true}`),
		})

		require.NoError(t, gw.DropCollection(context.Background(), "policies"))
		assert.Equal(t, []string{"HEAD /policies", "DELETE /policies"}, fake.paths())
	})

	t.Run("missing index is a no-op", func(t *testing.T) {
		gw, fake := newFakeSearch(t, nil)

		require.NoError(t, gw.DropCollection(context.Background(), "policies"))
		assert.Equal(t, []string{"HEAD /policies"}, fake.paths())
	})
}

func TestSearchGateway_Health(t *testing.T) {
	gw, _ := newFakeSearch(t, map[string]func(http.ResponseWriter){
		"GET /_cluster/health": reply(http.StatusOK, `{"cluster_name":"docker","status":"yellow"}`),
	})

	health, err := gw.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "yellow", health["status"])
}

func TestSearchGateway_UnreachableCluster(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	cfg := esConfigFor(t, srv)
	srv.Close()

	gw, err := NewSearchGateway(cfg, nil, quietLogger())
	require.NoError(t, err)

	_, err = gw.Health(context.Background())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestSearchGateway_CancelledContext(t *testing.T) {
	gw, _ := newFakeSearch(t, map[string]func(http.ResponseWriter){
		"GET /_cluster/health": reply(http.StatusOK, `{"status":"green"}`),
	})
	gw = WithBreaker(gw, DefaultBreakerSettings(), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := gw.Health(ctx)
		require.ErrorIs(t, err, context.Canceled)
		require.NotErrorIs(t, err, ErrServiceUnavailable)
	}

	health, err := gw.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "green", health["status"])
}
