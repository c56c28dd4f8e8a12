package repositories

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/models"
)

const chromaBase = "/api/v2/tenants/default_tenant/databases/default_database"

type fakeEmbedder struct {
	calls [][]string
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

// fakeChroma serves the subset of the Chroma v2 API the gateway uses. It
// knows one collection named "policies" with id "col-1".
type fakeChroma struct {
	mu       sync.Mutex
	requests []recordedRequest
	headers  []http.Header
	query    string
	get      string
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	collection := `{"id":"col-1","name":"policies","metadata":null}`
	switch rec.Method + " " + strings.TrimPrefix(rec.Path, chromaBase) {
	case "GET /api/v2/heartbeat":
		_, _ = io.WriteString(w, `{"nanosecond heartbeat":1700000000}`)
	case "POST /collections":
		_, _ = io.WriteString(w, collection)
	case "GET /collections/policies":
		_, _ = io.WriteString(w, collection)
	case "DELETE /collections/policies":
		_, _ = io.WriteString(w, `{}`)
	case "POST /collections/col-1/add", "POST /collections/col-1/delete":
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	case "POST /collections/col-1/query":
		_, _ = io.WriteString(w, f.query)
	case "POST /collections/col-1/get":
		_, _ = io.WriteString(w, f.get)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"NotFoundError","message":"Collection does not exist"}`)
	}
}

func (f *fakeChroma) find(method, suffix string) (recordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.Method == method && strings.HasSuffix(r.Path, suffix) {
			return r, true
		}
	}
	return recordedRequest{}, false
}

func newFakeVector(t *testing.T, fake *fakeChroma, embedder Embedder, token string) Gateway {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	gw, err := NewVectorGateway(config.VectorConfig{
		URL:      srv.URL + "/",
		Tenant:   "default_tenant",
		Database: "default_database",
		Token:    token,
	}, embedder, srv.Client(), quietLogger())
	require.NoError(t, err)
	return gw
}

func TestNewVectorGateway_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "://nope"} {
		_, err := NewVectorGateway(config.VectorConfig{URL: raw}, nil, nil, quietLogger())
		assert.Error(t, err, raw)
	}
}

func TestValidateCollectionName(t *testing.T) {
	for _, name := range []string{"policies", "insurguide_collection", "a-b.c"} {
		assert.NoError(t, validateCollectionName(name), name)
	}
	for _, name := range []string{"", "ab", "-policies", "policies-", "a..b", "has space", "a/b"} {
		assert.ErrorIs(t, validateCollectionName(name), ErrInvalidRequest, name)
	}
}

func TestVectorGateway_PutEmbedsMissingVectors(t *testing.T) {
	fake := &fakeChroma{}
	emb := &fakeEmbedder{}
	gw := newFakeVector(t, fake, emb, "s3cret")

	ids, err := gw.Put(context.Background(), "policies", []models.Record{
		{ID: "a", Text: "flood cover", Fields: map[string]any{"kind": "home"}},
		{Text: "theft", Embedding: []float32{9, 9}},
		{Text: "hail"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, "a", ids[0])
	assert.NotEmpty(t, ids[1])
	assert.NotEqual(t, ids[1], ids[2])

	// only records without an embedding go to the embedder
	assert.Equal(t, [][]string{{"flood cover", "hail"}}, emb.calls)

	add, ok := fake.find(http.MethodPost, "/collections/col-1/add")
	require.True(t, ok)
	assert.Equal(t, []any{"flood cover", "theft", "hail"}, add.Body["documents"])
	assert.Equal(t, []any{
		[]any{float64(11), float64(1)},
		[]any{float64(9), float64(9)},
		[]any{float64(4), float64(1)},
	}, add.Body["embeddings"])
	assert.Equal(t, []any{map[string]any{"kind": "home"}, nil, nil}, add.Body["metadatas"])

	create, ok := fake.find(http.MethodPost, chromaBase+"/collections")
	require.True(t, ok)
	assert.Equal(t, true, create.Body["get_or_create"])

	for _, h := range fake.headers {
		assert.Equal(t, "s3cret", h.Get("X-Chroma-Token"))
	}
}

func TestVectorGateway_PutWithoutEmbedder(t *testing.T) {
	fake := &fakeChroma{}
	gw := newFakeVector(t, fake, nil, "")

	_, err := gw.Put(context.Background(), "policies", []models.Record{{Text: "flood"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, fake.requests)

	ids, err := gw.Put(context.Background(), "policies", []models.Record{{ID: "x", Text: "flood", Embedding: []float32{1}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids)
}

func TestVectorGateway_PutEmbedderFailure(t *testing.T) {
	fake := &fakeChroma{}
	emb := &fakeEmbedder{err: errors.Wrap(ErrServiceUnavailable, "openai down")}
	gw := newFakeVector(t, fake, emb, "")

	_, err := gw.Put(context.Background(), "policies", []models.Record{{Text: "flood"}})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Empty(t, fake.requests)
}

func TestVectorGateway_QueryAppliesOffset(t *testing.T) {
	fake := &fakeChroma{query: `{
		"ids": [["a", "b", "c"], ["d"]],
		"documents": [["doc a", "doc b", null], ["doc d"]],
		"metadatas": [[{"k": 1}, null, {"k": 3}], [null]],
		"distances": [[0.1, 0.25, 0.5], [0.75]]
	}`}
	emb := &fakeEmbedder{}
	gw := newFakeVector(t, fake, emb, "")

	res, err := gw.Query(context.Background(), "policies", models.Query{
		Texts:    []string{"flood", "fire"},
		Limit:    2,
		Offset:   1,
		Criteria: map[string]any{"kind": "home"},
	})
	require.NoError(t, err)

	require.Len(t, res.Hits, 2)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "b", res.Hits[0].ID)
	assert.Equal(t, "doc b", res.Hits[0].Text)
	assert.Equal(t, 0, res.Hits[0].Group)
	require.NotNil(t, res.Hits[0].Distance)
	assert.InDelta(t, 0.25, *res.Hits[0].Distance, 1e-9)
	assert.InDelta(t, 0.75, res.Hits[0].Score, 1e-9)
	assert.Equal(t, "c", res.Hits[1].ID)
	assert.Empty(t, res.Hits[1].Text)
	assert.Equal(t, map[string]any{"k": float64(3)}, res.Hits[1].Fields)

	q, ok := fake.find(http.MethodPost, "/collections/col-1/query")
	require.True(t, ok)
	assert.Equal(t, float64(3), q.Body["n_results"])
	assert.Equal(t, map[string]any{"kind": "home"}, q.Body["where"])
	assert.Len(t, q.Body["query_embeddings"], 2)
}

func TestVectorGateway_QueryWithFilterOnly(t *testing.T) {
	fake := &fakeChroma{get: `{"ids":["a"],"documents":["doc a"],"metadatas":[{"kind":"home"}]}`}
	gw := newFakeVector(t, fake, nil, "")

	res, err := gw.Query(context.Background(), "policies", models.Query{
		Criteria: map[string]any{"kind": "home"},
		Limit:    5,
		Offset:   2,
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "doc a", res.Hits[0].Text)
	assert.Nil(t, res.Hits[0].Distance)

	get, ok := fake.find(http.MethodPost, "/collections/col-1/get")
	require.True(t, ok)
	assert.Equal(t, float64(5), get.Body["limit"])
	assert.Equal(t, float64(2), get.Body["offset"])
}

func TestVectorGateway_QueryValidation(t *testing.T) {
	fake := &fakeChroma{}
	gw := newFakeVector(t, fake, nil, "")
	ctx := context.Background()

	_, err := gw.Query(ctx, "policies", models.Query{Limit: 0, Embeddings: [][]float32{{1}}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = gw.Query(ctx, "policies", models.Query{Limit: 5})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = gw.Query(ctx, "policies", models.Query{Limit: 5, Texts: []string{"flood"}})
	assert.ErrorIs(t, err, ErrInvalidRequest, "texts need an embedder")
}

func TestVectorGateway_QueryUnknownCollection(t *testing.T) {
	gw := newFakeVector(t, &fakeChroma{}, nil, "")

	_, err := gw.Query(context.Background(), "claims", models.Query{Limit: 5, Embeddings: [][]float32{{1}}})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestVectorGateway_Remove(t *testing.T) {
	fake := &fakeChroma{}
	gw := newFakeVector(t, fake, nil, "")
	ctx := context.Background()

	require.NoError(t, gw.Remove(ctx, "policies", []string{"a"}, map[string]any{"kind": "home"}))
	del, ok := fake.find(http.MethodPost, "/collections/col-1/delete")
	require.True(t, ok)
	assert.Equal(t, []any{"a"}, del.Body["ids"])
	assert.Equal(t, map[string]any{"kind": "home"}, del.Body["where"])

	assert.ErrorIs(t, gw.Remove(ctx, "policies", nil, nil), ErrInvalidRequest)
}

func TestVectorGateway_Collections(t *testing.T) {
	fake := &fakeChroma{}
	gw := newFakeVector(t, fake, nil, "")
	ctx := context.Background()

	require.NoError(t, gw.EnsureCollection(ctx, "policies", map[string]any{"hnsw:space": "cosine"}))
	create, ok := fake.find(http.MethodPost, chromaBase+"/collections")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"hnsw:space": "cosine"}, create.Body["metadata"])

	require.NoError(t, gw.DropCollection(ctx, "policies"))
	assert.ErrorIs(t, gw.DropCollection(ctx, "claims"), ErrUpstream)
	assert.ErrorIs(t, gw.EnsureCollection(ctx, "x", nil), ErrInvalidRequest)
}

func TestVectorGateway_Health(t *testing.T) {
	gw := newFakeVector(t, &fakeChroma{}, nil, "")

	health, err := gw.Health(context.Background())
	require.NoError(t, err)
	assert.Contains(t, health, "nanosecond heartbeat")
}

func TestVectorGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gw, err := NewVectorGateway(config.VectorConfig{URL: url, Tenant: "t", Database: "d"}, nil, nil, quietLogger())
	require.NoError(t, err)

	_, err = gw.Health(context.Background())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}
