package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/models"
)

// Embedder turns texts into vectors for the vector store.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// vectorGateway is a minimal client for the Chroma v2 REST API.
type vectorGateway struct {
	baseURL  string
	token    string
	embedder Embedder
	client   *http.Client
	log      *logrus.Entry
}

// collection names: 3-512 chars of [a-zA-Z0-9._-], starting and ending alphanumeric
var collectionName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{1,510}[a-zA-Z0-9]$`)

// NewVectorGateway builds the Chroma gateway. embedder may be nil, in which
// case callers must supply embeddings themselves.
func NewVectorGateway(cfg config.VectorConfig, embedder Embedder, client *http.Client, log *logrus.Logger) (Gateway, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid VECTOR_DB_URL %q", cfg.URL)
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	base := fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s",
		strings.TrimRight(cfg.URL, "/"), url.PathEscape(cfg.Tenant), url.PathEscape(cfg.Database))
	return &vectorGateway{
		baseURL:  base,
		token:    cfg.Token,
		embedder: embedder,
		client:   client,
		log:      log.WithField("gateway", "chroma"),
	}, nil
}

func (g *vectorGateway) Name() string { return "chroma" }

func validateCollectionName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidRequest, "collection name is required")
	}
	if !collectionName.MatchString(name) || strings.Contains(name, "..") {
		return errors.Wrapf(ErrInvalidRequest, "invalid collection name %q", name)
	}
	return nil
}

func (g *vectorGateway) call(ctx context.Context, method, endpoint string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(ErrInvalidRequest, "encode request: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return errors.Wrapf(ErrInvalidRequest, "build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("X-Chroma-Token", g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		g.log.WithError(err).Warnf("%s %s failed", method, endpoint)
		return errors.Wrapf(ErrServiceUnavailable, "chroma %s: %v", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.log.WithField("status", resp.StatusCode).Warnf("%s %s rejected: %s", method, endpoint, msg)
		return errors.Wrapf(ErrUpstream, "chroma %s %s: %s", method, endpoint, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(ErrUpstream, "decode response: %v", err)
		}
	}
	return nil
}

type chromaCollection struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

func (g *vectorGateway) getOrCreate(ctx context.Context, name string, metadata map[string]any) (*chromaCollection, error) {
	body := map[string]any{"name": name, "get_or_create": true}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	var col chromaCollection
	if err := g.call(ctx, http.MethodPost, g.baseURL+"/collections", body, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

func (g *vectorGateway) lookup(ctx context.Context, name string) (*chromaCollection, error) {
	var col chromaCollection
	if err := g.call(ctx, http.MethodGet, g.baseURL+"/collections/"+url.PathEscape(name), nil, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

func (g *vectorGateway) collectionURL(col *chromaCollection, op string) string {
	return fmt.Sprintf("%s/collections/%s/%s", g.baseURL, url.PathEscape(col.ID), op)
}

func (g *vectorGateway) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if g.embedder == nil {
		return nil, errors.Wrap(ErrInvalidRequest, "embeddings required: no embedding provider configured")
	}
	vectors, err := g.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, errors.Wrapf(ErrUpstream, "embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

func (g *vectorGateway) Put(ctx context.Context, name string, records []models.Record) ([]string, error) {
	if err := validateCollectionName(name); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "no documents given")
	}

	ids := make([]string, len(records))
	documents := make([]string, len(records))
	metadatas := make([]map[string]any, len(records))
	embeddings := make([][]float32, len(records))
	var missing []int
	for i, rec := range records {
		ids[i] = rec.ID
		if ids[i] == "" {
			ids[i] = uuid.NewString()
		}
		documents[i] = rec.Text
		// chroma rejects empty metadata objects
		if len(rec.Fields) > 0 {
			metadatas[i] = rec.Fields
		}
		embeddings[i] = rec.Embedding
		if len(rec.Embedding) == 0 {
			missing = append(missing, i)
		}
	}

	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for j, i := range missing {
			texts[j] = documents[i]
		}
		vectors, err := g.embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		for j, i := range missing {
			embeddings[i] = vectors[j]
		}
	}

	col, err := g.getOrCreate(ctx, name, nil)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"ids":        ids,
		"documents":  documents,
		"embeddings": embeddings,
		"metadatas":  metadatas,
	}
	if err := g.call(ctx, http.MethodPost, g.collectionURL(col, "add"), body, nil); err != nil {
		return nil, err
	}
	return ids, nil
}

type chromaQueryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]*string        `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]*float64       `json:"distances"`
}

type chromaGetResponse struct {
	IDs       []string         `json:"ids"`
	Documents []*string        `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

var include = []string{"documents", "metadatas", "distances"}

// Query runs a nearest-neighbour search when texts or embeddings are given and
// a plain filtered read otherwise. Chroma has no offset for similarity search,
// so limit+offset neighbours are fetched and the leading offset dropped.
func (g *vectorGateway) Query(ctx context.Context, name string, q models.Query) (*models.QueryResult, error) {
	if err := validateCollectionName(name); err != nil {
		return nil, err
	}
	if q.Limit <= 0 || q.Offset < 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "n_results must be positive")
	}

	embeddings := q.Embeddings
	if len(embeddings) == 0 && len(q.Texts) > 0 {
		vectors, err := g.embed(ctx, q.Texts)
		if err != nil {
			return nil, err
		}
		embeddings = vectors
	}

	col, err := g.lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		if len(q.Criteria) == 0 {
			return nil, errors.Wrap(ErrInvalidRequest, "query texts, embeddings or where filter required")
		}
		return g.get(ctx, col, q)
	}

	body := map[string]any{
		"query_embeddings": embeddings,
		"n_results":        q.Limit + q.Offset,
		"include":          include,
	}
	if len(q.Criteria) > 0 {
		body["where"] = q.Criteria
	}
	var out chromaQueryResponse
	if err := g.call(ctx, http.MethodPost, g.collectionURL(col, "query"), body, &out); err != nil {
		return nil, err
	}

	result := &models.QueryResult{Hits: []models.Hit{}}
	for group, ids := range out.IDs {
		for i, id := range ids {
			if i < q.Offset {
				continue
			}
			hit := models.Hit{ID: id, Group: group}
			if group < len(out.Documents) && i < len(out.Documents[group]) && out.Documents[group][i] != nil {
				hit.Text = *out.Documents[group][i]
			}
			if group < len(out.Metadatas) && i < len(out.Metadatas[group]) {
				hit.Fields = out.Metadatas[group][i]
			}
			if group < len(out.Distances) && i < len(out.Distances[group]) && out.Distances[group][i] != nil {
				d := *out.Distances[group][i]
				hit.Distance = &d
				hit.Score = 1 - d
			}
			result.Hits = append(result.Hits, hit)
		}
	}
	result.Total = len(result.Hits)
	return result, nil
}

func (g *vectorGateway) get(ctx context.Context, col *chromaCollection, q models.Query) (*models.QueryResult, error) {
	body := map[string]any{
		"where":   q.Criteria,
		"limit":   q.Limit,
		"offset":  q.Offset,
		"include": []string{"documents", "metadatas"},
	}
	var out chromaGetResponse
	if err := g.call(ctx, http.MethodPost, g.collectionURL(col, "get"), body, &out); err != nil {
		return nil, err
	}

	result := &models.QueryResult{Total: len(out.IDs), Hits: make([]models.Hit, 0, len(out.IDs))}
	for i, id := range out.IDs {
		hit := models.Hit{ID: id}
		if i < len(out.Documents) && out.Documents[i] != nil {
			hit.Text = *out.Documents[i]
		}
		if i < len(out.Metadatas) {
			hit.Fields = out.Metadatas[i]
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

func (g *vectorGateway) Remove(ctx context.Context, name string, ids []string, criteria map[string]any) error {
	if err := validateCollectionName(name); err != nil {
		return err
	}
	if len(ids) == 0 && len(criteria) == 0 {
		return errors.Wrap(ErrInvalidRequest, "ids or where filter required")
	}
	col, err := g.lookup(ctx, name)
	if err != nil {
		return err
	}
	body := map[string]any{}
	if len(ids) > 0 {
		body["ids"] = ids
	}
	if len(criteria) > 0 {
		body["where"] = criteria
	}
	return g.call(ctx, http.MethodPost, g.collectionURL(col, "delete"), body, nil)
}

// EnsureCollection creates the collection when missing; schema becomes its metadata.
func (g *vectorGateway) EnsureCollection(ctx context.Context, name string, schema map[string]any) error {
	if err := validateCollectionName(name); err != nil {
		return err
	}
	_, err := g.getOrCreate(ctx, name, schema)
	return err
}

func (g *vectorGateway) DropCollection(ctx context.Context, name string) error {
	if err := validateCollectionName(name); err != nil {
		return err
	}
	return g.call(ctx, http.MethodDelete, g.baseURL+"/collections/"+url.PathEscape(name), nil, nil)
}

func (g *vectorGateway) Health(ctx context.Context) (map[string]any, error) {
	root := strings.SplitN(g.baseURL, "/api/v2/", 2)[0]
	var out map[string]any
	if err := g.call(ctx, http.MethodGet, root+"/api/v2/heartbeat", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
