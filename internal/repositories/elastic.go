package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/models"
)

type searchGateway struct {
	es      *elasticsearch.Client
	refresh string
	log     *logrus.Entry
}

// NewSearchGateway builds the Elasticsearch gateway. No connection is made
// here; an unreachable cluster surfaces as ErrServiceUnavailable per call.
// transport may be nil to use the default.
func NewSearchGateway(cfg config.ESConfig, transport http.RoundTripper, log *logrus.Logger) (Gateway, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{cfg.Address()},
		Username:     cfg.User,
		Password:     cfg.Password,
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create elasticsearch client")
	}
	return &searchGateway{
		es:      es,
		refresh: cfg.Refresh,
		log:     log.WithField("gateway", "elasticsearch"),
	}, nil
}

func (g *searchGateway) Name() string { return "elasticsearch" }

// validateIndexName applies the Elasticsearch index naming rules so that a
// name can never alter the request path.
func validateIndexName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidRequest, "index name is required")
	}
	if name == "." || name == ".." || len(name) > 255 {
		return errors.Wrapf(ErrInvalidRequest, "invalid index name %q", name)
	}
	if strings.ContainsAny(name, `\/*?"<>| ,#:`) || strings.ContainsAny(name[:1], "-_+") {
		return errors.Wrapf(ErrInvalidRequest, "invalid index name %q", name)
	}
	if strings.ToLower(name) != name {
		return errors.Wrapf(ErrInvalidRequest, "index name %q must be lowercase", name)
	}
	return nil
}

// do classifies the outcome of an esapi call. Transport errors mean the
// cluster is unreachable unless the caller's context ended first; error
// statuses are upstream failures unless listed in allow. The caller must close
// the returned response.
func (g *searchGateway) do(ctx context.Context, op string, res *esapi.Response, err error, allow ...int) (*esapi.Response, error) {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.log.WithError(err).Warnf("%s failed", op)
		return nil, errors.Wrapf(ErrServiceUnavailable, "elasticsearch %s: %v", op, err)
	}
	if res.IsError() {
		for _, code := range allow {
			if res.StatusCode == code {
				return res, nil
			}
		}
		defer res.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		g.log.WithField("status", res.StatusCode).Warnf("%s rejected: %s", op, body)
		return nil, errors.Wrapf(ErrUpstream, "elasticsearch %s: %s", op, res.Status())
	}
	return res, nil
}

func decodeBody(res *esapi.Response, out any) error {
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(ErrUpstream, "decode response: %v", err)
	}
	return nil
}

func (g *searchGateway) Put(ctx context.Context, index string, records []models.Record) ([]string, error) {
	if err := validateIndexName(index); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "no documents given")
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		fields := rec.Fields
		if fields == nil {
			fields = map[string]any{}
		}
		body, err := json.Marshal(fields)
		if err != nil {
			return ids, errors.Wrapf(ErrInvalidRequest, "encode document: %v", err)
		}

		opts := []func(*esapi.IndexRequest){
			g.es.Index.WithContext(ctx),
			g.es.Index.WithRefresh(g.refresh),
		}
		if rec.ID != "" {
			opts = append(opts, g.es.Index.WithDocumentID(rec.ID))
		}
		res, err := g.es.Index(index, bytes.NewReader(body), opts...)
		res, err = g.do(ctx, "index", res, err)
		if err != nil {
			return ids, err
		}

		var out struct {
			ID     string `json:"_id"`
			Result string `json:"result"`
		}
		if err := decodeBody(res, &out); err != nil {
			return ids, err
		}
		if out.Result != "created" && out.Result != "updated" {
			return ids, errors.Wrapf(ErrUpstream, "unexpected index result %q", out.Result)
		}
		ids = append(ids, out.ID)
	}
	return ids, nil
}

func (g *searchGateway) Query(ctx context.Context, index string, q models.Query) (*models.QueryResult, error) {
	if err := validateIndexName(index); err != nil {
		return nil, err
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "size and from must not be negative")
	}

	query := q.Criteria
	if len(query) == 0 {
		query = map[string]any{"match_all": map[string]any{}}
	}
	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRequest, "encode query: %v", err)
	}

	res, err := g.es.Search(
		g.es.Search.WithContext(ctx),
		g.es.Search.WithIndex(index),
		g.es.Search.WithBody(bytes.NewReader(body)),
		g.es.Search.WithSize(q.Limit),
		g.es.Search.WithFrom(q.Offset),
		g.es.Search.WithTrackTotalHits(true),
	)
	res, err = g.do(ctx, "search", res, err)
	if err != nil {
		return nil, err
	}

	var out struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Score  *float64       `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := decodeBody(res, &out); err != nil {
		return nil, err
	}

	result := &models.QueryResult{
		Total: out.Hits.Total.Value,
		Hits:  make([]models.Hit, 0, len(out.Hits.Hits)),
	}
	for _, h := range out.Hits.Hits {
		hit := models.Hit{ID: h.ID, Fields: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

func (g *searchGateway) Remove(ctx context.Context, index string, ids []string, criteria map[string]any) error {
	if err := validateIndexName(index); err != nil {
		return err
	}
	if len(ids) == 0 && len(criteria) == 0 {
		return errors.Wrap(ErrInvalidRequest, "ids or query required")
	}

	for _, id := range ids {
		res, err := g.es.Delete(index, id,
			g.es.Delete.WithContext(ctx),
			g.es.Delete.WithRefresh(g.refresh),
		)
		res, err = g.do(ctx, "delete", res, err, http.StatusNotFound)
		if err != nil {
			return err
		}
		res.Body.Close()
	}

	if len(criteria) > 0 {
		body, err := json.Marshal(map[string]any{"query": criteria})
		if err != nil {
			return errors.Wrapf(ErrInvalidRequest, "encode query: %v", err)
		}
		res, err := g.es.DeleteByQuery([]string{index}, bytes.NewReader(body),
			g.es.DeleteByQuery.WithContext(ctx),
		)
		res, err = g.do(ctx, "delete_by_query", res, err)
		if err != nil {
			return err
		}
		res.Body.Close()
	}
	return nil
}

func (g *searchGateway) exists(ctx context.Context, index string) (bool, error) {
	res, err := g.es.Indices.Exists([]string{index},
		g.es.Indices.Exists.WithContext(ctx),
	)
	res, err = g.do(ctx, "exists", res, err, http.StatusNotFound)
	if err != nil {
		return false, err
	}
	res.Body.Close()
	return res.StatusCode == http.StatusOK, nil
}

// EnsureCollection creates the index when missing. schema may carry
// "mappings" and "settings" objects.
func (g *searchGateway) EnsureCollection(ctx context.Context, index string, schema map[string]any) error {
	if err := validateIndexName(index); err != nil {
		return err
	}
	ok, err := g.exists(ctx, index)
	if err != nil || ok {
		return err
	}

	opts := []func(*esapi.IndicesCreateRequest){g.es.Indices.Create.WithContext(ctx)}
	if len(schema) > 0 {
		body, err := json.Marshal(schema)
		if err != nil {
			return errors.Wrapf(ErrInvalidRequest, "encode index schema: %v", err)
		}
		opts = append(opts, g.es.Indices.Create.WithBody(bytes.NewReader(body)))
	}
	res, err := g.es.Indices.Create(index, opts...)
	res, err = g.do(ctx, "create_index", res, err)
	if err != nil {
		return err
	}
	res.Body.Close()
	g.log.Infof("index created: %s", index)
	return nil
}

func (g *searchGateway) DropCollection(ctx context.Context, index string) error {
	if err := validateIndexName(index); err != nil {
		return err
	}
	ok, err := g.exists(ctx, index)
	if err != nil || !ok {
		return err
	}
	res, err := g.es.Indices.Delete([]string{index},
		g.es.Indices.Delete.WithContext(ctx),
	)
	res, err = g.do(ctx, "delete_index", res, err)
	if err != nil {
		return err
	}
	res.Body.Close()
	g.log.Infof("index deleted: %s", index)
	return nil
}

func (g *searchGateway) Health(ctx context.Context) (map[string]any, error) {
	res, err := g.es.Cluster.Health(
		g.es.Cluster.Health.WithContext(ctx),
	)
	res, err = g.do(ctx, "cluster_health", res, err)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := decodeBody(res, &out); err != nil {
		return nil, err
	}
	return out, nil
}
