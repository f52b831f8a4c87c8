package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

// searchFields are matched as case-insensitive substrings. The wildcard field type keeps the
// whole value so that "*term*" behaves like strings.Contains.
var searchFields = []string{"name", "short_description", "description", "category", "tags"}

const mapping = `{
	"mappings": {
		"properties": {
			"name":              { "type": "wildcard" },
			"short_description": { "type": "wildcard" },
			"description":       { "type": "wildcard" },
			"category":          { "type": "wildcard" },
			"tags":              { "type": "wildcard" },
			"slug":              { "type": "keyword" },
			"price":             { "type": "double" },
			"created_at":        { "type": "date" }
		}
	}
}`

type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg *Config) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	res, err := es.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return es, nil
}

func NewIndex(es *elasticsearch.Client, index string) *Index {
	if index == "" {
		index = "products"
	}
	return &Index{es: es, index: index}
}

type document struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags"`
	Slug             string   `json:"slug"`
	Price            float64  `json:"price"`
	CreatedAt        string   `json:"created_at"`
}

func (ix *Index) ensureIndex(ctx context.Context) error {
	res, err := ix.es.Indices.Exists([]string{ix.index}, ix.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = ix.es.Indices.Create(ix.index,
		ix.es.Indices.Create.WithContext(ctx),
		ix.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

// IndexProducts writes every product with a single bulk request.
func (ix *Index) IndexProducts(ctx context.Context, products []model.Product) error {
	if err := ix.ensureIndex(ctx); err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		action := map[string]any{"index": map[string]any{"_index": ix.index, "_id": p.ID}}
		if err := enc.Encode(action); err != nil {
			return err
		}
		if err := enc.Encode(toDocument(&p)); err != nil {
			return err
		}
	}

	res, err := ix.es.Bulk(&buf,
		ix.es.Bulk.WithContext(ctx),
		ix.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("bulk index", res)
	}

	var body struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return err
	}
	if body.Errors {
		return fmt.Errorf("bulk index: some documents were rejected")
	}
	return nil
}

func (ix *Index) DeleteProduct(ctx context.Context, id string) error {
	res, err := ix.es.Delete(ix.index, id,
		ix.es.Delete.WithContext(ctx),
		ix.es.Delete.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete document", res)
	}
	return nil
}

func (ix *Index) MatchIDs(ctx context.Context, query string) ([]string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildQuery(query)); err != nil {
		return nil, err
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(&buf),
		ix.es.Search.WithSize(10000),
		ix.es.Search.WithSource("false"),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var body struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// BuildQuery matches query as a case-insensitive substring of any search field.
func BuildQuery(query string) map[string]any {
	pattern := "*" + escapeWildcard(query) + "*"
	should := make([]map[string]any, 0, len(searchFields))
	for _, f := range searchFields {
		should = append(should, map[string]any{
			"wildcard": map[string]any{
				f: map[string]any{
					"value":            pattern,
					"case_insensitive": true,
				},
			},
		})
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

func toDocument(p *model.Product) document {
	return document{
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		Category:         p.Category,
		Tags:             p.Tags,
		Slug:             p.Slug,
		Price:            p.Price,
		CreatedAt:        p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func responseError(op string, res *esapi.Response) error {
	b, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%s: %s: %s", op, res.Status(), strings.TrimSpace(string(b)))
}
