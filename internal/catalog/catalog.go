// Package catalog is a Bleve full-text index over every food known locally,
// used for offline search and barcode lookup.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/models"
)

// DefaultLimit caps the number of hits returned by Search.
const DefaultLimit = 50

const (
	fieldName       = "name"
	fieldBrand      = "brand"
	fieldCategories = "categories"
	fieldBarcode    = "barcode"
	fieldPayload    = "payload"
)

// Catalog indexes food records by identity key.
type Catalog struct {
	index  bleve.Index
	limit  int
	logger *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLimit sets the maximum number of search hits.
func WithLimit(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewCatalog creates or opens a Bleve index at path. An empty path keeps the
// index in memory. An existing index directory is reopened as is, so remove it
// after changing the mapping.
func NewCatalog(path string, opts ...Option) (*Catalog, error) {
	c := &Catalog{limit: DefaultLimit, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	var (
		index bleve.Index
		err   error
	)
	switch {
	case path == "":
		index, err = bleve.NewMemOnly(buildMapping())
	case exists(path):
		index, err = bleve.Open(path)
	default:
		index, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog index: %w", err)
	}
	c.index = index
	return c, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func buildMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	// standard analyzer: lowercase and tokenize, no stemming, so prefixes of
	// the typed word keep matching
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	doc.AddFieldMappingsAt(fieldName, text)
	doc.AddFieldMappingsAt(fieldBrand, text)
	doc.AddFieldMappingsAt(fieldCategories, text)

	code := bleve.NewKeywordFieldMapping()
	code.IncludeInAll = false
	doc.AddFieldMappingsAt(fieldBarcode, code)

	payload := bleve.NewTextFieldMapping()
	payload.Index = false
	payload.Store = true
	payload.IncludeInAll = false
	payload.IncludeTermVectors = false
	doc.AddFieldMappingsAt(fieldPayload, payload)

	im.DefaultMapping = doc
	im.DefaultAnalyzer = standard.Name
	return im
}

// Add indexes foods, replacing any with the same identity key.
func (c *Catalog) Add(ctx context.Context, foods ...*models.Food) error {
	batch := c.index.NewBatch()
	for _, f := range foods {
		if f == nil {
			continue
		}
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", f.Name, err)
		}
		doc := map[string]interface{}{
			fieldName:       f.Name,
			fieldBrand:      f.Brand,
			fieldCategories: strings.Join(f.Categories, " "),
			fieldPayload:    string(payload),
		}
		if f.Barcode != "" {
			doc[fieldBarcode] = f.Barcode
		}
		if err := batch.Index(f.Key().String(), doc); err != nil {
			return fmt.Errorf("failed to index %s: %w", f.Name, err)
		}
	}
	if batch.Size() == 0 {
		return nil
	}
	if err := c.index.Batch(batch); err != nil {
		return fmt.Errorf("catalog batch failed: %w", err)
	}
	return nil
}

// Remove deletes the food with key from the index.
func (c *Catalog) Remove(ctx context.Context, key models.Key) error {
	return c.index.Delete(key.String())
}

// Search returns catalog foods matching every term of query, by prefix or
// within one edit. Queries shorter than the minimum length return an empty
// slice. Search never fails; index errors are logged.
func (c *Catalog) Search(ctx context.Context, query string) []*models.Food {
	if !models.QueryActive(query) {
		return []*models.Food{}
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return []*models.Food{}
	}
	clauses := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		clauses = append(clauses, termQuery(term))
	}
	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(clauses...))
	req.Size = c.limit
	req.Fields = []string{fieldPayload}

	foods, err := c.run(ctx, req)
	if err != nil {
		c.logger.Warn("catalog search failed", zap.String("query", query), zap.Error(err))
		return []*models.Food{}
	}
	return foods
}

// LookupBarcode returns the catalog food with barcode, or nil.
func (c *Catalog) LookupBarcode(ctx context.Context, barcode string) *models.Food {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil
	}
	q := bleve.NewTermQuery(barcode)
	q.SetField(fieldBarcode)
	req := bleve.NewSearchRequest(q)
	req.Size = 1
	req.Fields = []string{fieldPayload}

	foods, err := c.run(ctx, req)
	if err != nil {
		c.logger.Warn("catalog barcode lookup failed", zap.String("barcode", barcode), zap.Error(err))
		return nil
	}
	if len(foods) == 0 {
		return nil
	}
	return foods[0]
}

func (c *Catalog) run(ctx context.Context, req *bleve.SearchRequest) ([]*models.Food, error) {
	results, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}
	foods := make([]*models.Food, 0, len(results.Hits))
	for _, hit := range results.Hits {
		raw, ok := hit.Fields[fieldPayload].(string)
		if !ok {
			continue
		}
		var f models.Food
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			c.logger.Warn("skipping corrupt catalog payload", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		f.Source = models.SourceCatalog
		foods = append(foods, &f)
	}
	return foods, nil
}

// termQuery matches term as a prefix, or as a whole word within one edit when
// it is long enough for a typo to be meaningful.
func termQuery(term string) blevequery.Query {
	prefix := bleve.NewPrefixQuery(term)
	if len([]rune(term)) < models.MinQueryLength+1 {
		return prefix
	}
	fuzzy := bleve.NewFuzzyQuery(term)
	fuzzy.SetFuzziness(1)
	return bleve.NewDisjunctionQuery(prefix, fuzzy)
}

func tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '(' || r == ')'
	})
}

// Count returns the number of indexed foods.
func (c *Catalog) Count() (uint64, error) {
	return c.index.DocCount()
}

// Close closes the index.
func (c *Catalog) Close() error {
	return c.index.Close()
}
