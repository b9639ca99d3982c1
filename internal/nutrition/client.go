// Package nutrition fetches products from Open Food Facts and shapes them into canonical food records.
//
// Lookups and searches never return errors: not found is nil (barcode) or an
// empty list (search), and transport or decode failures are logged and
// degrade to the same empty results.
package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/taberu/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://world.openfoodfacts.org"
	DefaultUserAgent = "taberu/dev (food logging; contact@hyperjump.tech)"
	defaultPageSize  = 20
	defaultTimeout   = 10 * time.Second
)

// Client talks to the Open Food Facts API.
type Client struct {
	baseURL   string
	userAgent string
	pageSize  int
	http      *http.Client
	cache     *ProductCache
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for degraded fetches.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCache enables an LRU cache of found barcodes with the given capacity.
func WithCache(capacity int) Option {
	return func(c *Client) {
		if capacity > 0 {
			c.cache = NewProductCache(capacity)
		}
	}
}

// WithPageSize sets how many products a search asks for.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a client for baseURL. userAgent is sent on every request,
// as the upstream usage policy requires an identifying client string.
func NewClient(baseURL, userAgent string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		pageSize:  defaultPageSize,
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupBarcode fetches one product. It returns nil when the product is not
// found or the fetch fails; it makes exactly one round trip on a cache miss.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) *models.Food {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil
	}
	if c.cache != nil {
		if food, ok := c.cache.Get(barcode); ok {
			c.logger.Debug("product cache hit", zap.String("barcode", barcode))
			return food
		}
	}

	u := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(barcode))
	var env productEnvelope
	if err := c.getJSON(ctx, u, &env); err != nil {
		c.logger.Warn("barcode lookup failed", zap.String("barcode", barcode), zap.Error(err))
		return nil
	}
	if !env.found() {
		c.logger.Debug("barcode not found", zap.String("barcode", barcode))
		return nil
	}
	food := shapeProduct(env.Product, barcode)
	if c.cache != nil {
		c.cache.Set(barcode, food)
	}
	return food
}

// Search runs a free-text search. Queries shorter than models.MinQueryLength
// after trimming return an empty list without a network call. The result is
// never nil.
func (c *Client) Search(ctx context.Context, query string) []*models.Food {
	query = strings.TrimSpace(query)
	if !models.QueryActive(query) {
		return []*models.Food{}
	}

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(c.pageSize))
	u := c.baseURL + "/cgi/search.pl?" + params.Encode()

	var env searchEnvelope
	if err := c.getJSON(ctx, u, &env); err != nil {
		c.logger.Warn("product search failed", zap.String("query", query), zap.Error(err))
		return []*models.Food{}
	}
	foods := make([]*models.Food, 0, len(env.Products))
	for i := range env.Products {
		foods = append(foods, shapeProduct(&env.Products[i], ""))
	}
	return foods
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// A missing product comes back as 404 with a status 0 envelope.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
