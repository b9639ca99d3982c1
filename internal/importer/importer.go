package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/manual"
	"github.com/hyperjump/taberu/internal/models"
)

// DefaultExtensions are the file types the importer understands.
var DefaultExtensions = []string{".json", ".xlsx"}

// Sink receives normalized foods; storage.Store satisfies it.
type Sink interface {
	AddFood(ctx context.Context, food *models.Food) error
}

// Indexer makes imported foods searchable; catalog.Catalog satisfies it.
type Indexer interface {
	Add(ctx context.Context, foods ...*models.Food) error
}

// RowError is a row that failed validation or storage and was skipped.
type RowError struct {
	Row int    `json:"row"`
	Err string `json:"error"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Err)
}

// Result summarizes one imported file.
type Result struct {
	Path     string         `json:"path"`
	Imported int            `json:"imported"`
	Errors   []RowError     `json:"errors,omitempty"`
	Foods    []*models.Food `json:"-"`
}

// Importer normalizes file rows through the manual entry rules and stores them.
type Importer struct {
	sink   Sink
	index  Indexer
	logger *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Importer) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithIndexer also adds imported foods to index.
func WithIndexer(index Indexer) Option {
	return func(i *Importer) { i.index = index }
}

// New creates an importer writing to sink.
func New(sink Sink, opts ...Option) *Importer {
	i := &Importer{sink: sink, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportFile imports path, choosing the parser by extension.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := i.Import(ctx, f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Path = path
	return res, nil
}

// Import reads r in the given format (".json" or ".xlsx"). Invalid rows are
// reported in the result and skipped; only unreadable input is an error.
func (i *Importer) Import(ctx context.Context, r io.Reader, format string) (*Result, error) {
	var (
		rows []Row
		err  error
	)
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "json":
		rows, err = ParseJSON(r)
	case "xlsx":
		rows, err = ParseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, row := range rows {
		entry := row.Entry
		food, err := manual.Normalize(&entry)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: row.Number, Err: err.Error()})
			continue
		}
		if err := i.sink.AddFood(ctx, food); err != nil {
			res.Errors = append(res.Errors, RowError{Row: row.Number, Err: err.Error()})
			continue
		}
		res.Foods = append(res.Foods, food)
	}
	res.Imported = len(res.Foods)

	if i.index != nil && len(res.Foods) > 0 {
		if err := i.index.Add(ctx, res.Foods...); err != nil {
			i.logger.Warn("failed to index imported foods", zap.Error(err))
		}
	}
	i.logger.Info("import finished", zap.Int("imported", res.Imported), zap.Int("rejected", len(res.Errors)))
	return res, nil
}
