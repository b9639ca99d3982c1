// Package server provides the HTTP API for taberu.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/config"
	"github.com/hyperjump/taberu/internal/importer"
	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/internal/storage"
	"github.com/hyperjump/taberu/pkg/utils"
)

// Provider looks up and searches products; nutrition.Client and
// catalog.Catalog both satisfy it.
type Provider interface {
	LookupBarcode(ctx context.Context, barcode string) *models.Food
	Search(ctx context.Context, query string) []*models.Food
}

// Catalog is the local index every stored food is added to.
type Catalog interface {
	Provider
	Add(ctx context.Context, foods ...*models.Food) error
	Count() (uint64, error)
}

// Server is the HTTP server for the taberu API.
type Server struct {
	store    storage.Store
	remote   Provider
	catalog  Catalog
	importer *importer.Importer
	config   *config.Config
	logger   *zap.Logger
	now      func() time.Time
	server   *http.Server
}

// NewServer creates a server with the given dependencies. remote may be nil,
// in which case lookups and searches go to the catalog, as in offline mode.
func NewServer(
	store storage.Store,
	remote Provider,
	catalog Catalog,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = utils.OrNop(logger)
	return &Server{
		store:    store,
		remote:   remote,
		catalog:  catalog,
		importer: importer.New(store, importer.WithIndexer(catalog), importer.WithLogger(logger)),
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/products", s.handleSearchProducts)
		r.Get("/products/{barcode}", s.handleLookupProduct)
		r.Get("/foods", s.handleListFoods)
		r.Post("/foods/manual", s.handleManualFood)
		r.Post("/history", s.handleLogEntry)
		r.Get("/history/today", s.handleToday)
		r.Post("/favorites", s.handleAddFavorite)
		r.Delete("/favorites", s.handleRemoveFavorite)
		r.Post("/import", s.handleImport)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.Bool("offline", s.offline()))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) offline() bool {
	return s.remote == nil || s.config.OpenFoodFacts.Offline
}

// provider picks where product lookups go: source "catalog" or offline mode
// use the local catalog, anything else the remote database.
func (s *Server) provider(source string) Provider {
	if source == string(models.SourceCatalog) || s.offline() {
		return s.catalog
	}
	return s.remote
}
