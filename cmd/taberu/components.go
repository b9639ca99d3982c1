package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/catalog"
	"github.com/hyperjump/taberu/internal/config"
	"github.com/hyperjump/taberu/internal/nutrition"
	"github.com/hyperjump/taberu/internal/server"
	"github.com/hyperjump/taberu/internal/storage"
)

// Components holds everything a command needs, built once from config.
type Components struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *storage.SQLiteStore
	Catalog *catalog.Catalog
	Remote  *nutrition.Client
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
}

// Provider returns where product lookups and searches go. Offline mode
// uses the local catalog.
func (c *Components) Provider() server.Provider {
	if c.Remote == nil || c.Config.OpenFoodFacts.Offline {
		return c.Catalog
	}
	return c.Remote
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	cat, err := catalog.NewCatalog(
		cfg.Storage.CatalogPath,
		catalog.WithLogger(logger),
		catalog.WithLimit(cfg.Search.CatalogLimit),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	var remote *nutrition.Client
	if !cfg.OpenFoodFacts.Offline {
		remote = nutrition.NewClient(
			cfg.OpenFoodFacts.BaseURL,
			cfg.OpenFoodFacts.UserAgent,
			nutrition.WithTimeout(cfg.OpenFoodFacts.Timeout()),
			nutrition.WithCache(cfg.OpenFoodFacts.CacheSize),
			nutrition.WithPageSize(cfg.OpenFoodFacts.PageSize),
			nutrition.WithLogger(logger),
		)
	}

	logger.Debug("components ready",
		zap.String("database", store.Path()),
		zap.String("catalog", cfg.Storage.CatalogPath),
		zap.Bool("offline", remote == nil),
	)
	return &Components{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Catalog: cat,
		Remote:  remote,
	}, nil
}
