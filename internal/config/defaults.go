package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/taberu/data/taberu.db"
	}
	if cfg.Storage.CatalogPath == "" {
		cfg.Storage.CatalogPath = "/usr/local/var/taberu/data/catalog.bleve"
	}
	if cfg.OpenFoodFacts.BaseURL == "" {
		cfg.OpenFoodFacts.BaseURL = "https://world.openfoodfacts.org"
	}
	if cfg.OpenFoodFacts.UserAgent == "" {
		cfg.OpenFoodFacts.UserAgent = "taberu/dev (food logging; contact@hyperjump.tech)"
	}
	if cfg.OpenFoodFacts.TimeoutSeconds == 0 {
		cfg.OpenFoodFacts.TimeoutSeconds = 10
	}
	if cfg.OpenFoodFacts.PageSize == 0 {
		cfg.OpenFoodFacts.PageSize = 24
	}
	if cfg.OpenFoodFacts.CacheSize == 0 {
		cfg.OpenFoodFacts.CacheSize = 256
	}
	if cfg.Search.DebounceMillis == 0 {
		cfg.Search.DebounceMillis = 450
	}
	if cfg.Search.HistoryLimit == 0 {
		cfg.Search.HistoryLimit = 100
	}
	if cfg.Search.CatalogLimit == 0 {
		cfg.Search.CatalogLimit = 50
	}
	if cfg.Import.SettleMillis == 0 {
		cfg.Import.SettleMillis = 400
	}
	if cfg.Import.Extensions == nil {
		cfg.Import.Extensions = []string{".json", ".xlsx"}
	}
}
