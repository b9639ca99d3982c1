package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/details"
	"github.com/hyperjump/taberu/internal/manual"
	"github.com/hyperjump/taberu/internal/merge"
	"github.com/hyperjump/taberu/internal/models"
	"github.com/hyperjump/taberu/internal/scan"
	"github.com/hyperjump/taberu/internal/storage"
)

type foodResponse struct {
	Food    *models.Food      `json:"food"`
	Details map[string]string `json:"details"`
}

type notFoundResponse struct {
	Error   string        `json:"error"`
	Barcode string        `json:"barcode"`
	Prompt  []scan.Choice `json:"prompt"`
	Manual  *manual.Entry `json:"manual"`
}

type foodsResponse struct {
	Query      string         `json:"query,omitempty"`
	Tab        models.Tab     `json:"tab,omitempty"`
	Foods      []*models.Food `json:"foods"`
	Suggestion string         `json:"suggestion,omitempty"`
}

func (s *Server) handleLookupProduct(w http.ResponseWriter, r *http.Request) {
	barcode := strings.TrimSpace(chi.URLParam(r, "barcode"))
	source := r.URL.Query().Get("source")
	s.logger.Debug("lookup request", zap.String("barcode", barcode), zap.String("source", source))

	provider := s.provider(source)
	food := provider.LookupBarcode(r.Context(), barcode)
	if food != nil && provider != Provider(s.catalog) {
		s.remember(r, food)
	}
	if food == nil {
		s.respondJSON(w, http.StatusNotFound, notFoundResponse{
			Error:   "product not found",
			Barcode: barcode,
			Prompt:  scan.Choices,
			Manual:  scan.ManualEntryFor(barcode),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, foodResponse{Food: food, Details: details.Params(food, "")})
}

func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	source := r.URL.Query().Get("source")
	s.logger.Debug("search request", zap.String("query", query), zap.String("source", source))

	resp := foodsResponse{Query: query, Foods: []*models.Food{}}
	if models.QueryActive(query) {
		provider := s.provider(source)
		resp.Foods = provider.Search(r.Context(), query)
		if provider != Provider(s.catalog) {
			s.remember(r, resp.Foods...)
		}
	}
	if len(resp.Foods) == 0 && models.QueryActive(query) {
		if sg, ok := s.catalog.(interface{ Suggest(string) (string, bool) }); ok {
			if suggestion, changed := sg.Suggest(query); changed {
				resp.Suggestion = suggestion
			}
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleListFoods renders the food list: the tab's local records filtered by
// q, followed by remote matches when q is long enough and remote is not "0".
func (s *Server) handleListFoods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tab, err := models.ParseTab(r.URL.Query().Get("tab"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := r.URL.Query().Get("q")

	local, err := storage.LoadLocal(ctx, s.store, s.config.Search.HistoryLimit)
	if err != nil {
		s.logger.Error("list foods: load local failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	in := &merge.Input{
		Tab:          tab,
		Query:        query,
		History:      local.History,
		Favorites:    local.Favorites,
		Added:        local.Added,
		HistoryLimit: s.config.Search.HistoryLimit,
	}
	if models.QueryActive(query) && r.URL.Query().Get("remote") != "0" {
		provider := s.provider(r.URL.Query().Get("source"))
		in.Remote = provider.Search(ctx, strings.TrimSpace(query))
		if provider != Provider(s.catalog) {
			s.remember(r, in.Remote...)
		}
	}
	s.respondJSON(w, http.StatusOK, foodsResponse{Query: query, Tab: tab, Foods: merge.Build(in)})
}

func (s *Server) handleManualFood(w http.ResponseWriter, r *http.Request) {
	var entry manual.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	food, err := manual.Normalize(&entry)
	var invalid *manual.ValidationError
	if errors.As(err, &invalid) {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": invalid.Message, "field": invalid.Field})
		return
	}
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.AddFood(r.Context(), food); err != nil {
		s.logger.Error("manual food: store failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.remember(r, food)
	s.respondJSON(w, http.StatusCreated, foodResponse{Food: food, Details: details.Params(food, "")})
}

// handleLogEntry logs the record the details screen was opened with. The body
// is the details params object, mealType included.
func (s *Server) handleLogEntry(w http.ResponseWriter, r *http.Request) {
	var params map[string]string
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	food, meal, err := details.FromParams(params)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if params[details.KeyMealType] == "" {
		meal = models.MealTypeAt(s.now())
	}
	entry, err := s.store.AddEntry(r.Context(), food, meal, s.now())
	if err != nil {
		s.logger.Error("log entry: store failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.remember(r, entry.Food)
	s.respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	entries, err := s.store.ListToday(r.Context(), now)
	if err != nil {
		s.logger.Error("today: list failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    now.Format("2006-01-02"),
		"entries": entries,
	})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var food models.Food
	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(food.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := food.CheckNutrients(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	food.Normalize()
	if err := s.store.AddFavorite(r.Context(), &food); err != nil {
		s.logger.Error("add favorite failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.remember(r, &food)
	s.respondJSON(w, http.StatusCreated, &food)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	brand := r.URL.Query().Get("brand")
	if strings.TrimSpace(name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.TrimSpace(brand) == "" {
		brand = models.UnknownBrand
	}
	err := s.store.RemoveFavorite(r.Context(), models.IdentityKey(name, brand))
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "favorite not found")
		return
	}
	if err != nil {
		s.logger.Error("remove favorite failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// handleImport ingests a bulk file sent as the raw body; format is "json" or "xlsx".
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	res, err := s.importer.Import(r.Context(), r.Body, format)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := http.StatusCreated
	if res.Imported == 0 {
		status = http.StatusUnprocessableEntity
	}
	s.respondJSON(w, status, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := s.store.CountEntries(ctx)
	if err != nil {
		s.logger.Error("status: count entries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	catalogSize, err := s.catalog.Count()
	if err != nil {
		s.logger.Error("status: count catalog failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"entries": entries,
		"catalog": catalogSize,
		"offline": s.offline(),
	}

	paths := []string{s.config.Storage.CatalogPath}
	if f, ok := s.store.(interface{ Files() []string }); ok {
		paths = append(paths, f.Files()...)
	}
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}

	resp["config"] = map[string]interface{}{
		"database_path":   s.config.Storage.DatabasePath,
		"catalog_path":    s.config.Storage.CatalogPath,
		"off_base_url":    s.config.OpenFoodFacts.BaseURL,
		"debounce_ms":     s.config.Search.DebounceMillis,
		"history_limit":   s.config.Search.HistoryLimit,
		"import_watching": s.config.Import.Directories,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// remember adds foods to the catalog. A failure only costs offline findability.
func (s *Server) remember(r *http.Request, foods ...*models.Food) {
	if len(foods) == 0 {
		return
	}
	if err := s.catalog.Add(r.Context(), foods...); err != nil {
		s.logger.Warn("catalog add failed", zap.Error(err))
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
