package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"dramafeed/models"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 50
	defaultRecommends = 10
)

// catalogService is what the catalog handler needs from the aggregation
// pipeline.
type catalogService interface {
	List(ctx context.Context, page, size int) *models.CatalogPage
	Search(ctx context.Context, query string, page, size int) *models.CatalogPage
	Recommend(ctx context.Context, size int) []models.ContentItem
}

// CatalogHandler serves the short-drama list/search/recommend endpoints.
type CatalogHandler struct {
	Service catalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

// GetList returns one aggregated catalog page.
func (h *CatalogHandler) GetList(w http.ResponseWriter, r *http.Request) {
	page := parsePositive(r.URL.Query().Get("page"), 1)
	size := parseSize(r.URL.Query().Get("size"))

	result := h.Service.List(r.Context(), page, size)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GetSearch returns one aggregated page of search results. The query text is
// the only required input on the whole catalog surface.
func (h *CatalogHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "missing query parameter: q"})
		return
	}

	page := parsePositive(r.URL.Query().Get("page"), 1)
	size := parseSize(r.URL.Query().Get("size"))

	result := h.Service.Search(r.Context(), query, page, size)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// GetRecommend returns a bare item array of the freshest titles.
func (h *CatalogHandler) GetRecommend(w http.ResponseWriter, r *http.Request) {
	size := parsePositive(r.URL.Query().Get("size"), defaultRecommends)
	if size > maxPageSize {
		size = maxPageSize
	}

	items := h.Service.Recommend(r.Context(), size)
	if items == nil {
		items = []models.ContentItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func parsePositive(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseSize(raw string) int {
	size := parsePositive(raw, defaultPageSize)
	if size > maxPageSize {
		size = maxPageSize
	}
	return size
}
