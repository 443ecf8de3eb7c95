package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/afero"

	"dramafeed/config"
	"dramafeed/models"
)

const sourceTypeShortDrama = "shortdrama"

// Service aggregates short-drama catalog data across the configured sources,
// falling back to a default provider and then the fallback API when the
// configured set yields nothing. Its methods never return errors: total
// failure surfaces as an empty page, which the HTTP layer serves as a 200.
type Service struct {
	cfg        *config.Manager
	httpClient *http.Client
	cache      *fileCache // nil disables page caching

	// Constructor seams, replaced in tests.
	buildProvider    func(sc config.SourceConfig) Provider
	defaultProvider  func() Provider
	fallbackProvider func() Provider
}

// New creates the catalog service. An empty cacheDir disables page caching.
func New(cfg *config.Manager, client *http.Client, fs afero.Fs, cacheDir string) *Service {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	var cache *fileCache
	if cacheDir != "" {
		cache = newFileCache(fs, cacheDir, time.Hour)
	}
	s := &Service{
		cfg:        cfg,
		httpClient: client,
		cache:      cache,
	}
	s.buildProvider = func(sc config.SourceConfig) Provider {
		return NewCMSClient(client, sc.Key, sc.Name, sc.API)
	}
	s.defaultProvider = func() Provider {
		return NewCMSClient(client, "default", "默认源", defaultProviderAPI)
	}
	s.fallbackProvider = func() Provider {
		return NewFallbackClient(client, "")
	}
	return s
}

// List returns one aggregated, deduplicated page of the short-drama catalog.
func (s *Service) List(ctx context.Context, page, size int) *models.CatalogPage {
	key := fmt.Sprintf("list_p%d_s%d", page, size)
	if s.cache != nil {
		var cached models.CatalogPage
		if ok, _ := s.cache.get(key, &cached); ok {
			return &cached
		}
	}

	result := s.run(ctx, func(ctx context.Context, p Provider) (*PageResult, error) {
		return p.FetchPage(ctx, page)
	}, size)

	if s.cache != nil && len(result.List) > 0 {
		if err := s.cache.set(key, result); err != nil {
			log.Printf("[catalog] cache write failed: %v", err)
		}
	}
	return result
}

// Search returns one aggregated page of results for a query. Search results
// are not cached; query variance makes the hit rate not worth the disk churn.
func (s *Service) Search(ctx context.Context, query string, page, size int) *models.CatalogPage {
	return s.run(ctx, func(ctx context.Context, p Provider) (*PageResult, error) {
		return p.Search(ctx, query, page)
	}, size)
}

// Recommend returns the freshest deduplicated items across all sources.
func (s *Service) Recommend(ctx context.Context, size int) []models.ContentItem {
	page := s.run(ctx, func(ctx context.Context, p Provider) (*PageResult, error) {
		return p.FetchPage(ctx, 1)
	}, size)
	return page.List
}

// run executes the full pipeline: primary aggregation, fallback chain when the
// primary set yields nothing, dedup, recency sort, truncate.
func (s *Service) run(ctx context.Context, fetch fetchFunc, size int) *models.CatalogPage {
	items, hasMore := s.primary(ctx, fetch)
	if len(items) == 0 {
		items, hasMore = s.fallbackChain(ctx, fetch)
	}

	items = dedupeByName(items)
	sortByUpdateTime(items)
	if size > 0 && len(items) > size {
		items = items[:size]
		hasMore = true
	}
	if items == nil {
		items = []models.ContentItem{}
	}
	return &models.CatalogPage{List: items, HasMore: hasMore}
}

// primary aggregates across the configured, enabled sources.
func (s *Service) primary(ctx context.Context, fetch fetchFunc) ([]models.ContentItem, bool) {
	settings, err := s.cfg.Load()
	if err != nil {
		log.Printf("[catalog] load settings: %v", err)
		return nil, false
	}

	sources := settings.EnabledSources(sourceTypeShortDrama)
	if len(sources) == 0 {
		return nil, false
	}

	providers := make([]Provider, 0, len(sources))
	for _, sc := range sources {
		providers = append(providers, s.buildProvider(sc))
	}
	return aggregate(ctx, providers, fetch)
}

// fallbackChain tries the hardcoded default provider, then the fallback API.
// Terminal on the first non-empty result; exhaustion yields an empty set, so
// nothing here ever reaches the HTTP layer as an error.
func (s *Service) fallbackChain(ctx context.Context, fetch fetchFunc) ([]models.ContentItem, bool) {
	res, err := fetch(ctx, s.defaultProvider())
	if err != nil {
		log.Printf("[catalog] default source failed: %v", err)
	} else if len(res.Items) > 0 {
		return res.Items, res.HasMore
	}

	res, err = fetch(ctx, s.fallbackProvider())
	if err != nil {
		log.Printf("[catalog] fallback api failed: %v", err)
		return nil, false
	}
	return res.Items, res.HasMore
}
