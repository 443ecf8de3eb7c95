package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramafeed/config"
	"dramafeed/models"
)

func newTestService(t *testing.T, sources []config.SourceConfig, providers map[string]Provider) *Service {
	t.Helper()
	fs := afero.NewMemMapFs()
	cfg := config.NewManager(fs, "settings.json")
	require.NoError(t, cfg.Save(&config.Settings{Sources: sources}))

	svc := New(cfg, nil, fs, "")
	svc.buildProvider = func(sc config.SourceConfig) Provider {
		return providers[sc.Key]
	}
	svc.defaultProvider = func() Provider {
		return &stubProvider{key: "default", err: errors.New("default unreachable")}
	}
	svc.fallbackProvider = func() Provider {
		return &stubProvider{key: "fallback_api", err: errors.New("fallback unreachable")}
	}
	return svc
}

func shortDramaSource(key string) config.SourceConfig {
	return config.SourceConfig{Key: key, Name: key, API: "http://example/" + key, Type: "shortdrama"}
}

func TestList_MergesAcrossSources(t *testing.T) {
	// Scenario: two providers carry the same title; the one iterated later
	// (higher key after the registry's stable sort) wins.
	svc := newTestService(t,
		[]config.SourceConfig{shortDramaSource("a"), shortDramaSource("b")},
		map[string]Provider{
			"a": &stubProvider{key: "a", result: &PageResult{Items: []models.ContentItem{
				{ID: "1", Name: "Alpha", UpdateTime: "2024-01-01 00:00:00"},
			}}},
			"b": &stubProvider{key: "b", result: &PageResult{Items: []models.ContentItem{
				{ID: "2", Name: "Alpha", UpdateTime: "2024-06-01 00:00:00"},
			}}},
		})

	page := svc.List(context.Background(), 1, 20)
	require.Len(t, page.List, 1)
	assert.Equal(t, "2", page.List[0].ID)
	assert.Equal(t, "2024-06-01 00:00:00", page.List[0].UpdateTime)
}

func TestList_SortsNewestFirstAndTruncates(t *testing.T) {
	svc := newTestService(t,
		[]config.SourceConfig{shortDramaSource("a")},
		map[string]Provider{
			"a": &stubProvider{key: "a", result: &PageResult{Items: []models.ContentItem{
				{Name: "Old", UpdateTime: "2024-01-01 00:00:00"},
				{Name: "New", UpdateTime: "2024-06-01 00:00:00"},
				{Name: "Mid", UpdateTime: "2024-03-01 00:00:00"},
			}}},
		})

	page := svc.List(context.Background(), 1, 2)
	require.Len(t, page.List, 2)
	assert.Equal(t, "New", page.List[0].Name)
	assert.Equal(t, "Mid", page.List[1].Name)
	assert.True(t, page.HasMore) // truncation implies more
}

func TestList_DisabledAndForeignTypeSourcesSkipped(t *testing.T) {
	sources := []config.SourceConfig{
		{Key: "off", Name: "off", API: "http://example/off", Type: "shortdrama", Disabled: true},
		{Key: "movie", Name: "movie", API: "http://example/movie", Type: "movie"},
	}
	svc := newTestService(t, sources, map[string]Provider{
		"off":   &stubProvider{key: "off", result: &PageResult{Items: []models.ContentItem{{Name: "X"}}}},
		"movie": &stubProvider{key: "movie", result: &PageResult{Items: []models.ContentItem{{Name: "Y"}}}},
	})

	// No eligible sources, and both fallbacks error: empty success.
	page := svc.List(context.Background(), 1, 20)
	assert.Empty(t, page.List)
	assert.False(t, page.HasMore)
}

func TestList_FallbackChainExhausted(t *testing.T) {
	// No configured sources, default provider throws, fallback API throws:
	// still a well-formed empty page, never an error.
	svc := newTestService(t, nil, nil)

	page := svc.List(context.Background(), 1, 20)
	assert.NotNil(t, page.List)
	assert.Empty(t, page.List)
	assert.False(t, page.HasMore)
}

func TestList_FallbackToDefaultProvider(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.defaultProvider = func() Provider {
		return &stubProvider{key: "default", result: &PageResult{Items: []models.ContentItem{
			{ID: "d1", Name: "默认剧", UpdateTime: "2024-04-01 00:00:00"},
		}}}
	}

	page := svc.List(context.Background(), 1, 20)
	require.Len(t, page.List, 1)
	assert.Equal(t, "d1", page.List[0].ID)
}

func TestList_FallbackToSecondaryAPI(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.fallbackProvider = func() Provider {
		return &stubProvider{key: "fallback_api", result: &PageResult{Items: []models.ContentItem{
			{ID: "f1", Name: "兜底剧", SourceTag: SourceTagFallback},
		}}}
	}

	page := svc.List(context.Background(), 1, 20)
	require.Len(t, page.List, 1)
	assert.Equal(t, SourceTagFallback, page.List[0].SourceTag)
}

func TestList_FallbackWhenAllSourcesEmpty(t *testing.T) {
	// Configured sources respond but carry nothing; the chain still engages.
	svc := newTestService(t,
		[]config.SourceConfig{shortDramaSource("a")},
		map[string]Provider{"a": &stubProvider{key: "a", result: &PageResult{}}})
	svc.defaultProvider = func() Provider {
		return &stubProvider{key: "default", result: &PageResult{Items: []models.ContentItem{{ID: "d1", Name: "默认剧"}}}}
	}

	page := svc.List(context.Background(), 1, 20)
	require.Len(t, page.List, 1)
	assert.Equal(t, "d1", page.List[0].ID)
}

func TestSearch_QueryReachesProviders(t *testing.T) {
	got := make(chan string, 1)
	searcher := &recordingProvider{queries: got}
	svc := newTestService(t,
		[]config.SourceConfig{shortDramaSource("a")},
		map[string]Provider{"a": searcher})

	page := svc.Search(context.Background(), "战神", 1, 20)
	assert.Equal(t, "战神", <-got)
	require.Len(t, page.List, 1)
}

func TestRecommend_ReturnsBareItems(t *testing.T) {
	svc := newTestService(t,
		[]config.SourceConfig{shortDramaSource("a")},
		map[string]Provider{
			"a": &stubProvider{key: "a", result: &PageResult{Items: []models.ContentItem{
				{Name: "One", UpdateTime: "2024-06-01 00:00:00"},
				{Name: "Two", UpdateTime: "2024-05-01 00:00:00"},
			}}},
		})

	items := svc.Recommend(context.Background(), 1)
	require.Len(t, items, 1)
	assert.Equal(t, "One", items[0].Name)
}

func TestList_CachesPages(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.NewManager(fs, "settings.json")
	require.NoError(t, cfg.Save(&config.Settings{Sources: []config.SourceConfig{shortDramaSource("a")}}))

	calls := 0
	svc := New(cfg, nil, fs, "cache")
	svc.buildProvider = func(sc config.SourceConfig) Provider {
		calls++
		return &stubProvider{key: sc.Key, result: &PageResult{Items: []models.ContentItem{{ID: "1", Name: "Alpha"}}}}
	}

	first := svc.List(context.Background(), 1, 20)
	second := svc.List(context.Background(), 1, 20)
	assert.Equal(t, 1, calls, "second call should be served from cache")
	assert.Equal(t, first.List, second.List)
}

type recordingProvider struct {
	queries chan string
}

func (r *recordingProvider) Key() string  { return "rec" }
func (r *recordingProvider) Name() string { return "rec" }

func (r *recordingProvider) FetchPage(_ context.Context, _ int) (*PageResult, error) {
	return &PageResult{}, nil
}

func (r *recordingProvider) Search(_ context.Context, query string, _ int) (*PageResult, error) {
	r.queries <- query
	return &PageResult{Items: []models.ContentItem{{Name: "hit"}}}, nil
}
