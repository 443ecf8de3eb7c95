package catalog

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

	"dramafeed/models"
)

const (
	// defaultProviderAPI is tried when no sources are configured (or all of
	// them came back empty). It speaks the same Apple-CMS convention.
	defaultProviderAPI = "https://caiji.dyttzyapi.com/api.php/provide/vod"

	// fallbackAPIBaseURL is the last resort. It speaks its own schema, not the
	// Apple-CMS one, so it gets its own adapter below.
	fallbackAPIBaseURL = "https://api.djfeed.cc/v1/shortdrama"

	// SourceTagFallback marks items that came from the fallback API so callers
	// can tell provenance apart from configured sources.
	SourceTagFallback = "fallback_api"
)

// FallbackClient talks to the secondary fallback API. Its response schema is
// structurally different from Apple-CMS: flat items with their own field names
// and a currentPage/totalPages pagination shape (or a bare items array with no
// pagination at all).
type FallbackClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewFallbackClient constructs the fallback-API client.
func NewFallbackClient(client *http.Client, baseURL string) *FallbackClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = fallbackAPIBaseURL
	}
	return &FallbackClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

func (f *FallbackClient) Key() string  { return SourceTagFallback }
func (f *FallbackClient) Name() string { return "fallback" }

type fallbackItem struct {
	ID        json.Number `json:"id"`
	Title     string      `json:"title"`
	CoverURL  string      `json:"cover_url"`
	UpdatedAt string      `json:"updated_at"`
	Rating    json.Number `json:"rating"`
	TotalEps  int         `json:"total_episodes"`
	Intro     string      `json:"intro"`
	Director  string      `json:"director"`
	BannerURL string      `json:"banner_url"`
}

type fallbackPage struct {
	List        []fallbackItem `json:"list"`
	Items       []fallbackItem `json:"items"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
}

// FetchPage returns one page of the fallback API's short-drama feed.
func (f *FallbackClient) FetchPage(ctx context.Context, page int) (*PageResult, error) {
	return f.fetch(ctx, "/list", url.Values{"page": {strconv.Itoa(page)}})
}

// Search runs a keyword search against the fallback API.
func (f *FallbackClient) Search(ctx context.Context, query string, page int) (*PageResult, error) {
	return f.fetch(ctx, "/search", url.Values{
		"keyword": {query},
		"page":    {strconv.Itoa(page)},
	})
}

func (f *FallbackClient) fetch(ctx context.Context, path string, params url.Values) (*PageResult, error) {
	reqURL := f.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", cmsUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch fallback api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch fallback api: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, cmsMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read fallback response: %w", err)
	}

	var parsed fallbackPage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse fallback response: %w", err)
	}

	rawItems := parsed.List
	paginated := true
	if len(rawItems) == 0 && len(parsed.Items) > 0 {
		// Bare items shape carries no pagination.
		rawItems = parsed.Items
		paginated = false
	}

	now := time.Now()
	result := &PageResult{}
	for _, raw := range rawItems {
		result.Items = append(result.Items, toFallbackContentItem(raw, now))
	}
	if paginated {
		result.HasMore = parsed.TotalPages > 0 && parsed.CurrentPage < parsed.TotalPages
	}
	return result, nil
}

// toFallbackContentItem adapts the fallback API's schema into the normalized
// shape and tags provenance.
func toFallbackContentItem(raw fallbackItem, now time.Time) models.ContentItem {
	updateTime := strings.TrimSpace(raw.UpdatedAt)
	if updateTime == "" {
		updateTime = now.Format("2006-01-02 15:04:05")
	}

	episodes := raw.TotalEps
	if episodes < 1 {
		episodes = 1
	}

	return models.ContentItem{
		ID:           raw.ID.String(),
		Name:         raw.Title,
		Cover:        raw.CoverURL,
		UpdateTime:   updateTime,
		Score:        parseScore(raw.Rating.String()),
		EpisodeCount: episodes,
		Description:  raw.Intro,
		Author:       raw.Director,
		Backdrop:     raw.BannerURL,
		SourceTag:    SourceTagFallback,
	}
}
