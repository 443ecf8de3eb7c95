package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// shortDramaCategoryLabel is matched as a substring against the provider's
	// category names. Apple-CMS deployments name the category freely ("短剧",
	// "短剧片", "国产短剧"), so an exact match would miss most of them.
	shortDramaCategoryLabel = "短剧"

	cmsUserAgent = "Mozilla/5.0 (compatible; dramafeed/1.0)"

	// Providers occasionally return huge or runaway bodies; cap what we read.
	cmsMaxBodyBytes = 8 << 20
)

// CMSClient talks to one Apple-CMS style ("maccms") video API. The convention
// is two query shapes: ?ac=list returns the category table, ?ac=detail returns
// a page of items filtered by category id and optional keyword.
type CMSClient struct {
	key        string
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewCMSClient constructs a client for one configured source. A nil http
// client falls back to a 10s-timeout default.
func NewCMSClient(client *http.Client, key, name, baseURL string) *CMSClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &CMSClient{
		key:        key,
		name:       name,
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: client,
	}
}

func (c *CMSClient) Key() string  { return c.key }
func (c *CMSClient) Name() string { return c.name }

type cmsClass struct {
	TypeID   json.Number `json:"type_id"`
	TypeName string      `json:"type_name"`
}

type cmsItem struct {
	VodID       json.Number `json:"vod_id"`
	VodName     string      `json:"vod_name"`
	VodPic      string      `json:"vod_pic"`
	VodPicSlide string      `json:"vod_pic_slide"`
	VodTime     string      `json:"vod_time"`
	VodScore    string      `json:"vod_score"`
	VodRemarks  string      `json:"vod_remarks"`
	VodBlurb    string      `json:"vod_blurb"`
	VodContent  string      `json:"vod_content"`
	VodDirector string      `json:"vod_director"`
	VodActor    string      `json:"vod_actor"`
}

type cmsResponse struct {
	Code      int         `json:"code"`
	Page      json.Number `json:"page"`
	PageCount json.Number `json:"pagecount"`
	Class     []cmsClass  `json:"class"`
	List      []cmsItem   `json:"list"`
}

// FetchPage discovers the provider's short-drama category, then fetches one
// page of it. A provider without a matching category yields an empty result.
func (c *CMSClient) FetchPage(ctx context.Context, page int) (*PageResult, error) {
	categoryID, err := c.findCategory(ctx)
	if err != nil {
		return nil, err
	}
	if categoryID == "" {
		log.Printf("[cms] %s: no category matching %q, skipping", c.key, shortDramaCategoryLabel)
		return &PageResult{}, nil
	}
	return c.fetchDetail(ctx, url.Values{
		"ac": {"detail"},
		"t":  {categoryID},
		"pg": {strconv.Itoa(page)},
	})
}

// Search runs a keyword search scoped to the short-drama category.
func (c *CMSClient) Search(ctx context.Context, query string, page int) (*PageResult, error) {
	categoryID, err := c.findCategory(ctx)
	if err != nil {
		return nil, err
	}
	if categoryID == "" {
		log.Printf("[cms] %s: no category matching %q, skipping search", c.key, shortDramaCategoryLabel)
		return &PageResult{}, nil
	}
	return c.fetchDetail(ctx, url.Values{
		"ac": {"detail"},
		"t":  {categoryID},
		"wd": {query},
		"pg": {strconv.Itoa(page)},
	})
}

// findCategory calls ?ac=list and returns the type_id of the first category
// whose name contains the short-drama label, or "" when none matches.
func (c *CMSClient) findCategory(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, url.Values{"ac": {"list"}})
	if err != nil {
		return "", err
	}
	for _, class := range resp.Class {
		if strings.Contains(class.TypeName, shortDramaCategoryLabel) {
			return class.TypeID.String(), nil
		}
	}
	return "", nil
}

func (c *CMSClient) fetchDetail(ctx context.Context, params url.Values) (*PageResult, error) {
	resp, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &PageResult{}
	for _, raw := range resp.List {
		result.Items = append(result.Items, c.toContentItem(raw, now))
	}

	page, _ := resp.Page.Int64()
	pageCount, _ := resp.PageCount.Int64()
	result.HasMore = pageCount > 0 && page < pageCount
	return result, nil
}

func (c *CMSClient) doRequest(ctx context.Context, params url.Values) (*cmsResponse, error) {
	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", cmsUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", c.key, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, cmsMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.key, err)
	}

	var parsed cmsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", c.key, err)
	}
	return &parsed, nil
}
