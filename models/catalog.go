package models

// ContentItem is the normalized record for one catalog entry from an upstream
// provider. IDs are only unique within the originating source; Name is the
// cross-source dedup key, so callers must pair ID with the source key when
// building follow-up requests.
type ContentItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Cover        string  `json:"cover"`
	UpdateTime   string  `json:"updateTime"`
	Score        float64 `json:"score"`
	EpisodeCount int     `json:"episodeCount"`
	Description  string  `json:"description,omitempty"`
	Author       string  `json:"author,omitempty"`
	Backdrop     string  `json:"backdrop,omitempty"`
	SourceTag    string  `json:"sourceTag,omitempty"` // set only for fallback-API items
}

// CatalogPage is one page of aggregated catalog results.
type CatalogPage struct {
	List    []ContentItem `json:"list"`
	HasMore bool          `json:"hasMore"`
}
