package models

// ReleaseCalendarItem represents one upcoming (or recently released) title on
// the release calendar. ReleaseDate is zero-padded YYYY-MM-DD, so plain string
// comparison orders dates correctly.
type ReleaseCalendarItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Cover       string `json:"cover,omitempty"`
	ReleaseDate string `json:"releaseDate"`
	Type        string `json:"type"` // "movie" | "tv"
	Episodes    int    `json:"episodes,omitempty"`
}

// BucketStats records how many windowed candidates landed in each time bucket.
// Diagnostic only; it describes the pre-selection population, not the output.
type BucketStats struct {
	RecentlyReleased int `json:"recentlyReleased"`
	ReleasingToday   int `json:"releasingToday"`
	Next7Days        int `json:"next7Days"`
	Next30Days       int `json:"next30Days"`
	Later            int `json:"later"`
}

// ReleaseCalendarResponse is the API response for the release-calendar endpoint.
type ReleaseCalendarResponse struct {
	SelectedItems []ReleaseCalendarItem `json:"selectedItems"`
	Stats         BucketStats           `json:"stats"`
	RefreshedAt   string                `json:"refreshedAt,omitempty"`
}
