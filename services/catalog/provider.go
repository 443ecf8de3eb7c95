package catalog

import (
	"context"

	"dramafeed/models"
)

// PageResult is one page of normalized items from a single provider.
type PageResult struct {
	Items   []models.ContentItem
	HasMore bool
}

// Provider fetches catalog pages from one upstream source. Implementations map
// their provider-specific JSON into models.ContentItem; the aggregation layer
// never sees raw provider payloads.
//
// A provider that has no matching category returns an empty PageResult, not an
// error. HTTP-level failures and malformed responses are returned as errors and
// isolated by the aggregator.
type Provider interface {
	// Key returns the registry key of the source ("fallback_api" for the
	// secondary fallback client).
	Key() string

	// Name returns the display name of the source.
	Name() string

	// FetchPage returns one page of the source's short-drama category.
	FetchPage(ctx context.Context, page int) (*PageResult, error)

	// Search returns one page of results matching the query text.
	Search(ctx context.Context, query string, page int) (*PageResult, error)
}
