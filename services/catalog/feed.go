package catalog

import (
	"context"
	"errors"

	"dramafeed/models"
)

// ReleaseFeed adapts aggregated catalog pages into release-calendar
// candidates. Unlike the request-path pipeline it reports total failure as an
// error, because the background worker that consumes it retries.
type ReleaseFeed struct {
	svc   *Service
	pages int
}

// NewReleaseFeed creates a feed that scans up to the given number of catalog
// pages per refresh.
func NewReleaseFeed(svc *Service, pages int) *ReleaseFeed {
	if pages < 1 {
		pages = 1
	}
	return &ReleaseFeed{svc: svc, pages: pages}
}

// UpcomingTitles collects candidates from all sources. The fallback chain only
// engages on the first page; deeper pages of a fallback source rarely carry
// calendar-relevant titles.
func (f *ReleaseFeed) UpcomingTitles(ctx context.Context) ([]models.ReleaseCalendarItem, error) {
	var all []models.ContentItem
	for page := 1; page <= f.pages; page++ {
		fetch := func(ctx context.Context, p Provider) (*PageResult, error) {
			return p.FetchPage(ctx, page)
		}
		items, hasMore := f.svc.primary(ctx, fetch)
		if len(items) == 0 && page == 1 {
			items, hasMore = f.svc.fallbackChain(ctx, fetch)
		}
		all = append(all, items...)
		if !hasMore {
			break
		}
	}
	if len(all) == 0 {
		return nil, errors.New("no release candidates from any source")
	}

	all = dedupeByName(all)
	out := make([]models.ReleaseCalendarItem, 0, len(all))
	for _, item := range all {
		out = append(out, toReleaseItem(item))
	}
	return out, nil
}

// toReleaseItem maps a catalog record to a calendar candidate. The update
// timestamp's date part stands in for the release date; providers bump it on
// every episode drop, which is exactly the event the calendar tracks.
func toReleaseItem(item models.ContentItem) models.ReleaseCalendarItem {
	date := item.UpdateTime
	if t, ok := parseUpdateTime(date); ok {
		date = t.Format("2006-01-02")
	} else if len(date) > 10 {
		date = date[:10]
	}

	mediaType := "tv"
	if item.EpisodeCount <= 1 {
		mediaType = "movie"
	}

	return models.ReleaseCalendarItem{
		ID:          item.ID,
		Title:       item.Name,
		Cover:       item.Cover,
		ReleaseDate: date,
		Type:        mediaType,
		Episodes:    item.EpisodeCount,
	}
}
