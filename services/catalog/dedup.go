package catalog

import (
	"sort"
	"time"

	"dramafeed/models"
)

// dedupeByName merges items that share a display title. Later items overwrite
// earlier ones wholesale (last write wins, no field merging), so with the
// provider list pinned by the config layer the outcome is reproducible.
// Output preserves first-seen order of each title.
func dedupeByName(items []models.ContentItem) []models.ContentItem {
	if len(items) == 0 {
		return nil
	}
	slot := make(map[string]int, len(items))
	out := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if idx, ok := slot[item.Name]; ok {
			out[idx] = item
			continue
		}
		slot[item.Name] = len(out)
		out = append(out, item)
	}
	return out
}

var updateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseUpdateTime(s string) (time.Time, bool) {
	for _, layout := range updateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortByUpdateTime orders items newest first. Timestamps that parse are
// compared as times; anything else falls back to reverse string order, which
// matches for the zero-padded formats providers actually send.
func sortByUpdateTime(items []models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, okI := parseUpdateTime(items[i].UpdateTime)
		tj, okJ := parseUpdateTime(items[j].UpdateTime)
		if okI && okJ {
			return ti.After(tj)
		}
		return items[i].UpdateTime > items[j].UpdateTime
	})
}
