package calendar

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/width"

	"dramafeed/models"
)

// Bucket names one of the five disjoint date ranges relative to "today".
type Bucket string

const (
	BucketRecentlyReleased Bucket = "recentlyReleased" // date < today
	BucketReleasingToday   Bucket = "releasingToday"   // date == today
	BucketNext7Days        Bucket = "next7Days"        // today < date <= today+7
	BucketNext30Days       Bucket = "next30Days"       // today+7 < date <= today+30
	BucketLater            Bucket = "later"            // date > today+30
)

// The selection policy is editorial, not derived: soonest-releasing content is
// prioritized. It lives in data tables so adjusting the ranking never touches
// control flow.
type quotaEntry struct {
	bucket Bucket
	take   int
}

var selectionQuotas = []quotaEntry{
	{BucketRecentlyReleased, 2},
	{BucketReleasingToday, 1},
	{BucketNext7Days, 4},
	{BucketNext30Days, 2},
	{BucketLater, 1},
}

var backfillOrder = []Bucket{
	BucketNext7Days,
	BucketNext30Days,
	BucketLater,
	BucketRecentlyReleased,
	BucketReleasingToday,
}

const (
	selectionTarget = 10
	// releasingToday never exceeds this, even during backfill.
	todayMaxTake = 3

	windowDaysBack    = 7
	windowDaysForward = 90
)

// Selection is the sampled display set plus bucket-size diagnostics.
type Selection struct {
	Items []models.ReleaseCalendarItem
	Stats models.BucketStats
}

// SelectUpcoming filters candidates to the [today-7d, today+90d] window,
// collapses near-duplicate titles, classifies the survivors into the five
// buckets and samples the display set by quota. Dates are compared as strings,
// which is sound because all release dates are zero-padded YYYY-MM-DD.
func SelectUpcoming(items []models.ReleaseCalendarItem, today time.Time) Selection {
	todayStr := today.Format("2006-01-02")
	minStr := today.AddDate(0, 0, -windowDaysBack).Format("2006-01-02")
	day7Str := today.AddDate(0, 0, 7).Format("2006-01-02")
	day30Str := today.AddDate(0, 0, 30).Format("2006-01-02")
	maxStr := today.AddDate(0, 0, windowDaysForward).Format("2006-01-02")

	var windowed []models.ReleaseCalendarItem
	for _, item := range items {
		if len(item.ReleaseDate) != 10 {
			continue
		}
		if item.ReleaseDate < minStr || item.ReleaseDate > maxStr {
			continue
		}
		windowed = append(windowed, item)
	}

	kept := dedupeSimilar(windowed)

	buckets := make(map[Bucket][]models.ReleaseCalendarItem, 5)
	for _, item := range kept {
		b := classify(item.ReleaseDate, todayStr, day7Str, day30Str)
		buckets[b] = append(buckets[b], item)
	}
	for b := range buckets {
		sortByReleaseDate(buckets[b])
	}

	return Selection{
		Items: sample(buckets),
		Stats: models.BucketStats{
			RecentlyReleased: len(buckets[BucketRecentlyReleased]),
			ReleasingToday:   len(buckets[BucketReleasingToday]),
			Next7Days:        len(buckets[BucketNext7Days]),
			Next30Days:       len(buckets[BucketNext30Days]),
			Later:            len(buckets[BucketLater]),
		},
	}
}

// classify places a date into exactly one bucket. The case order makes the
// ranges disjoint without explicit lower bounds.
func classify(date, today, day7, day30 string) Bucket {
	switch {
	case date < today:
		return BucketRecentlyReleased
	case date == today:
		return BucketReleasingToday
	case date <= day7:
		return BucketNext7Days
	case date <= day30:
		return BucketNext30Days
	default:
		return BucketLater
	}
}

func sortByReleaseDate(items []models.ReleaseCalendarItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].ReleaseDate < items[j-1].ReleaseDate; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// sample draws the quota from each bucket, then backfills unused capacity in
// priority order until the target is reached or candidates run out.
func sample(buckets map[Bucket][]models.ReleaseCalendarItem) []models.ReleaseCalendarItem {
	taken := make(map[Bucket]int, len(selectionQuotas))
	out := make([]models.ReleaseCalendarItem, 0, selectionTarget)

	for _, q := range selectionQuotas {
		n := min(q.take, len(buckets[q.bucket]))
		out = append(out, buckets[q.bucket][:n]...)
		taken[q.bucket] = n
	}

	for _, b := range backfillOrder {
		for len(out) < selectionTarget && taken[b] < len(buckets[b]) {
			if b == BucketReleasingToday && taken[b] >= todayMaxTake {
				break
			}
			out = append(out, buckets[b][taken[b]])
			taken[b]++
		}
	}
	return out
}

var seasonMarkerRe = regexp.MustCompile(`(?i)第\s*[0-9一二三四五六七八九十]+\s*季|season\s*[0-9]+|\bs[0-9]+\b`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeTitle reduces a title to its comparable core: full-width characters
// folded to half-width, season markers stripped, whitespace collapsed, and
// only the text after the last colon kept (subtitle conventions like
// "系列名：本季副标题" make the tail the distinguishing part).
func normalizeTitle(title string) string {
	s := width.Fold.String(title)
	s = seasonMarkerRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}

func hasSeasonMarker(title string) bool {
	return seasonMarkerRe.MatchString(width.Fold.String(title))
}

// dedupeSimilar collapses items whose raw or normalized titles collide. Among
// duplicates the unmarked base title beats a season-marked one; otherwise the
// earlier release date wins. Pairwise scan against the kept set is O(n²) but
// the window holds low hundreds of items at most.
func dedupeSimilar(items []models.ReleaseCalendarItem) []models.ReleaseCalendarItem {
	var kept []models.ReleaseCalendarItem
	for _, cand := range items {
		dup := -1
		for i := range kept {
			if kept[i].Title == cand.Title || normalizeTitle(kept[i].Title) == normalizeTitle(cand.Title) {
				dup = i
				break
			}
		}
		if dup == -1 {
			kept = append(kept, cand)
			continue
		}
		if preferOver(cand, kept[dup]) {
			kept[dup] = cand
		}
	}
	return kept
}

// preferOver reports whether a should replace b in the kept set.
func preferOver(a, b models.ReleaseCalendarItem) bool {
	aMarked, bMarked := hasSeasonMarker(a.Title), hasSeasonMarker(b.Title)
	if aMarked != bMarked {
		return !aMarked
	}
	return a.ReleaseDate < b.ReleaseDate
}
