package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dramafeed/models"
)

var scoreRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// toContentItem maps one raw Apple-CMS record into the normalized shape.
// Missing update times fall back to "now" so recency sorting stays total.
func (c *CMSClient) toContentItem(raw cmsItem, now time.Time) models.ContentItem {
	updateTime := strings.TrimSpace(raw.VodTime)
	if updateTime == "" {
		updateTime = now.Format("2006-01-02 15:04:05")
	}

	description := raw.VodBlurb
	if description == "" {
		description = raw.VodContent
	}

	author := raw.VodDirector
	if author == "" {
		author = raw.VodActor
	}

	return models.ContentItem{
		ID:           raw.VodID.String(),
		Name:         raw.VodName,
		Cover:        raw.VodPic,
		UpdateTime:   updateTime,
		Score:        parseScore(raw.VodScore),
		EpisodeCount: parseEpisodeCount(raw.VodRemarks),
		Description:  description,
		Author:       author,
		Backdrop:     raw.VodPicSlide,
	}
}

// parseScore pulls the first decimal number out of a free-text rating field
// ("8.5", "8.5分", "暂无" → 8.5, 8.5, 0). Unparsable input scores 0.
func parseScore(raw string) float64 {
	match := scoreRe.FindString(raw)
	if match == "" {
		return 0
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return score
}

// parseEpisodeCount extracts the digits from a free-text remarks field
// ("更新至12集" → 12). Anything without digits counts as a single episode.
func parseEpisodeCount(raw string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 1
	}
	count, err := strconv.Atoi(digits)
	if err != nil || count < 1 {
		return 1
	}
	return count
}
