package analytics

import (
	"math"
	"sort"
	"strings"

	"cafeDesk/internal/model"
)

// PageStats groups visits by page path and returns each page's share of the
// total, most visited first. Ties are ordered by page path.
func PageStats(pages []string) []model.PageStat {
	counts := make(map[string]int, len(pages))
	for _, p := range pages {
		counts[p]++
	}

	total := len(pages)
	stats := make([]model.PageStat, 0, len(counts))
	for page, visits := range counts {
		stats = append(stats, model.PageStat{
			Page:       page,
			Visits:     visits,
			Percentage: percentage(visits, total),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Visits != stats[j].Visits {
			return stats[i].Visits > stats[j].Visits
		}
		return stats[i].Page < stats[j].Page
	})
	return stats
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Browser names the browser family of a user agent. The checks run in the
// same order the dashboard always used, so Edge and most mobile agents
// report as Chrome or Safari.
func Browser(userAgent *string) string {
	if userAgent == nil || *userAgent == "" {
		return "Unknown"
	}
	ua := *userAgent
	switch {
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	default:
		return "Other"
	}
}

// RatingLabel describes a 1-5 feedback rating.
func RatingLabel(rating *int) string {
	if rating == nil || *rating == 0 {
		return "No Rating"
	}
	switch r := *rating; {
	case r >= 4:
		return "Excellent"
	case r >= 3:
		return "Good"
	case r >= 2:
		return "Fair"
	default:
		return "Poor"
	}
}
