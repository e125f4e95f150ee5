// Package report aggregates events and feedback into the figures shown on
// the feedback and report pages.
package report

import (
	"math"
	"sort"

	"eventdash/internal/core"
)

// FeedbackStats summarizes the feedback of one event.
type FeedbackStats struct {
	Total           int
	AverageRating   float64
	Recommendations map[string]int
	PositivePercent int
	// Categories maps a feedback category (venue, speakers, ...) to the
	// number of answers per rating label.
	Categories map[string]map[core.Rating]int
}

// SortFeedbackNewestFirst returns a copy ordered by submission time,
// most recent first. Ties keep their input order.
func SortFeedbackNewestFirst(items []core.Feedback) []core.Feedback {
	out := append([]core.Feedback(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// SummarizeFeedback computes the rating average, recommendation counts and
// per-category rating counts.
func SummarizeFeedback(items []core.Feedback) FeedbackStats {
	stats := FeedbackStats{
		Total:           len(items),
		Recommendations: map[string]int{},
		Categories:      map[string]map[core.Rating]int{},
	}
	if len(items) == 0 {
		return stats
	}

	sum := 0
	for _, f := range items {
		sum += f.Rating
		stats.Recommendations[f.Recommendation]++
		for cat, rating := range f.Categories {
			counts, ok := stats.Categories[cat]
			if !ok {
				counts = map[core.Rating]int{}
				for _, r := range core.Ratings() {
					counts[r] = 0
				}
				stats.Categories[cat] = counts
			}
			counts[rating]++
		}
	}

	stats.AverageRating = roundTo(float64(sum)/float64(len(items)), 1)
	stats.PositivePercent = int(math.Round(float64(stats.Recommendations[core.RecommendYes]) / float64(len(items)) * 100))
	return stats
}

// CategoryNames returns the feedback categories in alphabetical order.
func (s FeedbackStats) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
