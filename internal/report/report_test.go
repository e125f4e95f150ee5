package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdash/internal/core"
)

func at(day int) time.Time {
	return time.Date(2024, 10, day, 10, 0, 0, 0, time.UTC)
}

func sampleFeedback() []core.Feedback {
	return []core.Feedback{
		{ID: "f1", EventID: "1", ParticipantName: "John", Rating: 5, Recommendation: core.RecommendYes, SubmittedAt: at(16),
			Categories: map[string]core.Rating{"venue": core.RatingExcellent, "organization": core.RatingGood}},
		{ID: "f2", EventID: "1", ParticipantName: "Jane", Rating: 4, Recommendation: core.RecommendYes, SubmittedAt: at(18),
			Categories: map[string]core.Rating{"venue": core.RatingGood}},
		{ID: "f3", EventID: "1", ParticipantName: "Bob", Rating: 2, Recommendation: core.RecommendNo, SubmittedAt: at(17),
			Categories: map[string]core.Rating{"venue": core.RatingPoor, "organization": core.RatingAverage}},
	}
}

func TestSortFeedbackNewestFirst(t *testing.T) {
	in := sampleFeedback()
	got := SortFeedbackNewestFirst(in)

	assert.Equal(t, []string{"f2", "f3", "f1"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "f1", in[0].ID, "input must not be reordered")
}

func TestSummarizeFeedback(t *testing.T) {
	stats := SummarizeFeedback(sampleFeedback())

	assert.Equal(t, 3, stats.Total)
	assert.InDelta(t, 3.7, stats.AverageRating, 0.001)
	assert.Equal(t, 2, stats.Recommendations[core.RecommendYes])
	assert.Equal(t, 1, stats.Recommendations[core.RecommendNo])
	assert.Equal(t, 67, stats.PositivePercent)

	require.Contains(t, stats.Categories, "venue")
	assert.Equal(t, 1, stats.Categories["venue"][core.RatingExcellent])
	assert.Equal(t, 1, stats.Categories["venue"][core.RatingGood])
	assert.Equal(t, 0, stats.Categories["venue"][core.RatingAverage])
	assert.Equal(t, 1, stats.Categories["venue"][core.RatingPoor])
	assert.Equal(t, []string{"organization", "venue"}, stats.CategoryNames())
}

func TestSummarizeFeedbackEmpty(t *testing.T) {
	stats := SummarizeFeedback(nil)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.Equal(t, 0, stats.PositivePercent)
	assert.Empty(t, stats.CategoryNames())
}

func TestBuildReport(t *testing.T) {
	events := []core.Event{
		{ID: "1", Category: "music", Participants: 1200, Status: core.StatusPast},
		{ID: "2", Category: "major-event", Participants: 850, Status: core.StatusPast},
		{ID: "3", Category: "music", Participants: 300, Status: core.StatusUpcoming},
		{ID: "4", Category: "rigging-service", Participants: 450, Status: core.StatusOngoing},
	}

	s := BuildReport(events, sampleFeedback())
	assert.Equal(t, 4, s.TotalEvents)
	assert.Equal(t, 2800, s.TotalAttendees)
	assert.Equal(t, 2, s.ByStatus[core.StatusPast])
	assert.Equal(t, 1, s.ByStatus[core.StatusUpcoming])
	assert.Equal(t, 1, s.ByStatus[core.StatusOngoing])

	require.Len(t, s.Categories, 3)
	assert.Equal(t, "music", s.Categories[0].Category)
	assert.Equal(t, 2, s.Categories[0].Count)
	assert.Equal(t, 50, s.Categories[0].Percent)
	assert.Equal(t, "major-event", s.Categories[1].Category)
	assert.Equal(t, "Major Event", s.Categories[1].Label)
	assert.Equal(t, "rigging-service", s.Categories[2].Category)
	assert.Equal(t, 3, s.Feedback.Total)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Rigging Service", Label("rigging-service"))
	assert.Equal(t, "Music", Label("music"))
	assert.Equal(t, "Excellent", Label("excellent"))
	assert.Equal(t, "", Label(""))
}
