package report

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"eventdash/internal/core"
)

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string
	Label    string
	Count    int
	Percent  int
}

// Summary is the data behind the report page.
type Summary struct {
	TotalEvents    int
	TotalAttendees int
	ByStatus       map[core.EventStatus]int
	Categories     []CategoryCount
	Feedback       FeedbackStats
}

// BuildReport aggregates events and all collected feedback.
func BuildReport(events []core.Event, feedback []core.Feedback) Summary {
	s := Summary{
		TotalEvents: len(events),
		ByStatus: map[core.EventStatus]int{
			core.StatusUpcoming: 0,
			core.StatusOngoing:  0,
			core.StatusPast:     0,
		},
		Feedback: SummarizeFeedback(feedback),
	}

	counts := map[string]int{}
	for _, e := range events {
		s.TotalAttendees += e.Participants
		if e.Status != "" {
			s.ByStatus[e.Status]++
		}
		counts[e.Category]++
	}

	for cat, n := range counts {
		cc := CategoryCount{Category: cat, Label: Label(cat), Count: n}
		if s.TotalEvents > 0 {
			cc.Percent = n * 100 / s.TotalEvents
		}
		s.Categories = append(s.Categories, cc)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Count != s.Categories[j].Count {
			return s.Categories[i].Count > s.Categories[j].Count
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})
	return s
}

// Label turns a slug such as "rigging-service" into "Rigging Service".
func Label(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
