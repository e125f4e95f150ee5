// Package listing holds the list utilities shared by every page: free-text
// and category filtering, and pagination arithmetic. Functions here are pure;
// they never mutate their input and are safe for concurrent use.
package listing

import (
	"strings"

	"golang.org/x/text/cases"
)

// AllCategories is the category sentinel that disables the category predicate.
const AllCategories = "all"

// Record is implemented by every entity kind that can be listed. Each kind
// declares its own searchable fields instead of exposing them by name.
type Record interface {
	SearchFields() []string
	CategoryValue() string
}

// Filter returns the records whose category matches and whose searchable
// fields contain query, case-insensitively. An empty query matches every
// record; the query is matched literally, whitespace included. Order is
// preserved.
func Filter[T Record](records []T, query, category string) []T {
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]T, 0, len(records))
	for _, r := range records {
		if !matchesCategory(r, category) {
			continue
		}
		if !matchesText(r, needle, fold) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Where returns the records for which keep reports true, preserving order.
func Where[T any](records []T, keep func(T) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func matchesCategory(r Record, category string) bool {
	return category == AllCategories || r.CategoryValue() == category
}

func matchesText(r Record, needle string, fold cases.Caser) bool {
	if needle == "" {
		return true
	}
	for _, field := range r.SearchFields() {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}
