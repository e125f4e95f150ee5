package listing

import (
	"fmt"

	"eventdash/internal/core"
)

// DefaultPageSize is used by callers that have no explicit page size.
const DefaultPageSize = 10

// Page is one slice of a paginated list plus the metadata needed for
// "showing X-Y of Z" labels.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalPages int
	Total      int
	From       int // 1-based, inclusive; 0 when Items is empty
	To         int // 1-based, inclusive; 0 when Items is empty
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 && p.Page <= p.TotalPages }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Page >= 1 && p.Page < p.TotalPages }

// TotalPages returns max(1, ceil(total/pageSize)).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the requested 1-based page. A page outside
// [1, TotalPages] yields no items and zero bounds rather than an error; only
// a page size below 1 is rejected.
func Paginate[T any](records []T, page, pageSize int) (Page[T], error) {
	if pageSize < 1 {
		return Page[T]{}, fmt.Errorf("%w: page size %d must be at least 1", core.ErrInvalidArgument, pageSize)
	}

	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		Total:      len(records),
		TotalPages: TotalPages(len(records), pageSize),
	}
	if page < 1 || page > p.TotalPages {
		return p, nil
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(records))
	if start >= end {
		return p, nil
	}

	p.Items = append(make([]T, 0, end-start), records[start:end]...)
	p.From = start + 1
	p.To = end
	return p, nil
}

// ClampPage moves page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	return max(1, min(page, totalPages))
}

// PageWindow returns up to width consecutive page numbers around current:
// the first pages near the start, the last pages near the end and a window
// centered on current otherwise.
func PageWindow(current, totalPages, width int) []int {
	if totalPages < 1 || width < 1 {
		return nil
	}
	n := min(width, totalPages)
	current = ClampPage(current, totalPages)
	half := width / 2

	var first int
	switch {
	case totalPages <= width:
		first = 1
	case current <= half+1:
		first = 1
	case current >= totalPages-half:
		first = totalPages - width + 1
	default:
		first = current - half
	}

	out := make([]int, n)
	for i := range out {
		out[i] = first + i
	}
	return out
}
