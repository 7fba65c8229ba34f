// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPerPage is the number of rows shown when no page size is chosen.
const DefaultPerPage = 10

// PerPageOptions are the page sizes offered in the "Show N entries" picker.
var PerPageOptions = []int{10, 25, 50, 100}

// ValidPerPage reports whether n is one of PerPageOptions.
func ValidPerPage(n int) bool {
	for _, o := range PerPageOptions {
		if o == n {
			return true
		}
	}
	return false
}

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	return parsePositive(query.Get(r, "page"), 1)
}

// ParsePerPage extracts the "per_page" query parameter. Values outside
// PerPageOptions fall back to def (or DefaultPerPage when def is invalid).
func ParsePerPage(r *http.Request, def int) int {
	if !ValidPerPage(def) {
		def = DefaultPerPage
	}
	n := parsePositive(query.Get(r, "per_page"), def)
	if !ValidPerPage(n) {
		return def
	}
	return n
}

func parsePositive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// TotalPages returns ceil(total/perPage); 0 when there are no rows.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Clamp bounds page to [1, max(1,totalPages)].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Bounds returns the [lo, hi) slice indexes of page within total rows.
// Pages past the end yield an empty window (lo == hi == total).
func Bounds(page, perPage, total int) (lo, hi int) {
	if page < 1 || perPage < 1 || total <= 0 {
		return 0, 0
	}
	lo = (page - 1) * perPage
	if lo > total {
		lo = total
	}
	hi = lo + perPage
	if hi > total {
		hi = total
	}
	return lo, hi
}

// Range holds computed display range values for a paginated list
// ("Showing Start to End of Total entries").
type Range struct {
	Start    int // 1-based start index (0 if no results)
	End      int // 1-based end index (0 if no results)
	Total    int
	PrevPage int // page for the previous link (1 at the start)
	NextPage int // page for the next link (current page at the end)
}

// ComputeRange calculates display range values for page of perPage rows
// out of total.
func ComputeRange(page, perPage, total int) Range {
	pages := TotalPages(total, perPage)
	lo, hi := Bounds(page, perPage, total)

	prev := page - 1
	if prev < 1 {
		prev = 1
	}
	next := page + 1
	if next > pages {
		next = page
	}

	if hi == lo {
		return Range{Start: 0, End: 0, Total: total, PrevPage: prev, NextPage: next}
	}
	return Range{
		Start:    lo + 1,
		End:      hi,
		Total:    total,
		PrevPage: prev,
		NextPage: next,
	}
}
