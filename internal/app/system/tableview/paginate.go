package tableview

import (
	"github.com/homeandown/estatehub/internal/app/system/paging"
	"github.com/homeandown/estatehub/internal/domain/models"
)

// PageState is the page position of a table.
type PageState struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultPage is page 1 at the default page size.
func DefaultPage() PageState {
	return PageState{Page: 1, PerPage: paging.DefaultPerPage}
}

// Normalize replaces out-of-range values with defaults.
func (p PageState) Normalize() PageState {
	if p.Page < 1 {
		p.Page = 1
	}
	if !paging.ValidPerPage(p.PerPage) {
		p.PerPage = paging.DefaultPerPage
	}
	return p
}

// Paginate returns the rows of page p and the total number of pages.
// A page past the end is empty; clamping is the caller's choice (see View).
func Paginate(filtered []models.Record, p PageState) ([]models.Record, int) {
	p = p.Normalize()
	total := paging.TotalPages(len(filtered), p.PerPage)
	lo, hi := paging.Bounds(p.Page, p.PerPage, len(filtered))
	return filtered[lo:hi], total
}
