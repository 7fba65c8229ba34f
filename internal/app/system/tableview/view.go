package tableview

import (
	"github.com/homeandown/estatehub/internal/app/system/paging"
	"github.com/homeandown/estatehub/internal/domain/models"
)

// View is the state of one on-screen table: its filters and page
// position. Every filter or page-size change resets the page to 1.
type View struct {
	Title  string
	Filter FilterState
	Page   PageState

	totalPages int
	rendered   bool
}

// NewView returns a view with default filters at page 1.
func NewView(title string, perPage int) *View {
	p := DefaultPage()
	p.PerPage = perPage
	return &View{Title: title, Filter: DefaultFilter(), Page: p.Normalize()}
}

// SetSearch changes the search term.
func (v *View) SetSearch(term string) {
	v.Filter.Search = term
	v.Page.Page = 1
}

// SetStatus changes the status filter.
func (v *View) SetStatus(status string) {
	v.Filter.Status = status
	v.Page.Page = 1
}

// SetUserType changes the user type filter.
func (v *View) SetUserType(userType string) {
	v.Filter.UserType = userType
	v.Page.Page = 1
}

// SetListingType changes the listing type filter.
func (v *View) SetListingType(listingType string) {
	v.Filter.ListingType = listingType
	v.Page.Page = 1
}

// SetFilter replaces all filter axes at once. The page resets only when
// something actually changed.
func (v *View) SetFilter(f FilterState) {
	if f != v.Filter {
		v.Filter = f
		v.Page.Page = 1
	}
}

// SetPerPage changes the page size.
func (v *View) SetPerPage(n int) {
	v.Page.PerPage = n
	v.Page = v.Page.Normalize()
	v.Page.Page = 1
}

// SetPage moves to page n, bounded by the page count of the last Render.
// Before the first Render only the lower bound applies; Render clamps the
// upper bound once the row count is known.
func (v *View) SetPage(n int) {
	if !v.rendered {
		v.Page.Page = max(n, 1)
		return
	}
	v.Page.Page = paging.Clamp(n, v.totalPages)
}

// Result is one rendered table state.
type Result struct {
	Rows       []models.Record
	Filtered   []models.Record
	Page       int
	PerPage    int
	TotalPages int
	Total      int
	Range      paging.Range
}

// Empty reports whether the filtered set has no rows (the empty-state
// message should be shown).
func (r Result) Empty() bool { return r.Total == 0 }

// Render filters records, clamps the page to max(1,totalPages) and cuts
// the current page.
func (v *View) Render(records []models.Record) Result {
	filtered := ApplyFilters(records, v.Filter)
	v.Page = v.Page.Normalize()
	v.totalPages = paging.TotalPages(len(filtered), v.Page.PerPage)
	v.rendered = true
	v.Page.Page = paging.Clamp(v.Page.Page, v.totalPages)

	rows, _ := Paginate(filtered, v.Page)
	return Result{
		Rows:       rows,
		Filtered:   filtered,
		Page:       v.Page.Page,
		PerPage:    v.Page.PerPage,
		TotalPages: v.totalPages,
		Total:      len(filtered),
		Range:      paging.ComputeRange(v.Page.Page, v.Page.PerPage, len(filtered)),
	}
}
