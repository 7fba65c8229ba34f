// Package tableview is the in-memory list engine behind every admin
// table: full-row search, status/user-type/listing-type filters,
// fixed-size pages and row rendering.
//
// All functions work on already-fetched records; nothing here talks to
// the data gateway.
package tableview

import (
	"strings"

	"github.com/homeandown/estatehub/internal/domain/models"
)

// All means "no constraint" on a filter axis.
const All = "all"

// FilterState holds the four independent filter axes.
type FilterState struct {
	Search      string `json:"search"`
	Status      string `json:"status"`
	UserType    string `json:"user_type"`
	ListingType string `json:"listing_type"`
}

// DefaultFilter is the filter state of a freshly opened table.
func DefaultFilter() FilterState {
	return FilterState{Status: All, UserType: All, ListingType: All}
}

func unconstrained(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// Matches reports whether r passes every active predicate of f.
func Matches(r models.Record, f FilterState) bool {
	fields := r.Fields()
	return matchesSearch(fields, f.Search) &&
		matchesStatus(fields, f.Status) &&
		matchesOptional(fields, "user_type", f.UserType) &&
		matchesOptional(fields, "listing_type", f.ListingType)
}

// ApplyFilters returns the records that pass f, in their original order.
func ApplyFilters(records []models.Record, f FilterState) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// matchesSearch is a case-insensitive substring match over the
// stringified value of every field.
func matchesSearch(fields models.Fields, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(models.Stringify(f.Value)), needle) {
			return true
		}
	}
	return false
}

// matchesStatus accepts a record whose status OR verification_status
// equals want.
func matchesStatus(fields models.Fields, want string) bool {
	if unconstrained(want) {
		return true
	}
	for _, key := range []string{"status", "verification_status"} {
		if v, ok := fields.Get(key); ok && models.Stringify(v) == want {
			return true
		}
	}
	return false
}

// matchesOptional constrains only records that carry a non-empty key.
func matchesOptional(fields models.Fields, key, want string) bool {
	if unconstrained(want) {
		return true
	}
	v, ok := fields.Get(key)
	if !ok {
		return true
	}
	s := models.Stringify(v)
	if s == "" {
		return true
	}
	return s == want
}
