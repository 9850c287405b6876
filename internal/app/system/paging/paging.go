// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// Board lists use page-number pagination: stores fetch pageSize+1 rows with
// a skip, and the extra row signals that a next page exists. Page numbers
// are 1-based and come from the "page" query parameter.

// ParsePage extracts the "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Nav holds the prev/next link values for a paginated list.
type Nav struct {
	Page     int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
}

// BuildNav computes navigation values for the current page. hasNext comes
// from the store's look-ahead fetch.
func BuildNav(page int, hasNext bool) Nav {
	if page < 1 {
		page = 1
	}
	nav := Nav{
		Page:     page,
		HasNext:  hasNext,
		NextPage: page + 1,
		PrevPage: page - 1,
	}
	if page > 1 {
		nav.HasPrev = true
	} else {
		nav.PrevPage = 1
	}
	return nav
}
