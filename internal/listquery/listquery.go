// Package listquery defines the normalized list request/response contract
// shared by every paginated list in the service: tri-state filters, free-text
// search, 1-based pagination, and a sort column with direction.
//
// Both the HTTP API and the Go client package speak this shape, so the
// serialization rules live here and nowhere else:
//
//	request:  { "search": { ...filters... }, "pagination": { "page", "size", "sortBy", "sortOrder" } }
//	response: { "data": [ ...records... ], "total_rows": n }
package listquery

import (
	"fmt"
	"strings"
)

// Sort directions as they appear on the wire.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Tri is a tagged tri-state filter value: unset, yes, or no.
//
// The wire format is the numeric sentinel convention the backend expects:
// -1 means "no filter", 1 means true, 0 means false. An unset filter is
// always serialized as -1 - never omitted and never 0 - so the backend can
// tell "no filter" apart from "filter on false".
type Tri int

const (
	TriUnset Tri = -1
	TriNo    Tri = 0
	TriYes   Tri = 1
)

// ParseTri converts a wire value (-1, 0, 1) into a Tri.
func ParseTri(v int) (Tri, error) {
	switch Tri(v) {
	case TriUnset, TriNo, TriYes:
		return Tri(v), nil
	}
	return TriUnset, fmt.Errorf("invalid tri-state filter value %d", v)
}

// IsSet reports whether the filter constrains results.
func (t Tri) IsSet() bool { return t != TriUnset }

// Bool returns the boolean the filter selects for. Only meaningful when
// IsSet() is true.
func (t Tri) Bool() bool { return t == TriYes }

// String implements fmt.Stringer for log output.
func (t Tri) String() string {
	switch t {
	case TriYes:
		return "yes"
	case TriNo:
		return "no"
	}
	return "unset"
}

// Pagination is the pagination and sort portion of a list request.
// Page is 1-based; Size is fixed per session and never user-adjustable.
type Pagination struct {
	Page      int    `json:"page"`
	Size      int    `json:"size"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// Normalize clamps obviously invalid values and fills defaults so stores
// never see a page below 1, a non-positive size, or an unknown sort order.
func (p Pagination) Normalize(defaultSort string, defaultSize int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	if p.SortBy == "" {
		p.SortBy = defaultSort
	}
	if order := strings.ToLower(p.SortOrder); order == SortDesc {
		p.SortOrder = SortDesc
	} else {
		p.SortOrder = SortAsc
	}
	return p
}

// Skip returns the number of records to skip for the current page.
func (p Pagination) Skip() int64 {
	return int64(p.Page-1) * int64(p.Size)
}

// Descending reports whether the sort order is descending.
func (p Pagination) Descending() bool { return p.SortOrder == SortDesc }

// Request is the body of every POST <feature>/search call.
// F is the feature-specific filter struct (tri-state flags plus search text).
type Request[F any] struct {
	Search     F          `json:"search"`
	Pagination Pagination `json:"pagination"`
}

// Result is the body of every search response: one page of records plus the
// total match count across all pages.
type Result[T any] struct {
	Data      []T   `json:"data"`
	TotalRows int64 `json:"total_rows"`
}

// TotalPages returns ceil(totalRows / pageSize). A list with no records has
// a single (empty) page so page clamping always has a valid target.
func TotalPages(totalRows int64, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := int((totalRows + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage bounds a requested page to [1, totalPages]. The presentation
// layer must clamp before dispatching, so an out-of-range request never
// reaches the backend.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages >= 1 && page > totalPages {
		return totalPages
	}
	return page
}
