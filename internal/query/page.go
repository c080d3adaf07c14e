package query

import (
	"math"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// SortSpec whitelists the sortable fields of one entity. Keys are the public
// field names accepted in sortBy, values the staged column they order by.
// Order is the default direction, "desc" when empty.
type SortSpec struct {
	Default string
	Order   string
	Columns map[string]string
}

// Page is a resolved pagination window plus sort direction.
type Page struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
	column    string
}

// ResolvePage normalizes page, limit, sortBy and sortOrder. Page is clamped to
// [1, math.MaxInt/limit] and limit to [1, MaxLimit]; unparseable values fall back to the
// defaults, and an unknown sortBy falls back to spec.Default.
func ResolvePage(p Params, spec SortSpec) Page {
	pg := Page{Page: 1, Limit: DefaultLimit, SortBy: spec.Default, SortOrder: "desc"}
	if spec.Order == "asc" {
		pg.SortOrder = "asc"
	}
	if n, ok := Int(p.Get("limit")); ok && n > 0 {
		pg.Limit = min(n, MaxLimit)
	}
	// Capped so Skip cannot overflow; such a page is past the end of any listing.
	if n, ok := Int(p.Get("page")); ok && n > 1 {
		pg.Page = min(n, math.MaxInt/pg.Limit)
	}
	if by := p.Get("sortBy"); by != "" {
		if _, ok := spec.Columns[by]; ok {
			pg.SortBy = by
		}
	}
	switch order := strings.ToLower(p.Get("sortOrder")); order {
	case "asc", "desc":
		pg.SortOrder = order
	}
	pg.column = spec.Columns[pg.SortBy]
	if pg.column == "" {
		pg.column = pg.SortBy
	}
	return pg
}

// Skip is the number of rows before this page.
func (pg Page) Skip() int { return (pg.Page - 1) * pg.Limit }

// Direction is -1 for descending and +1 for ascending.
func (pg Page) Direction() int {
	if pg.SortOrder == "asc" {
		return 1
	}
	return -1
}

// OrderBy renders the sort key for the staged column.
func (pg Page) OrderBy() string {
	if pg.Direction() < 0 {
		return pg.column + " DESC"
	}
	return pg.column + " ASC"
}

// Meta is the pagination block returned next to every listing.
type Meta struct {
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	NextPage    *int `json:"nextPage"`
	PrevPage    *int `json:"prevPage"`
}

func NewMeta(pg Page, total int) Meta {
	m := Meta{CurrentPage: pg.Page, Limit: pg.Limit, TotalCount: total}
	if pg.Limit > 0 {
		m.TotalPages = (total + pg.Limit - 1) / pg.Limit
	}
	m.HasNextPage = pg.Page < m.TotalPages
	m.HasPrevPage = pg.Page > 1
	if m.HasNextPage {
		n := pg.Page + 1
		m.NextPage = &n
	}
	if m.HasPrevPage {
		p := pg.Page - 1
		m.PrevPage = &p
	}
	return m
}
