package services

import (
	"math"
	"strconv"
)

const (
	// MaxPageLimit caps every paginated listing
	MaxPageLimit = 100

	DefaultCourseLimit  = 6
	DefaultTeacherLimit = 10
	DefaultStudentLimit = 10

	// MaxPage keeps Offset from overflowing
	MaxPage = math.MaxInt / MaxPageLimit
)

// Page is a normalized page request
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page to [1, MaxPage] and limit to [1, MaxPageLimit].
// A non-positive limit falls back to defaultLimit.
func NewPage(page, limit, defaultLimit int) Page {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

// ParsePage builds a Page from raw query string values
func ParsePage(page, limit string, defaultLimit int) Page {
	p, _ := strconv.Atoi(page)
	l, _ := strconv.Atoi(limit)
	return NewPage(p, l, defaultLimit)
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total / limit)
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// ListMeta is the metadata attached to list responses
type ListMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
}

// PageMeta is the pagination object attached to search responses
type PageMeta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

func (p Page) listMeta(total int64) ListMeta {
	return ListMeta{
		Total:       total,
		CurrentPage: p.Page,
		TotalPages:  p.TotalPages(total),
	}
}

func (p Page) pageMeta(total int64) PageMeta {
	pages := p.TotalPages(total)
	return PageMeta{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
}
