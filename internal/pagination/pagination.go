package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Default pagination values
const (
	DefaultPage    = 1
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// Params represents pagination query parameters
type Params struct {
	Page    int `json:"page"`     // Current page number (1-based)
	PerPage int `json:"per_page"` // Number of items per page
}

// Meta is the pagination object attached to paginated responses.
type Meta struct {
	CurrentPage int     `json:"current_page"`
	PerPage     int     `json:"per_page"`
	Total       int     `json:"total"`
	LastPage    int     `json:"last_page"`
	NextPageURL *string `json:"next_page_url"`
	PrevPageURL *string `json:"prev_page_url"`
}

// ParseParams extracts and validates pagination parameters from HTTP request
func ParseParams(r *http.Request) Params {
	page := DefaultPage
	perPage := DefaultPerPage

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if perStr := r.URL.Query().Get("per_page"); perStr != "" {
		if l, err := strconv.Atoi(perStr); err == nil && l > 0 {
			perPage = l
			if perPage > MaxPerPage {
				perPage = MaxPerPage
			}
		}
	}

	return Params{Page: page, PerPage: perPage}
}

// Validate ensures pagination parameters are valid and sets defaults if needed
func (p *Params) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset returns the slice offset for the current page.
func (p *Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Slice returns the [start, end) bounds of the current page over a list of
// length total.
func (p *Params) Slice(total int) (int, int) {
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return start, end
}

// Meta builds pagination metadata. path is the request path used to build
// next/prev page URLs; they are null at the corresponding boundary.
func (p *Params) Meta(path string, total int) Meta {
	lastPage := (total + p.PerPage - 1) / p.PerPage // ceiling division
	if lastPage < 1 {
		lastPage = 1
	}

	meta := Meta{
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       total,
		LastPage:    lastPage,
	}
	if p.Page < lastPage {
		url := fmt.Sprintf("%s?page=%d&per_page=%d", path, p.Page+1, p.PerPage)
		meta.NextPageURL = &url
	}
	if p.Page > 1 {
		url := fmt.Sprintf("%s?page=%d&per_page=%d", path, p.Page-1, p.PerPage)
		meta.PrevPageURL = &url
	}
	return meta
}
