package utils

import "math"

const (
	// DefaultPageSize matches the job listing endpoint's default.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows one listing request may pull.
	MaxPageSize = 100
)

// PaginationParams is a clamped page/limit pair for listing queries.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams clamps page and limit into the allowed range.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	return PaginationParams{Page: page, Limit: limit}
}

// Offset returns the SQL offset for the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta builds the response metadata for a total row count.
func (p PaginationParams) Meta(totalCount int64) PaginationMeta {
	totalPages := int(math.Ceil(float64(totalCount) / float64(p.Limit)))
	return PaginationMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// PaginationMeta is the pagination block of a listing response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}
