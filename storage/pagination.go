package storage

import "fmt"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a 1-based page request for listing endpoints.
type PageRequest struct {
	Page     int
	PageSize int
}

func (page PageRequest) Validate() error {
	if page.Page < 1 {
		return fmt.Errorf("page must be 1 or greater, got %d", page.Page)
	}
	if page.PageSize < 1 || page.PageSize > MaxPageSize {
		return fmt.Errorf("pageSize must be between 1 and %d, got %d", MaxPageSize, page.PageSize)
	}

	return nil
}

func (page PageRequest) Offset() int {
	return (page.Page - 1) * page.PageSize
}

// Page is one page of a listing, along with the pagination metadata the API envelope carries.
type Page[Item any] struct {
	Items      []Item
	Total      int
	Page       int
	TotalPages int
}

func NewPage[Item any](items []Item, total int, request PageRequest) Page[Item] {
	totalPages := total / request.PageSize
	if total%request.PageSize != 0 {
		totalPages++
	}

	return Page[Item]{Items: items, Total: total, Page: request.Page, TotalPages: totalPages}
}
