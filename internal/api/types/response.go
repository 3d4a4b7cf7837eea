// internal/api/types/response.go
package types

// PaginatedResponse is one page of a collection plus the paging window that produced it.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// NewPaginatedResponse builds a page. An empty page encodes "data" as [] rather than null.
func NewPaginatedResponse[T any](data []T, limit, offset int, totalCount int64) PaginatedResponse[T] {
	return PaginatedResponse[T]{
		Data:       nonNil(data),
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	}
}

// ListResponse wraps an unpaginated collection.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// NewListResponse wraps data, encoding an empty collection as [].
func NewListResponse[T any](data []T) ListResponse[T] {
	return ListResponse[T]{Data: nonNil(data)}
}

func nonNil[T any](data []T) []T {
	if data == nil {
		return []T{}
	}
	return data
}
