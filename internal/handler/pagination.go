package handler

import (
	"blogapi/internal/repository"
)

// PageQuery is the pagination query contract shared by list endpoints.
type PageQuery struct {
	Page        int  `query:"page" validate:"min=1"`
	Size        int  `query:"size" validate:"min=1,max=100"`
	OnlyDeleted bool `query:"only_deleted"`
}

func defaultPageQuery() PageQuery {
	return PageQuery{Page: 1, Size: repository.DefaultPageSize}
}

func (q PageQuery) toPage() repository.Page {
	return repository.Page{Number: q.Page, Size: q.Size, OnlyDeleted: q.OnlyDeleted}
}

// Paginated is one page of items plus the number of rows matching the same filter.
type Paginated[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
