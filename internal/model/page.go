package model

import "fmt"

const (
	// DefaultPageSize はsize未指定時のページサイズ。
	DefaultPageSize = 20
	// MaxPageSize は1ページあたりの最大件数。
	MaxPageSize = 100
)

// PageRequest はゼロ始まりのページ指定。
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest はページ指定を検証してPageRequestを返す。
// pageは0以上、sizeは1以上MaxPageSize以下でなければならない。
func NewPageRequest(page, size int) (PageRequest, error) {
	if page < 0 {
		return PageRequest{}, NewInvalidPageError("page must not be negative")
	}
	if size < 1 || size > MaxPageSize {
		return PageRequest{}, NewInvalidPageError(fmt.Sprintf("size must be between 1 and %d", MaxPageSize))
	}
	return PageRequest{Page: page, Size: size}, nil
}

// Offset はSQLのOFFSET値を返す。
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page はページングされた一覧結果を表す。
type Page[T any] struct {
	Content     []T   `json:"pageContent"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}

// NewPage は取得結果と総件数からPageを組み立てる。
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:     content,
		CurrentPage: req.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
	}
}
