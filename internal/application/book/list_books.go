package book

import (
	"context"

	"github.com/linkai/library/internal/domain/book"
)

// ListBooksUseCase 图书列表/搜索用例(公开接口)
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建图书列表用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 图书列表请求DTO
type ListBooksRequest struct {
	Page     int
	PageSize int
	Keyword  string // 模糊搜索标题/作者/ISBN
	Genre    string // 分类过滤(与Keyword为AND关系)
}

// Execute 执行图书列表查询
// 页码/页大小在这里归一化,避免每个调用方各自处理
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) ([]*BookDTO, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Genre:    book.Genre(req.Genre),
	})
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*BookDTO, len(books))
	for i, b := range books {
		dtos[i] = toBookDTO(b)
	}

	return dtos, total, nil
}

// GetBookUseCase 图书详情用例(公开接口)
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建图书详情用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 查询图书详情
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDTO, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookDTO(b), nil
}
