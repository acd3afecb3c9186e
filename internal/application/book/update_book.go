package book

import (
	"context"

	"github.com/linkai/library/internal/domain/book"
)

// UpdateBookUseCase 更新图书用例(管理员)
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建更新图书用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 更新图书请求DTO
// 零值字段表示不修改;TotalCopies=0表示不调整副本数
type UpdateBookRequest struct {
	ID              uint
	Title           string
	Author          string
	PublicationYear int
	Genre           string
	TotalCopies     int
	CoverURL        string
	Description     string
}

// Execute 执行更新图书用例
// 调整总副本数时借出数保持不变,在架数同步增减差值;
// 新总数低于当前借出数会被领域规则拒绝
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDTO, error) {
	b, err := uc.bookService.UpdateBook(ctx, req.ID,
		req.Title, req.Author, req.PublicationYear,
		book.Genre(req.Genre), req.TotalCopies,
		req.CoverURL, req.Description,
	)
	if err != nil {
		return nil, err
	}

	return toBookDTO(b), nil
}
