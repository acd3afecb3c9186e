package book

import (
	"context"

	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
)

// DeleteBookUseCase 删除图书用例(管理员)
type DeleteBookUseCase struct {
	bookService book.Service
	borrowRepo  borrow.Repository
}

// NewDeleteBookUseCase 创建删除图书用例
func NewDeleteBookUseCase(bookService book.Service, borrowRepo borrow.Repository) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		borrowRepo:  borrowRepo,
	}
}

// Execute 执行删除图书用例
// 业务规则:存在未归还的借阅记录时拒绝删除(保护历史台账)
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	open, err := uc.borrowRepo.CountOpenByBook(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return book.ErrBookHasOpenLoans
	}

	return uc.bookService.DeleteBook(ctx, id)
}
