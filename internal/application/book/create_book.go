package book

import (
	"context"
	"time"

	"github.com/linkai/library/internal/domain/book"
)

// BookDTO 图书视图
type BookDTO struct {
	ID              uint   `json:"id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publication_year"`
	Genre           string `json:"genre"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	CoverURL        string `json:"cover_url,omitempty"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// toBookDTO 领域实体 → 视图DTO
func toBookDTO(b *book.Book) *BookDTO {
	return &BookDTO{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		PublicationYear: b.PublicationYear,
		Genre:           string(b.Genre),
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CoverURL:        b.CoverURL,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}

// CreateBookUseCase 新增馆藏图书用例(管理员)
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建新增图书用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 新增图书请求DTO
type CreateBookRequest struct {
	ISBN            string
	Title           string
	Author          string
	PublicationYear int
	Genre           string
	TotalCopies     int
	CoverURL        string
	Description     string
}

// Execute 执行新增图书用例
// 业务规则校验(ISBN格式/分类/副本数/重复)在领域服务完成
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookDTO, error) {
	b, err := uc.bookService.AddBook(ctx,
		req.ISBN, req.Title, req.Author,
		req.PublicationYear, book.Genre(req.Genre),
		req.TotalCopies, req.CoverURL, req.Description,
	)
	if err != nil {
		return nil, err
	}

	return toBookDTO(b), nil
}
