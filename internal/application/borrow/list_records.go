package borrow

import (
	"context"
	"log"
	"time"

	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/domain/user"
)

// UserSummary 借阅人摘要(联表展示用)
type UserSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// BookSummary 图书摘要(联表展示用)
type BookSummary struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// RecordDTO 借阅记录视图
// User/Book为补齐后的摘要,对应数据缺失时为nil(前端按ID兜底展示)
type RecordDTO struct {
	ID         uint         `json:"id"`
	UserID     uint         `json:"user_id"`
	BookID     uint         `json:"book_id"`
	User       *UserSummary `json:"user,omitempty"`
	Book       *BookSummary `json:"book,omitempty"`
	BorrowDate string       `json:"borrow_date"`
	DueDate    string       `json:"due_date"`
	ReturnDate string       `json:"return_date,omitempty"`
	Status     string       `json:"status"`
	Fine       int64        `json:"fine"`
}

// toRecordDTO 领域实体 → 视图DTO
func toRecordDTO(r *borrow.Record) *RecordDTO {
	dto := &RecordDTO{
		ID:         r.ID,
		UserID:     r.UserID,
		BookID:     r.BookID,
		BorrowDate: r.BorrowDate.Format(time.RFC3339),
		DueDate:    r.DueDate.Format(time.RFC3339),
		Status:     r.Status.String(),
		Fine:       r.Fine,
	}
	if r.ReturnDate != nil {
		dto.ReturnDate = r.ReturnDate.Format(time.RFC3339)
	}
	return dto
}

// toRecordDTOs 批量转换
func toRecordDTOs(records []*borrow.Record) []*RecordDTO {
	dtos := make([]*RecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

// joinSummaries 为记录视图补齐借阅人与图书摘要
// 同一页里的记录经常指向同一用户/同一图书,按ID去重后逐个查询。
// 单条查询失败只记日志,摘要留空,不让整页列表失败。
func joinSummaries(
	ctx context.Context,
	userRepo user.Repository,
	bookRepo book.Repository,
	dtos []*RecordDTO,
) {
	users := make(map[uint]*UserSummary)
	books := make(map[uint]*BookSummary)

	for _, d := range dtos {
		if _, ok := users[d.UserID]; !ok {
			var s *UserSummary
			if u, err := userRepo.FindByID(ctx, d.UserID); err == nil {
				s = &UserSummary{Username: u.Username, Email: u.Email}
			} else {
				log.Printf("[WARN] 补齐借阅人摘要失败: user_id=%d, err=%v", d.UserID, err)
			}
			users[d.UserID] = s
		}
		if _, ok := books[d.BookID]; !ok {
			var s *BookSummary
			if b, err := bookRepo.FindByID(ctx, d.BookID); err == nil {
				s = &BookSummary{Title: b.Title, Author: b.Author, ISBN: b.ISBN}
			} else {
				log.Printf("[WARN] 补齐图书摘要失败: book_id=%d, err=%v", d.BookID, err)
			}
			books[d.BookID] = s
		}
		d.User = users[d.UserID]
		d.Book = books[d.BookID]
	}
}

// MyHistoryUseCase 查询我的借阅历史用例
type MyHistoryUseCase struct {
	borrowRepo borrow.Repository
	bookRepo   book.Repository
	userRepo   user.Repository
}

// NewMyHistoryUseCase 创建查询借阅历史用例
func NewMyHistoryUseCase(
	borrowRepo borrow.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
) *MyHistoryUseCase {
	return &MyHistoryUseCase{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
	}
}

// MyHistoryRequest 查询借阅历史请求DTO
type MyHistoryRequest struct {
	UserID   uint
	Page     int
	PageSize int
	Status   borrow.Status // 0表示不过滤
}

// Execute 查询用户自己的借阅历史(按借出时间倒序,附带图书摘要)
func (uc *MyHistoryUseCase) Execute(ctx context.Context, req MyHistoryRequest) ([]*RecordDTO, int64, error) {
	records, total, err := uc.borrowRepo.ListByUser(ctx, req.UserID, borrow.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   req.Status,
	})
	if err != nil {
		return nil, 0, err
	}

	dtos := toRecordDTOs(records)
	joinSummaries(ctx, uc.userRepo, uc.bookRepo, dtos)
	return dtos, total, nil
}

// ListRecordsUseCase 查询全量借阅记录用例(管理员)
type ListRecordsUseCase struct {
	borrowRepo borrow.Repository
	bookRepo   book.Repository
	userRepo   user.Repository
}

// NewListRecordsUseCase 创建查询借阅记录用例
func NewListRecordsUseCase(
	borrowRepo borrow.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
) *ListRecordsUseCase {
	return &ListRecordsUseCase{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
	}
}

// ListRecordsRequest 管理员查询借阅记录请求DTO
type ListRecordsRequest struct {
	Page     int
	PageSize int
	Status   borrow.Status // 0表示不过滤
	UserID   uint          // 0表示不过滤
	BookID   uint          // 0表示不过滤
}

// Execute 查询全量借阅记录(支持按状态/用户/图书过滤,附带用户与图书摘要)
func (uc *ListRecordsUseCase) Execute(ctx context.Context, req ListRecordsRequest) ([]*RecordDTO, int64, error) {
	records, total, err := uc.borrowRepo.List(ctx, borrow.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   req.Status,
		UserID:   req.UserID,
		BookID:   req.BookID,
	})
	if err != nil {
		return nil, 0, err
	}

	dtos := toRecordDTOs(records)
	joinSummaries(ctx, uc.userRepo, uc.bookRepo, dtos)
	return dtos, total, nil
}
