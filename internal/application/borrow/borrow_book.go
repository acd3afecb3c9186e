package borrow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/linkai/library/internal/domain/book"
	"github.com/linkai/library/internal/domain/borrow"
	"github.com/linkai/library/internal/domain/user"
	"github.com/linkai/library/internal/infrastructure/persistence/mysql"
	apperrors "github.com/linkai/library/pkg/errors"
	"github.com/linkai/library/pkg/metrics"
	"github.com/linkai/library/pkg/retry"
	"github.com/linkai/library/pkg/tracing"
)

// BorrowBookUseCase 借书用例
// 这是整个系统最核心的用例,涉及事务处理与并发控制
type BorrowBookUseCase struct {
	borrowRepo borrow.Repository
	bookRepo   book.Repository
	userRepo   user.Repository
	txManager  TxManager
}

// NewBorrowBookUseCase 创建借书用例
func NewBorrowBookUseCase(
	borrowRepo borrow.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager TxManager,
) *BorrowBookUseCase {
	return &BorrowBookUseCase{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		txManager:  txManager,
	}
}

// BorrowBookRequest 借书请求DTO
type BorrowBookRequest struct {
	UserID uint // 借阅人用户ID(从JWT中提取)
	BookID uint // 图书ID
}

// BorrowBookResponse 借书响应DTO
// User/Book为借阅人与图书摘要,随借出结果一并返回
type BorrowBookResponse struct {
	RecordID   uint         `json:"record_id"`
	BookID     uint         `json:"book_id"`
	User       *UserSummary `json:"user"`
	Book       *BookSummary `json:"book"`
	BorrowDate string       `json:"borrow_date"`
	DueDate    string       `json:"due_date"`
	Status     string       `json:"status"`
}

// Execute 执行借书用例
//
// 核心问题:并发借阅超借
// 场景:某书剩1本可借,10人同时借
// 错误实现:先SELECT检查可借数再UPDATE,10个请求都能通过检查,超借9本
//
// 正确实现:悲观锁 + 条件UPDATE双保险
//  1. SELECT FOR UPDATE锁定图书行,同一本书的并发借阅在锁上排队
//  2. 锁内检查可借数与重复借阅
//  3. 创建借阅记录
//  4. 条件UPDATE扣减在架数(0<=available<=total兜底)
//  5. COMMIT释放锁
//
// 死锁/锁等待超时属于瞬时冲突,整个事务重做(有界重试),
// 重试耗尽返回ErrTxConflict。
func (uc *BorrowBookUseCase) Execute(ctx context.Context, req BorrowBookRequest) (*BorrowBookResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "library-api", "BorrowBook")
	defer span.End()
	span.SetAttributes(
		attribute.Int("user_id", int(req.UserID)),
		attribute.Int("book_id", int(req.BookID)),
	)

	start := time.Now()
	record, u, b, err := uc.execute(ctx, req)
	metrics.ObserveHistogram(metrics.BorrowDuration, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		metrics.IncCounterVec(metrics.BorrowsTotal, map[string]string{"result": borrowResult(err)})
		return nil, err
	}

	metrics.IncCounterVec(metrics.BorrowsTotal, map[string]string{"result": "success"})

	return &BorrowBookResponse{
		RecordID:   record.ID,
		BookID:     record.BookID,
		User:       &UserSummary{Username: u.Username, Email: u.Email},
		Book:       &BookSummary{Title: b.Title, Author: b.Author, ISBN: b.ISBN},
		BorrowDate: record.BorrowDate.Format(time.RFC3339),
		DueDate:    record.DueDate.Format(time.RFC3339),
		Status:     record.Status.String(),
	}, nil
}

func (uc *BorrowBookUseCase) execute(ctx context.Context, req BorrowBookRequest) (*borrow.Record, *user.User, *book.Book, error) {
	// 1. 校验借阅人(存在且未停用)
	u, err := uc.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !u.IsActive {
		return nil, nil, nil, apperrors.ErrUserInactive
	}

	// 2. 事务执行借出流程,瞬时写冲突整体重做
	var (
		record     *borrow.Record
		lockedBook *book.Book
	)
	cfg := retry.DefaultConfig(mysql.IsSerializationError)
	err = retry.Do(ctx, cfg, func(ctx context.Context) error {
		record = nil
		return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
			// 锁定图书行:SELECT * FROM books WHERE id = ? FOR UPDATE
			b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
			if err != nil {
				return err
			}

			// 锁内检查可借数(必须在锁定后检查,否则并发扣减导致超借)
			if !b.HasAvailableCopy() {
				return book.ErrNoAvailableCopies
			}

			// 同一用户对同一图书只能有一条未归还记录
			if _, err := uc.borrowRepo.FindOpenByUserAndBook(txCtx, req.UserID, req.BookID); err == nil {
				return borrow.ErrAlreadyBorrowed
			} else if err != borrow.ErrRecordNotFound {
				return err
			}

			// 创建借阅记录(应还时间=借出时间+14天)
			r := borrow.NewRecord(req.UserID, req.BookID, time.Now())
			if err := uc.borrowRepo.Create(txCtx, r); err != nil {
				return err
			}

			// 条件UPDATE扣减在架数,失败则整个事务回滚
			if err := uc.bookRepo.AdjustAvailable(txCtx, req.BookID, -1); err != nil {
				return err
			}

			record = r
			lockedBook = b
			return nil
		})
	})

	if err != nil {
		if mysql.IsSerializationError(err) {
			return nil, nil, nil, apperrors.ErrTxConflict
		}
		return nil, nil, nil, err
	}

	return record, u, lockedBook, nil
}

// borrowResult 借阅结果指标标签
func borrowResult(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeBookUnavailable:
		return "unavailable"
	case apperrors.ErrCodeAlreadyBorrowed:
		return "conflict"
	case apperrors.ErrCodeUserInactive, apperrors.ErrCodeForbidden:
		return "forbidden"
	case apperrors.ErrCodeBookNotFound, apperrors.ErrCodeUserNotFound:
		return "not_found"
	default:
		return "error"
	}
}
